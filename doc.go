// Package lspbridge launches a language server as a child process and relays
// its Content-Length framed messages to an event sink.
//
// The bridge only handles framing and byte transport. It does not interpret
// JSON-RPC payloads, correlate requests with responses, or negotiate
// capabilities; callers build and parse message bodies themselves.
//
// # Basic Usage
//
//	rec := lspbridge.NewRecorder()
//	b := lspbridge.New(
//	    lspbridge.WithLogger(slog.Default()),
//	    lspbridge.WithSink(rec),
//	)
//	defer b.Close()
//
//	if _, err := b.Spawn(ctx, "gopls", []string{"serve"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	err := b.Send(ctx, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
//
// # Events
//
// Every event carries the session ID of the spawn that produced it:
//
//   - message: a decoded frame body from stdout
//   - log: a stdout line that was not a frame header
//   - diagnostic: a line from stderr
//   - exit: published once after the process has exited, with the exit code
//     and the tail of stderr
//
// Events from one stream arrive in order. There is no ordering between
// stdout and stderr events.
//
// # Error Handling
//
//	if _, err := b.Spawn(ctx, "rust-analyzer", nil); err != nil {
//	    if spawnErr, ok := errors.AsType[*lspbridge.SpawnError](err); ok {
//	        log.Fatalf("could not start %s: %v", spawnErr.Path, spawnErr.Err)
//	    }
//	}
//
//	if err := b.Send(ctx, body); errors.Is(err, lspbridge.ErrNotRunning) {
//	    // spawn first
//	}
//
// Frames that are truncated or are not valid UTF-8 are dropped without an
// event or error.
package lspbridge
