package bridge

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/wagiedev/lspbridge/internal/config"
	"github.com/wagiedev/lspbridge/internal/errors"
	"github.com/wagiedev/lspbridge/internal/subprocess"
)

// Bridge relays between a caller and one language server process.
type Bridge struct {
	log     *slog.Logger
	options *config.Options
	start   config.Starter

	spawnMu sync.Mutex // Serializes Spawn calls

	mu     sync.Mutex // Protects proc and closed
	proc   config.Process
	closed bool
}

// New creates a bridge with no running process.
func New(options *config.Options) *Bridge {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	start := options.Starter
	if start == nil {
		start = startSubprocess
	}

	return &Bridge{
		log:     log.With("component", "bridge"),
		options: options,
		start:   start,
	}
}

// startSubprocess is the default Starter.
func startSubprocess(ctx context.Context, path string, args []string, options *config.Options) (config.Process, error) {
	p, err := subprocess.Start(ctx, path, args, options)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// Spawn starts the language server at path and makes it the current
// process. Any previous process has its input closed and is killed.
//
// On success Spawn returns a confirmation naming the launched command.
// On failure it returns a SpawnError and the current process is unchanged.
func (b *Bridge) Spawn(ctx context.Context, path string, args []string) (string, error) {
	b.spawnMu.Lock()
	defer b.spawnMu.Unlock()

	if b.isClosed() {
		return "", &errors.SpawnError{Path: path, Err: errors.ErrBridgeClosed}
	}

	proc, err := b.start(ctx, path, args, b.options)
	if err != nil {
		if _, ok := stderrors.AsType[*errors.SpawnError](err); !ok {
			err = &errors.SpawnError{Path: path, Err: err}
		}

		b.log.Error("Failed to spawn language server", "path", path, "error", err)

		return "", err
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = b.retire(proc)

		return "", &errors.SpawnError{Path: path, Err: errors.ErrBridgeClosed}
	}

	prev := b.proc
	b.proc = proc
	b.mu.Unlock()

	if prev != nil {
		b.log.Info("Replacing running language server", "previous_session", prev.Session())
		_ = b.retire(prev)
	}

	go b.watch(proc)

	b.log.Info("Language server spawned", "path", path, "session", proc.Session())

	return fmt.Sprintf("LSP started: %s", path), nil
}

// Send forwards body to the current process.
//
// Returns NotRunningError without blocking if no process is running, or an
// IoError if the write or flush fails.
func (b *Bridge) Send(ctx context.Context, body string) error {
	b.mu.Lock()
	proc := b.proc
	b.mu.Unlock()

	if proc == nil {
		return &errors.NotRunningError{}
	}

	return proc.Send(ctx, body)
}

// CloseInput closes the input stream of the current process, signalling end
// of input. The process keeps running until it exits on its own.
func (b *Bridge) CloseInput() error {
	b.mu.Lock()
	proc := b.proc
	b.mu.Unlock()

	if proc == nil {
		return &errors.NotRunningError{}
	}

	return proc.CloseInput()
}

// Running reports whether a process is currently attached.
func (b *Bridge) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.proc != nil
}

// Session returns the session of the current process, or "" if none.
func (b *Bridge) Session() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.proc == nil {
		return ""
	}

	return b.proc.Session()
}

// Wait blocks until the current process has exited and its relays have
// finished, or ctx is done. It returns nil immediately if nothing is running.
func (b *Bridge) Wait(ctx context.Context) error {
	b.mu.Lock()
	proc := b.proc
	b.mu.Unlock()

	if proc == nil {
		return nil
	}

	select {
	case <-proc.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the current process and refuses further spawns.
// It's safe to call Close multiple times.
func (b *Bridge) Close() error {
	b.mu.Lock()
	b.closed = true
	proc := b.proc
	b.proc = nil
	b.mu.Unlock()

	if proc == nil {
		return nil
	}

	return b.retire(proc)
}

// retire closes the input of proc and kills it.
func (b *Bridge) retire(proc config.Process) error {
	return stderrors.Join(proc.CloseInput(), proc.Kill())
}

// watch forgets proc once it has finished, unless it was already replaced.
func (b *Bridge) watch(proc config.Process) {
	<-proc.Done()

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.proc == proc {
		b.proc = nil

		b.log.Debug("Language server finished", "session", proc.Session())
	}
}

func (b *Bridge) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.closed
}
