package config

import "context"

// Process is a running language server as seen by the bridge.
//
// The default implementation is subprocess.Process, which spawns a local
// child process. Custom implementations can be injected via Options.Starter.
type Process interface {
	// Session returns the identifier stamped on every event of this process.
	Session() string

	// Send frames body and writes it to the process input.
	// It must be safe for concurrent use.
	Send(ctx context.Context, body string) error

	// CloseInput closes the process input stream.
	// It's safe to call CloseInput multiple times.
	CloseInput() error

	// Kill terminates the process.
	// It's safe to call Kill multiple times or after the process has exited.
	Kill() error

	// Done is closed once both relays have finished and the process has
	// been reaped.
	Done() <-chan struct{}
}

// Starter spawns a language server process.
type Starter func(ctx context.Context, path string, args []string, options *Options) (Process, error)
