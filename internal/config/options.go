// Package config provides configuration types for the language server bridge.
package config

import (
	"log/slog"

	"github.com/wagiedev/lspbridge/internal/event"
	"github.com/wagiedev/lspbridge/internal/frame"
)

const (
	// DefaultStderrTail is the number of stderr lines kept for exit events.
	DefaultStderrTail = 50
)

// Options configures how a language server process is spawned and relayed.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Sink receives message, log, diagnostic, and exit events.
	// If nil, events are discarded.
	Sink event.Sink

	// Env holds additional environment variables for the server process.
	// They are appended to the current environment and override it.
	Env map[string]string

	// Dir sets the working directory of the server process.
	// Empty means the current working directory.
	Dir string

	// SearchDirs are extra directories searched for the executable when it
	// is not on PATH.
	SearchDirs []string

	// HeaderMode selects how frame headers are parsed on stdout.
	// Empty means frame.ModeCompat.
	HeaderMode frame.HeaderMode

	// MaxFrameSize bounds the body size accepted from the server.
	// Zero means frame.DefaultMaxFrameSize.
	MaxFrameSize int

	// StderrTail is how many stderr lines are attached to the exit event.
	// Zero means DefaultStderrTail; negative disables the tail.
	StderrTail int

	// Starter replaces the default process starter. Used by tests and by
	// callers that run the server somewhere other than a local subprocess.
	Starter Starter
}

// StderrTailSize resolves the configured stderr tail length.
func (o *Options) StderrTailSize() int {
	switch {
	case o.StderrTail < 0:
		return 0
	case o.StderrTail == 0:
		return DefaultStderrTail
	default:
		return o.StderrTail
	}
}
