package lspbridge

import (
	"log/slog"

	"github.com/wagiedev/lspbridge/internal/config"
	"github.com/wagiedev/lspbridge/internal/frame"
)

// HeaderMode selects how frame headers are parsed.
type HeaderMode = frame.HeaderMode

const (
	// HeaderModeCompat discards exactly one line after Content-Length.
	HeaderModeCompat = frame.ModeCompat
	// HeaderModeStrict reads header lines until a blank line.
	HeaderModeStrict = frame.ModeStrict
)

// Option configures a Bridge using the functional options pattern.
type Option func(*config.Options)

// applyOptions applies functional options to a config.Options struct.
func applyOptions(opts []Option) *config.Options {
	options := &config.Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *config.Options) {
		o.Logger = logger
	}
}

// WithSink sets the sink that receives events.
// If not set, events are discarded.
func WithSink(sink Sink) Option {
	return func(o *config.Options) {
		o.Sink = sink
	}
}

// WithEnv adds environment variables for the server process.
func WithEnv(env map[string]string) Option {
	return func(o *config.Options) {
		o.Env = env
	}
}

// WithDir sets the working directory of the server process.
func WithDir(dir string) Option {
	return func(o *config.Options) {
		o.Dir = dir
	}
}

// WithSearchDirs adds directories searched for the server executable when
// it is not on PATH.
func WithSearchDirs(dirs ...string) Option {
	return func(o *config.Options) {
		o.SearchDirs = append(o.SearchDirs, dirs...)
	}
}

// WithHeaderMode selects how frame headers are parsed on stdout.
func WithHeaderMode(mode HeaderMode) Option {
	return func(o *config.Options) {
		o.HeaderMode = mode
	}
}

// WithMaxFrameSize bounds the body size accepted from the server.
// Larger frames are skipped.
func WithMaxFrameSize(n int) Option {
	return func(o *config.Options) {
		o.MaxFrameSize = n
	}
}

// WithStderrTail sets how many stderr lines the exit event carries.
// A negative value disables the tail.
func WithStderrTail(lines int) Option {
	return func(o *config.Options) {
		o.StderrTail = lines
	}
}

// WithStarter replaces how server processes are started.
func WithStarter(starter Starter) Option {
	return func(o *config.Options) {
		o.Starter = starter
	}
}

// WithOptions copies a fully built options struct, for callers that load
// configuration from a file.
func WithOptions(src *Options) Option {
	return func(o *config.Options) {
		*o = *src
	}
}
