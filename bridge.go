package lspbridge

import (
	"context"
	"fmt"

	"github.com/wagiedev/lspbridge/internal/bridge"
)

// Bridge owns at most one running language server and relays its traffic.
//
// Spawn, Send, Wait, and Close are safe for concurrent use. Concurrent Spawn
// calls are serialized; each replaces the previous process.
type Bridge = bridge.Bridge

// New creates a bridge with no running process.
func New(opts ...Option) *Bridge {
	return bridge.New(applyOptions(opts))
}

// WithBridge manages bridge lifecycle with automatic cleanup.
//
// It creates a bridge, spawns the server at path, runs fn, and closes the
// bridge when fn returns. If Close fails, a warning is logged but does not
// override the callback's error.
//
// Example usage:
//
//	err := lspbridge.WithBridge(ctx, "gopls", []string{"serve"}, func(b *lspbridge.Bridge) error {
//	    return b.Send(ctx, initializeRequest)
//	},
//	    lspbridge.WithSink(sink),
//	)
func WithBridge(ctx context.Context, path string, args []string, fn func(*Bridge) error, opts ...Option) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	b := bridge.New(options)

	defer func() {
		if closeErr := b.Close(); closeErr != nil {
			log.Warn("failed to close bridge", "error", closeErr)
		}
	}()

	if _, err := b.Spawn(ctx, path, args); err != nil {
		return fmt.Errorf("failed to spawn language server: %w", err)
	}

	return fn(b)
}
