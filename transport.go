package lspbridge

import "github.com/wagiedev/lspbridge/internal/config"

// Process is a running language server as seen by the bridge.
// The default implementation spawns a local subprocess; custom
// implementations can be injected with WithStarter.
type Process = config.Process

// Starter spawns a language server process.
type Starter = config.Starter

// Options is the resolved configuration passed to a Starter.
type Options = config.Options
