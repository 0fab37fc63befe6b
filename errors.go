package lspbridge

import "github.com/wagiedev/lspbridge/internal/errors"

// Re-export error types from internal package

// SpawnError indicates the language server could not be started.
type SpawnError = errors.SpawnError

// NotRunningError indicates a send was attempted with no running process.
type NotRunningError = errors.NotRunningError

// IoError indicates a write or flush on the process input failed.
type IoError = errors.IoError

// ExecutableNotFoundError indicates the server executable was not found.
type ExecutableNotFoundError = errors.ExecutableNotFoundError

// BridgeError is the base interface for all bridge errors.
type BridgeError = errors.BridgeError

// Re-export sentinel errors from internal package.
var (
	// ErrNotRunning indicates no language server process is running.
	ErrNotRunning = errors.ErrNotRunning

	// ErrInputClosed indicates the process input stream was closed.
	ErrInputClosed = errors.ErrInputClosed

	// ErrBridgeClosed indicates the bridge has been closed.
	ErrBridgeClosed = errors.ErrBridgeClosed
)
