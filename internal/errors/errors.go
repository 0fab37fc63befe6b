package errors

import (
	"errors"
	"fmt"
	"strings"
)

// BridgeError is the base interface for all bridge errors.
type BridgeError interface {
	error
	IsBridgeError() bool
}

// Compile-time verification that all error types implement BridgeError.
var (
	_ BridgeError = (*SpawnError)(nil)
	_ BridgeError = (*NotRunningError)(nil)
	_ BridgeError = (*IoError)(nil)
	_ BridgeError = (*ExecutableNotFoundError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrNotRunning indicates no language server process is running.
	ErrNotRunning = errors.New("process is not running")

	// ErrInputClosed indicates the process input stream was closed, either
	// explicitly or because a blocked write was cancelled.
	ErrInputClosed = errors.New("process input closed")

	// ErrBridgeClosed indicates the bridge has been closed and cannot spawn.
	ErrBridgeClosed = errors.New("bridge closed")
)

// SpawnError indicates the language server process could not be started or
// one of its pipes could not be obtained.
type SpawnError struct {
	Path string
	Op   string
	Err  error
}

func (e *SpawnError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("failed to spawn %s: %s: %v", e.Path, e.Op, e.Err)
	}

	return fmt.Sprintf("failed to spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *SpawnError) IsBridgeError() bool { return true }

// NotRunningError indicates a send was attempted with no active process.
type NotRunningError struct{}

func (e *NotRunningError) Error() string {
	return ErrNotRunning.Error()
}

// Is reports ErrNotRunning as equivalent.
func (e *NotRunningError) Is(target error) bool {
	return target == ErrNotRunning
}

// IsBridgeError implements BridgeError.
func (e *NotRunningError) IsBridgeError() bool { return true }

// IoError indicates a write or flush on the process input failed.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *IoError) IsBridgeError() bool { return true }

// ExecutableNotFoundError indicates the language server executable could not
// be located.
type ExecutableNotFoundError struct {
	Name          string
	SearchedPaths []string
	// Err is the OS error for an explicit path, if any.
	Err error
}

func (e *ExecutableNotFoundError) Error() string {
	msg := fmt.Sprintf("executable %q not found in: %s", e.Name, strings.Join(e.SearchedPaths, ", "))
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}

	return msg
}

func (e *ExecutableNotFoundError) Unwrap() error {
	return e.Err
}

// IsBridgeError implements BridgeError.
func (e *ExecutableNotFoundError) IsBridgeError() bool { return true }
