// Package errors defines error types for the language server bridge.
//
// This package provides structured error types that wrap different failure
// scenarios when launching and talking to a language server process. All error
// types support error unwrapping and can be checked using errors.Is,
// errors.As, and errors.AsType.
package errors
