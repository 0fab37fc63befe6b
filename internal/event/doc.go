// Package event defines the events the bridge publishes and the sinks that
// receive them.
//
// Each relay publishes synchronously from its own goroutine, so events from a
// single stream arrive in order. Events from different streams (stdout and
// stderr) have no ordering relative to each other.
//
// Sinks must be safe for concurrent use: the output relay, the diagnostic
// relay, and the process reaper all publish to the same sink.
package event
