package lspbridge

import "github.com/wagiedev/lspbridge/internal/event"

// Event is a single item published by the bridge.
type Event = event.Event

// EventKind identifies the kind of event.
type EventKind = event.Kind

// Event kinds.
const (
	KindMessage    = event.KindMessage
	KindLog        = event.KindLog
	KindDiagnostic = event.KindDiagnostic
	KindExit       = event.KindExit
)

// Sink receives published events. Implementations must be safe for
// concurrent use.
type Sink = event.Sink

// SinkFunc adapts a function to the Sink interface.
type SinkFunc = event.SinkFunc

// ChanSink delivers events into a channel.
type ChanSink = event.ChanSink

// Recorder is an in-memory Sink that keeps every event.
type Recorder = event.Recorder

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return event.NewRecorder()
}

// MultiSink fans events out to every sink in order.
func MultiSink(sinks ...Sink) Sink {
	return event.Multi(sinks...)
}
