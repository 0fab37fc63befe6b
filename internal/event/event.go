package event

import (
	"sync"
	"time"
)

// Kind identifies the kind of event.
type Kind string

const (
	// KindMessage carries a decoded frame body from the server's stdout.
	KindMessage Kind = "message"
	// KindLog carries a stdout line that was not a frame header.
	KindLog Kind = "log"
	// KindDiagnostic carries a line from the server's stderr.
	KindDiagnostic Kind = "diagnostic"
	// KindExit is published once after the process has exited and both
	// relays have finished.
	KindExit Kind = "exit"
)

// Event is a single item published by the bridge.
type Event struct {
	Kind Kind `json:"kind"`
	// Session identifies the spawn that produced the event.
	Session string `json:"session"`
	// Payload is the message body, log line, or diagnostic line. For exit
	// events it holds the tail of the server's stderr.
	Payload string `json:"payload,omitempty"`
	// ExitCode is set for exit events; -1 when the process was killed by a
	// signal or never reported a code.
	ExitCode int       `json:"exit_code"`
	Time     time.Time `json:"time"`
}

// Sink receives published events.
type Sink interface {
	Publish(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Publish implements Sink.
func (f SinkFunc) Publish(e Event) { f(e) }

// Discard is a Sink that drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans events out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(e Event) {
		for _, s := range sinks {
			s.Publish(e)
		}
	})
}

// ChanSink delivers events into a channel. Publish blocks while the channel
// is full, which applies backpressure to the publishing relay.
type ChanSink chan<- Event

// Publish implements Sink.
func (c ChanSink) Publish(e Event) { c <- e }

// Recorder is an in-memory Sink that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	notify chan struct{}
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{notify: make(chan struct{}, 1)}
}

// Publish implements Sink.
func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()

	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Events returns a copy of every recorded event.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Event, len(r.events))
	copy(out, r.events)

	return out
}

// Of returns the payloads of recorded events of the given kind.
func (r *Recorder) Of(kind Kind) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []string

	for _, e := range r.events {
		if e.Kind == kind {
			out = append(out, e.Payload)
		}
	}

	return out
}

// WaitFor blocks until an event of the given kind has been recorded or the
// timeout expires. It reports whether such an event was seen.
func (r *Recorder) WaitFor(kind Kind, timeout time.Duration) bool {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		if r.has(kind) {
			return true
		}

		select {
		case <-r.notify:
		case <-deadline.C:
			return r.has(kind)
		}
	}
}

func (r *Recorder) has(kind Kind) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.Kind == kind {
			return true
		}
	}

	return false
}
