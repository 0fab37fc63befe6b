package event

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecorder_RecordsInOrder(t *testing.T) {
	r := NewRecorder()
	r.Publish(Event{Kind: KindLog, Payload: "first"})
	r.Publish(Event{Kind: KindMessage, Payload: "second"})
	r.Publish(Event{Kind: KindLog, Payload: "third"})

	events := r.Events()
	require.Len(t, events, 3)
	require.Equal(t, "second", events[1].Payload)
	require.Equal(t, []string{"first", "third"}, r.Of(KindLog))
	require.Nil(t, r.Of(KindDiagnostic))
}

func TestRecorder_WaitFor(t *testing.T) {
	r := NewRecorder()

	go func() {
		time.Sleep(10 * time.Millisecond)
		r.Publish(Event{Kind: KindExit})
	}()

	require.True(t, r.WaitFor(KindExit, time.Second))
	require.False(t, r.WaitFor(KindDiagnostic, 20*time.Millisecond))
}

func TestRecorder_ConcurrentPublish(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 100 {
				r.Publish(Event{Kind: KindDiagnostic})
			}
		})
	}

	wg.Wait()
	require.Len(t, r.Events(), 800)
}

func TestMulti(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	s := Multi(a, b, Discard)

	s.Publish(Event{Kind: KindMessage, Payload: "x"})

	require.Equal(t, []string{"x"}, a.Of(KindMessage))
	require.Equal(t, []string{"x"}, b.Of(KindMessage))
}

func TestChanSink(t *testing.T) {
	ch := make(chan Event, 1)

	ChanSink(ch).Publish(Event{Kind: KindLog, Payload: "line"})

	got := <-ch
	require.Equal(t, KindLog, got.Kind)
	require.Equal(t, "line", got.Payload)
}
