package logbuf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRing_BelowCapacity(t *testing.T) {
	r := New(3)
	r.Add("one")
	r.Add("two")

	require.Equal(t, []string{"one", "two"}, r.Lines())
	require.Equal(t, "one\ntwo", r.String())
}

func TestRing_Wraps(t *testing.T) {
	r := New(3)
	for i := range 5 {
		r.Add(fmt.Sprintf("line %d", i))
	}

	require.Equal(t, []string{"line 2", "line 3", "line 4"}, r.Lines())
}

func TestRing_ExactlyFull(t *testing.T) {
	r := New(2)
	r.Add("a")
	r.Add("b")

	require.Equal(t, []string{"a", "b"}, r.Lines())
}

func TestRing_ZeroSize(t *testing.T) {
	r := New(0)
	r.Add("dropped")

	require.Empty(t, r.Lines())
	require.Empty(t, r.String())
}

func TestRing_ConcurrentAdd(t *testing.T) {
	r := New(50)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			for j := range 20 {
				r.Add(fmt.Sprintf("%d-%d", i, j))
			}
		})
	}

	wg.Wait()
	require.Len(t, r.Lines(), 50)
}
