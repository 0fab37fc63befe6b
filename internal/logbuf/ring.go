// Package logbuf keeps the most recent lines of a process stream.
package logbuf

import (
	"strings"
	"sync"
)

// Ring is a thread-safe ring buffer that stores the last N lines.
type Ring struct {
	mu    sync.Mutex
	lines []string
	size  int
	pos   int
	full  bool
}

// New creates a ring buffer that stores the last n lines. A non-positive n
// produces a ring that stores nothing.
func New(n int) *Ring {
	if n < 0 {
		n = 0
	}

	return &Ring{
		lines: make([]string, n),
		size:  n,
	}
}

// Add appends a line, evicting the oldest one when full.
func (r *Ring) Add(line string) {
	if r.size == 0 {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.lines[r.pos] = line
	r.pos = (r.pos + 1) % r.size

	if r.pos == 0 {
		r.full = true
	}
}

// Lines returns all stored lines in order, oldest first.
func (r *Ring) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		result := make([]string, r.pos)
		copy(result, r.lines[:r.pos])

		return result
	}

	result := make([]string, r.size)
	copy(result, r.lines[r.pos:])
	copy(result[r.size-r.pos:], r.lines[:r.pos])

	return result
}

// String joins the stored lines with newlines.
func (r *Ring) String() string {
	return strings.Join(r.Lines(), "\n")
}
