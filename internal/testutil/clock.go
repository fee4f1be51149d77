// Package testutil provides deterministic helpers for harness runs and
// tests.
package testutil

import "sync"

// Clock is a monotonic logical clock used to stamp trace events.
//
// Determinism matters: the same scenario must produce byte-identical
// traces so golden-file comparison is stable. Reset allows one clock to
// serve repeated runs of the same scenario.
//
// Thread-safety: all methods are safe for concurrent use, though a
// single evaluation run only ever stamps events sequentially.
type Clock struct {
	mu  sync.Mutex
	seq int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments and returns the next sequence number.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the latest issued sequence number.
func (c *Clock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset returns the clock to its initial state.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
