// Package testutil holds deterministic helpers shared by the scenario harness
// and its tests.
package testutil

import "sync"

// SeqClock hands out trace sequence numbers: 1, 2, 3, ...
//
// Scenario traces are ordered by seq rather than wall time, so two runs of the
// same scenario produce byte-identical golden output. The mutex keeps Next
// monotonic if a clock is ever shared.
type SeqClock struct {
	mu  sync.Mutex
	seq int64
}

// NewSeqClock returns a clock whose first Next call yields 1.
func NewSeqClock() *SeqClock {
	return &SeqClock{}
}

// Next advances the clock and returns the new sequence number.
func (c *SeqClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last sequence number handed out, or 0.
func (c *SeqClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}
