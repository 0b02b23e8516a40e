package engine

import "sync/atomic"

// Clock is the monotonic logical tick counter.
//
// Every tick is stamped with a strictly increasing sequence number from
// this clock, never a wall-clock timestamp. This keeps tick identity
// deterministic and ordering race-free.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// controller's single-writer design means only one goroutine calls Next().
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
