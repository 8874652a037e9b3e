package correlate

import "sync/atomic"

// TimeSource hands out strictly increasing time stamps.
type TimeSource interface {
	Next() int64
}

// Clock is the logical time counter shared by all observers of one pipeline
// run. Every observed element is stamped with a strictly increasing value.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations), so
// observers running on different goroutines still see a single sequence.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a new clock starting at a specific time stamp.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next time stamp and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last issued time stamp without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
