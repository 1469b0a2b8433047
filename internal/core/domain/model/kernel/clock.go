package kernel

import (
	"sync"
	"time"
)

// Resolution is the precision kept for lifecycle timestamps. It matches the
// microsecond precision of PostgreSQL timestamptz so that values survive a round trip.
const Resolution = time.Microsecond

// MonotonicClock hands out strictly increasing UTC instants within a process.
// When the wall clock stalls or steps back the previous instant is advanced by
// one Resolution step.
type MonotonicClock struct {
	mu   sync.Mutex
	last time.Time
	now  func() time.Time
}

// NewMonotonicClock reads the wall clock.
//
// Example:
//
//	clock := kernel.NewMonotonicClock()
//	a, b := clock.Now(), clock.Now()
//	// b.After(a) always holds
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{now: time.Now}
}

// NewMonotonicClockFrom wraps an arbitrary time source, mostly for tests.
//
// Example:
//
//	readings := []time.Time{t2, t1}
//	clock := kernel.NewMonotonicClockFrom(func() time.Time {
//	    r := readings[0]
//	    readings = readings[1:]
//	    return r
//	})
//	clock.Now() // t2
//	clock.Now() // t2 plus Resolution, not t1
func NewMonotonicClockFrom(source func() time.Time) *MonotonicClock {
	return &MonotonicClock{now: source}
}

// Now returns the next instant, truncated to Resolution. Safe for concurrent use.
func (c *MonotonicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().UTC().Truncate(Resolution)
	if !t.After(c.last) {
		t = c.last.Add(Resolution)
	}
	c.last = t
	return t
}
