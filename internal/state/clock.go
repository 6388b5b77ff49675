package state

import (
	"sync"
	"time"
)

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// Throttle lets an action through at most once per Interval.
type Throttle struct {
	Interval time.Duration
	Now      Clock

	mu   sync.Mutex
	last time.Time
	used bool
}

// NewThrottle creates a throttle on the wall clock.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{Interval: interval, Now: time.Now}
}

// Allow reports whether the action may run now, and records it if so.
func (t *Throttle) Allow() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := time.Now()
	if t.Now != nil {
		now = t.Now()
	}
	if t.used && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	t.used = true
	return true
}
