// Package timeutil provides a testable abstraction over the delayed-callback
// timers the scheduler relies on.
package timeutil

import (
	"sort"
	"sync"
	"time"
)

// Clock abstracts time for testability. Production code uses RealClock;
// tests drive a MockClock manually.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc arranges for fn to run after duration d and returns a
	// Timer that can cancel the call.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a cancelable delayed callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the
	// call was still pending.
	Stop() bool
}

// RealClock implements Clock with the standard time package.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time { return time.Now() }

// AfterFunc schedules fn on a real timer.
func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return &realTimer{timer: time.AfterFunc(d, fn)}
}

type realTimer struct {
	timer *time.Timer
}

func (t *realTimer) Stop() bool { return t.timer.Stop() }

// MockClock is a manually advanced clock. Advance moves time forward and
// runs any callbacks whose deadline has passed, synchronously, in deadline
// order.
type MockClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*mockTimer
}

// NewMockClock creates a MockClock set to the given time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now returns the mocked current time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc registers fn to run when the clock is advanced past d.
func (c *MockClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTimer{
		deadline: c.now.Add(d),
		fn:       fn,
	}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d and fires expired callbacks. The
// callbacks run on the caller's goroutine, which keeps scheduler tests
// deterministic.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	now := c.now

	var due []*mockTimer
	remaining := c.timers[:0]
	for _, t := range c.timers {
		switch {
		case t.isStopped():
			// drop
		case !t.deadline.After(now):
			due = append(due, t)
		default:
			remaining = append(remaining, t)
		}
	}
	c.timers = remaining
	sort.Slice(due, func(i, j int) bool { return due[i].deadline.Before(due[j].deadline) })
	c.mu.Unlock()

	for _, t := range due {
		t.mu.Lock()
		fire := !t.stopped && !t.fired
		t.fired = true
		t.mu.Unlock()
		if fire {
			t.fn()
		}
	}
}

// PendingTimers returns the number of callbacks still waiting to fire.
func (c *MockClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.isStopped() {
			n++
		}
	}
	return n
}

type mockTimer struct {
	mu       sync.Mutex
	deadline time.Time
	fn       func()
	stopped  bool
	fired    bool
}

func (t *mockTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

func (t *mockTimer) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}
