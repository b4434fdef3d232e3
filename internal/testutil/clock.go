// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

type (
	// FakeClock hands out timer channels that fire only when the test advances
	// time. It satisfies runner.Clock.
	FakeClock struct {
		mu      sync.Mutex
		current time.Time
		timers  []fakeTimer
	}

	fakeTimer struct {
		deadline time.Time
		ch       chan time.Time
	}
)

// NewFakeClock creates a FakeClock starting at initial, or at a fixed reference
// time when initial is zero.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that fires once the fake time reaches now+d.
// Non-positive durations fire immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- c.current
		return ch
	}
	c.timers = append(c.timers, fakeTimer{deadline: c.current.Add(d), ch: ch})
	return ch
}

// Advance moves the fake time forward by d and fires every timer that is due.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	pending := c.timers[:0]
	for _, t := range c.timers {
		if c.current.Before(t.deadline) {
			pending = append(pending, t)
			continue
		}
		t.ch <- c.current
	}
	c.timers = pending
}

// Waiters returns the number of timers that have not fired yet.
func (c *FakeClock) Waiters() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// AwaitWaiters polls until at least n timers are pending or the real-time
// deadline passes. Tests call it before Advance so the code under test has
// started waiting. It reports whether the timers appeared.
func (c *FakeClock) AwaitWaiters(n int, deadline time.Duration) bool {
	stop := time.Now().Add(deadline)
	for time.Now().Before(stop) {
		if c.Waiters() >= n {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return c.Waiters() >= n
}
