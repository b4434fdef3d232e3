// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
	"time"
)

func TestFakeClock_DefaultTime(t *testing.T) {
	t.Parallel()

	want := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := NewFakeClock(time.Time{}).Now(); !got.Equal(want) {
		t.Errorf("Now() = %v, want %v", got, want)
	}
}

func TestFakeClock_AfterImmediate(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	for _, d := range []time.Duration{0, -time.Second} {
		select {
		case <-c.After(d):
		default:
			t.Errorf("After(%v) did not fire immediately", d)
		}
	}
	if c.Waiters() != 0 {
		t.Errorf("Waiters() = %d, want 0", c.Waiters())
	}
}

func TestFakeClock_AdvanceFiresDueTimers(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	short := c.After(time.Minute)
	long := c.After(time.Hour)

	c.Advance(59 * time.Second)
	select {
	case <-short:
		t.Fatal("timer fired early")
	default:
	}

	c.Advance(time.Second)
	select {
	case got := <-short:
		if want := c.Now(); !got.Equal(want) {
			t.Errorf("fired at %v, want %v", got, want)
		}
	default:
		t.Fatal("timer did not fire at its deadline")
	}
	if c.Waiters() != 1 {
		t.Errorf("Waiters() = %d, want 1", c.Waiters())
	}

	c.Advance(2 * time.Hour)
	<-long
}

func TestFakeClock_AwaitWaiters(t *testing.T) {
	t.Parallel()

	c := NewFakeClock(time.Time{})
	if c.AwaitWaiters(1, 5*time.Millisecond) {
		t.Fatal("AwaitWaiters() = true without timers")
	}

	go c.After(time.Second)
	if !c.AwaitWaiters(1, 5*time.Second) {
		t.Fatal("AwaitWaiters() = false after After()")
	}
}
