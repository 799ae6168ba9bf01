// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance or Set is called.
//
// FakeClock is safe for concurrent use by multiple goroutines.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for testing. AfterFunc callbacks
// run synchronously during Advance in deadline order. Do not call
// Advance or Set from within a callback; that deadlocks.
type FakeClock struct {
	mu       sync.Mutex
	current  time.Time
	sequence uint64
	waiters  []*fakeWaiter
}

// fakeWaiter is a pending AfterFunc callback.
type fakeWaiter struct {
	deadline time.Time

	// sequence breaks deadline ties in registration order, matching
	// the order a real runtime would most likely fire them.
	sequence uint64

	callback func()

	// stopped is set by Timer.Stop. Stopped waiters are dropped on the
	// next collection pass.
	stopped bool

	// fired prevents a callback from running twice when Advance calls
	// overlap.
	fired bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// AfterFunc schedules f to run once the clock has been advanced by at
// least d. If d <= 0, f runs synchronously before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sequence++
	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		sequence: c.sequence,
		callback: f,
	}
	c.waiters = append(c.waiters, waiter)

	return &Timer{
		stopFunc: func() bool {
			c.mu.Lock()
			defer c.mu.Unlock()
			if waiter.stopped || waiter.fired {
				return false
			}
			waiter.stopped = true
			return true
		},
	}
}

// Advance moves the clock forward by d and fires every callback whose
// deadline falls within the new time. Callbacks observe Now() equal to
// the advanced time, not their own deadline.
func (c *FakeClock) Advance(d time.Duration) {
	if d < 0 {
		panic("clock: negative Advance")
	}

	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	c.fireUntil(target)
}

// Set moves the clock to t. Moving forward behaves like Advance. Moving
// backward fires nothing and leaves pending deadlines untouched, which
// models a wall clock being stepped back by NTP or by hand.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()

	if t.After(current) {
		c.Advance(t.Sub(current))
		return
	}

	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Pending returns the number of callbacks that are scheduled and not
// yet fired or stopped. Engine tests use it to assert the "at most one
// outstanding timer" discipline.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, waiter := range c.waiters {
		if !waiter.stopped && !waiter.fired {
			count++
		}
	}
	return count
}

// NextDeadline returns the earliest pending deadline, or false if no
// callback is pending.
func (c *FakeClock) NextDeadline() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var earliest time.Time
	found := false
	for _, waiter := range c.waiters {
		if waiter.stopped || waiter.fired {
			continue
		}
		if !found || waiter.deadline.Before(earliest) {
			earliest = waiter.deadline
			found = true
		}
	}
	return earliest, found
}

// fireUntil runs expired callbacks until none remain at or before
// target. Callbacks may schedule new callbacks; those are picked up by
// the next pass.
func (c *FakeClock) fireUntil(target time.Time) {
	for {
		toFire := c.collectExpired(target)
		if len(toFire) == 0 {
			return
		}
		for _, waiter := range toFire {
			waiter.callback()
		}
	}
}

// collectExpired removes expired and stopped waiters from the pending
// list and returns the expired ones in deadline order. Acquires c.mu.
func (c *FakeClock) collectExpired(target time.Time) []*fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toFire []*fakeWaiter
	var remaining []*fakeWaiter
	for _, waiter := range c.waiters {
		switch {
		case waiter.stopped || waiter.fired:
		case !waiter.deadline.After(target):
			waiter.fired = true
			toFire = append(toFire, waiter)
		default:
			remaining = append(remaining, waiter)
		}
	}
	c.waiters = remaining

	sort.Slice(toFire, func(i, j int) bool {
		if toFire[i].deadline.Equal(toFire[j].deadline) {
			return toFire[i].sequence < toFire[j].sequence
		}
		return toFire[i].deadline.Before(toFire[j].deadline)
	})
	return toFire
}
