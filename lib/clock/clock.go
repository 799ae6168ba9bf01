// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the two time operations the engines depend on.
// Production code injects Real(); tests inject Fake().
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// AfterFunc waits for duration d, then calls f. The returned Timer
	// cancels the pending call with Stop. Callers must pass d > 0:
	// the fake clock runs f synchronously for d <= 0, which deadlocks
	// a caller that holds a lock f also takes.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a handle on a scheduled callback.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the Timer from firing. Returns true if the call stops
// the timer, false if the timer has already fired or been stopped. A
// false return on a real clock means the callback may be running
// concurrently; callers guard against that with their own generation
// counter.
func (t *Timer) Stop() bool {
	if t == nil {
		return false
	}
	return t.stopFunc()
}

// UnixMilli returns the current time of c in Unix milliseconds. This is
// the unit every persisted anchor is stored in.
func UnixMilli(c Clock) int64 {
	return c.Now().UnixMilli()
}
