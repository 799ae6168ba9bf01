// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides the injectable time source used by every
// timekeeping engine.
//
// Engines never call time.Now or time.AfterFunc directly. They hold a
// Clock and derive elapsed or remaining time from a persisted anchor
// plus Clock.Now, and schedule their single recomputation callback
// through Clock.AfterFunc. In production Real() provides the standard
// library behavior. In tests Fake() provides a clock that stands still
// until Advance or Set is called, which makes millisecond-level
// assertions deterministic:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	engine, _ := stopwatch.New(stopwatch.Config{Clock: c, ...})
//	engine.Start()
//	c.Advance(1230 * time.Millisecond)
//	// engine.Formatted() == "00:01.23"
//
// # Callback semantics
//
// FakeClock.Advance moves the current time to the target first and then
// runs every AfterFunc callback whose deadline falls at or before the
// target, in deadline order, on the calling goroutine. A callback
// therefore observes Now() == target, exactly like a real timer that
// fired late. Engines that reschedule from Now() (the clock view's
// boundary alignment) are tested for drift correction by advancing past
// a deadline on purpose.
//
// Callbacks registered during Advance with a deadline inside the target
// window fire in the same Advance call.
package clock
