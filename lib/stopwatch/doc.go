// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package stopwatch implements an upward-counting stopwatch with laps
// whose state survives process restarts.
//
// The engine never accumulates time by counting ticks. It keeps an
// anchor (an accumulated duration plus, while running, the Unix
// millisecond at which the current run started) and derives elapsed
// time from the anchor and the clock on every read. The periodic tick
// only refreshes the published value; a late or skipped tick costs
// display freshness, never accuracy.
//
// The anchor is written to a [Repository] on every transition (start,
// stop, reset, lap) and never from the tick path. [New] reconstructs
// the engine from whatever the repository holds: a stopwatch that was
// running when the previous process exited is still running, and
// reports the time that passed while nothing was observing it.
//
// All methods are safe for concurrent use. Control operations that
// make no sense in the current state (Stop while stopped, Lap while
// stopped) are ignored.
package stopwatch
