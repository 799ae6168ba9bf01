// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package anchor defines the minimal persisted state from which each
// timekeeping engine recomputes its current value, and the typed
// repositories that move that state in and out of a [kvstore.Store].
//
// An anchor never stores "the time shown on screen". It stores the
// instants and durations that, combined with the current clock, yield
// that time: a stopwatch stores how much it had accumulated and when
// the current run began; a countdown stores when it will reach zero.
// Reconstructing an engine from its anchor therefore reproduces exactly
// the time that would have elapsed had the process kept observing.
//
// Repositories are tolerant readers. A key that is missing, not a
// number, or out of range is reported as unset and logged at WARN;
// Load only fails when the backend itself fails. They are strict
// writers: Save deletes every key its anchor does not set, so no stale
// marker outlives the transition that made it inapplicable.
//
// Each repository namespaces its keys with [kvstore.Namespace], so the
// layout of the shared store is:
//
//	stopwatch.run_start_unix_ms   run start, absent when stopped
//	stopwatch.accumulated_ms      accumulated duration
//	stopwatch.laps                JSON array of elapsed ms values
//	countdown.target_ms           last duration set by the operator
//	countdown.end_unix_ms         deadline, absent unless running
//	countdown.paused_remaining_ms remaining, absent unless paused
//	clock.is_24_hour              "true" or "false"
//	view.active                   stopwatch, countdown or clock
package anchor
