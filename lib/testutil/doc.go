// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for timekeep packages.
//
// [RequireReceive] and [RequireClosed] encapsulate the timeout safety
// valve pattern (select with time.After fallback). Engine timing is
// driven by lib/clock's fake clock; these helpers are the only place
// tests wait on real wall-clock time, and only to hand values across
// goroutines.
//
// [LogRecorder] is a slog.Handler that keeps every record, for tests
// that assert a warning was logged.
//
// All helpers call t.Fatalf on failure rather than returning errors.
package testutil
