// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package timekeepui is the interactive terminal surface for timekeep:
// a bubbletea model with one view per facility (stopwatch, countdown,
// wall clock).
//
// The model owns no timing state. It forwards key presses to the
// engines' control operations and re-reads their snapshots on a 30ms
// frame tick, so everything it draws is derived from engine state and
// survives a restart. The active view is persisted so the next launch
// opens where the user left off.
//
// Background log records at or above the configured level reach the
// status bar through [TUILogHandler], because the alternate screen
// hides anything written to stderr.
package timekeepui
