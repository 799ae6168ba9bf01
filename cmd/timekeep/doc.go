// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Timekeep is a persistent stopwatch, countdown, and network-corrected
// wall clock for the terminal.
//
// Usage:
//
//	timekeep [--config path] [--store sqlite|file|memory] [--store-path path] <command>
//
// "timekeep ui" opens the interactive display. The one-shot commands
// (stopwatch, countdown, clock, view, status) reconstruct the engines
// from the store, apply one operation, print the result, and exit, so
// the same timers can be driven from scripts and from the display.
//
// Exit codes: 0 on success, 1 on any error, and 2 from "countdown wait"
// when there is no running countdown.
package main
