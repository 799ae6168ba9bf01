// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package timefmt renders engine values for display: elapsed and
// remaining durations as MM:SS.cc, and wall-clock instants as hour,
// minute and second fields in 12- or 24-hour form.
//
// Every function is pure. Callers pass milliseconds or a time.Time they
// have already corrected; nothing here reads a clock.
package timefmt
