// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import "time"

// PulseDuration is how long a pulse stays visible after ignition.
const PulseDuration = 1500 * time.Millisecond

// Pulse is a highlight that fades out after it is ignited, used to
// flag a freshly recorded lap. The zero value is dark.
type Pulse struct {
	ignition time.Time
	target   int
}

// Ignite starts (or restarts) the pulse on target, an
// application-defined identifier such as a lap number.
func (pulse *Pulse) Ignite(target int, now time.Time) {
	pulse.ignition = now
	pulse.target = target
}

// Intensity returns 1.0 at ignition decaying linearly to 0.0 over
// [PulseDuration], or 0.0 when target is not the pulsed one.
func (pulse Pulse) Intensity(target int, now time.Time) float64 {
	if pulse.ignition.IsZero() || target != pulse.target {
		return 0
	}
	elapsed := now.Sub(pulse.ignition)
	if elapsed < 0 || elapsed >= PulseDuration {
		return 0
	}
	return 1 - float64(elapsed)/float64(PulseDuration)
}

// Lit reports whether target is currently highlighted.
func (pulse Pulse) Lit(target int, now time.Time) bool {
	return pulse.Intensity(target, now) > 0
}
