// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anchor

import (
	"fmt"
	"math"
	"slices"
	"time"
)

// MaxDurationMs is the largest millisecond value a Marker may hold. It
// is the range of time.Duration, so every stored quantity converts
// without overflow.
const MaxDurationMs = math.MaxInt64 / int64(time.Millisecond)

// Marker is an optional millisecond quantity: a Unix timestamp or a
// duration that is either present or absent.
type Marker struct {
	Value int64
	Valid bool
}

// Mark returns a present Marker holding value.
func Mark(value int64) Marker {
	return Marker{Value: value, Valid: true}
}

// Unset is the absent Marker.
var Unset = Marker{}

func (m Marker) String() string {
	if !m.Valid {
		return "unset"
	}
	return fmt.Sprintf("%d", m.Value)
}

// Stopwatch is the accumulated-duration anchor. The stopwatch is
// running exactly when RunStartUnixMs is present.
type Stopwatch struct {
	AccumulatedMs  int64
	RunStartUnixMs Marker

	// LapsMs holds elapsed values in the order they were recorded.
	LapsMs []int64
}

// Running reports whether the anchor describes a running stopwatch.
func (s Stopwatch) Running() bool {
	return s.RunStartUnixMs.Valid
}

// ElapsedMs returns the elapsed time at nowUnixMs. The live term is
// clamped at zero so a wall clock stepped backwards never produces less
// than the accumulated value.
func (s Stopwatch) ElapsedMs(nowUnixMs int64) int64 {
	if !s.RunStartUnixMs.Valid {
		return s.AccumulatedMs
	}
	return s.AccumulatedMs + max(0, nowUnixMs-s.RunStartUnixMs.Value)
}

// Clone returns a copy that shares no lap storage with s.
func (s Stopwatch) Clone() Stopwatch {
	s.LapsMs = slices.Clone(s.LapsMs)
	return s
}

// Countdown is the deadline anchor. At most one of EndUnixMs and
// PausedRemainingMs is present; neither is present while unset.
//
// An expired countdown is stored as PausedRemainingMs == 0 with no
// deadline, not as an absent paused marker. Reconstructing it yields
// Expired again rather than Paused(TargetMs), so reloading after expiry
// is idempotent.
type Countdown struct {
	// TargetMs is the duration last set by the operator. Reset restores
	// it.
	TargetMs Marker

	EndUnixMs         Marker
	PausedRemainingMs Marker
}

// Preferences holds clock display settings.
type Preferences struct {
	Is24Hour bool
}

// DefaultPreferences returns the settings used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{Is24Hour: true}
}

// View names one of the three switchable facilities.
type View string

const (
	ViewStopwatch View = "stopwatch"
	ViewCountdown View = "countdown"
	ViewClock     View = "clock"
)

// Views lists every View in display order.
var Views = []View{ViewStopwatch, ViewCountdown, ViewClock}

// ParseView validates a view name.
func ParseView(name string) (View, error) {
	view := View(name)
	if slices.Contains(Views, view) {
		return view, nil
	}
	return "", fmt.Errorf("unknown view %q (want stopwatch, countdown, or clock)", name)
}
