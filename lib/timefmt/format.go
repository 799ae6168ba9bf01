// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timefmt

import (
	"fmt"
	"time"
)

// Elapsed formats a non-negative duration in milliseconds as MM:SS.cc.
// Minutes are padded to two digits but not capped, so an hour and a
// half renders as "90:00.00". Negative input is formatted as zero; use
// Signed where overrun must be visible.
func Elapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	centiseconds := ms / 10
	return fmt.Sprintf("%02d:%02d.%02d",
		centiseconds/6000,
		(centiseconds%6000)/100,
		centiseconds%100,
	)
}

// Signed formats ms like Elapsed with a leading "-" for negative
// values. A countdown shows "-00:00.01" only between a missed deadline
// and the next recomputation.
func Signed(ms int64) string {
	if ms < 0 {
		return "-" + Elapsed(-ms)
	}
	return Elapsed(ms)
}

// Laps returns laps formatted with Elapsed, in recording order.
func Laps(laps []int64) []string {
	formatted := make([]string, len(laps))
	for i, lap := range laps {
		formatted[i] = Elapsed(lap)
	}
	return formatted
}

// Meridiem is "AM", "PM", or empty in 24-hour mode.
type Meridiem string

const (
	AM Meridiem = "AM"
	PM Meridiem = "PM"
)

// Parts holds the zero-padded fields of a wall-clock display.
type Parts struct {
	Hours    string
	Minutes  string
	Seconds  string
	Meridiem Meridiem
}

// String joins the parts as "HH:MM:SS" with " AM"/" PM" appended in
// 12-hour mode.
func (p Parts) String() string {
	text := p.Hours + ":" + p.Minutes + ":" + p.Seconds
	if p.Meridiem != "" {
		text += " " + string(p.Meridiem)
	}
	return text
}

// ClockParts splits t into display fields in t's own location. In
// 12-hour mode hour 0 is shown as 12 and hours from noon on are PM.
func ClockParts(t time.Time, is24Hour bool) Parts {
	hour := t.Hour()
	parts := Parts{
		Minutes: fmt.Sprintf("%02d", t.Minute()),
		Seconds: fmt.Sprintf("%02d", t.Second()),
	}
	if is24Hour {
		parts.Hours = fmt.Sprintf("%02d", hour)
		return parts
	}

	parts.Meridiem = AM
	if hour >= 12 {
		parts.Meridiem = PM
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	parts.Hours = fmt.Sprintf("%02d", hour)
	return parts
}
