// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package countdown implements a downward-counting timer whose
// deadline survives process restarts.
//
// A running countdown is anchored to an absolute deadline (Unix
// milliseconds); remaining time is always deadline minus now, so the
// engine cannot drift no matter how irregularly its recomputation
// fires. A paused countdown is anchored to the remaining duration
// captured at the pause. The operator's target duration is kept
// separately so that Reset restores what was set, not what was left.
//
// State machine:
//
//	Unset --SetTime(>0)--> Paused --Start--> Running --Pause--> Paused
//	                                           |
//	                                           +--deadline--> Expired
//
// Reset returns any state to Paused(target), or Unset when no positive
// target was ever set. SetTime is accepted in every state but Running.
//
// Expiry is persisted as a paused remaining of zero, so an engine
// reconstructed after its deadline passed (whether or not a process
// observed it) reports Expired until the next SetTime or Reset.
package countdown
