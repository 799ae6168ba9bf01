// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package tui provides the terminal rendering pieces shared by
// timekeep's interactive surface: the color theme, large-digit
// rendering for the time readouts, overlay splicing for modal forms,
// a decaying highlight pulse, and a one-column scrollbar.
//
// Everything here is pure string manipulation on top of lipgloss and
// x/ansi. Nothing holds engine state; the bubbletea model in
// lib/timekeepui owns layout and input.
package tui
