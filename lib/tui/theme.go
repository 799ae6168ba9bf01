// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the color palette for the timekeep terminal surface. All
// colors are ANSI 256-color codes so the palette renders the same in
// tmux and plain xterms.
type Theme struct {
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Readout colors, chosen by engine state.
	Running lipgloss.Color
	Paused  lipgloss.Color
	Idle    lipgloss.Color
	Expired lipgloss.Color

	// Pulse is the background tint for a freshly recorded lap.
	Pulse lipgloss.Color

	// Log records surfaced in the status bar.
	Warning lipgloss.Color
	Error   lipgloss.Color

	ModalForeground lipgloss.Color
	ModalBackground lipgloss.Color
}

// Readout classifies a time readout for coloring.
type Readout int

const (
	ReadoutIdle Readout = iota
	ReadoutRunning
	ReadoutPaused
	ReadoutExpired
)

// ReadoutColor returns the digit color for a readout state.
func (theme Theme) ReadoutColor(readout Readout) lipgloss.Color {
	switch readout {
	case ReadoutRunning:
		return theme.Running
	case ReadoutPaused:
		return theme.Paused
	case ReadoutExpired:
		return theme.Expired
	default:
		return theme.Idle
	}
}

// DefaultTheme targets 256-color terminals with a dark background.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	Running: lipgloss.Color("114"), // green
	Paused:  lipgloss.Color("220"), // amber
	Idle:    lipgloss.Color("252"),
	Expired: lipgloss.Color("196"), // red

	Pulse: lipgloss.Color("58"),

	Warning: lipgloss.Color("220"),
	Error:   lipgloss.Color("196"),

	ModalForeground: lipgloss.Color("252"),
	ModalBackground: lipgloss.Color("237"),
}
