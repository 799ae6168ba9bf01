// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timekeepui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the timekeep TUI.
type KeyMap struct {
	// View switching.
	ShowStopwatch key.Binding
	ShowCountdown key.Binding
	ShowClock     key.Binding
	NextView      key.Binding
	PreviousView  key.Binding

	// Shared by the stopwatch and countdown views: start when idle,
	// stop or pause when running.
	StartStop key.Binding
	Reset     key.Binding

	// Stopwatch.
	Lap        key.Binding
	ScrollUp   key.Binding // Lap list.
	ScrollDown key.Binding

	// Countdown.
	SetTime key.Binding

	// Clock.
	ToggleFormat key.Binding
	Resync       key.Binding

	// Countdown form.
	FormSubmit key.Binding
	FormCancel key.Binding
	FormNext   key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	ShowStopwatch: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "stopwatch"),
	),
	ShowCountdown: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "countdown"),
	),
	ShowClock: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "clock"),
	),
	NextView: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "next view"),
	),
	PreviousView: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-Tab", "previous view"),
	),
	StartStop: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("Space", "start/stop"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset"),
	),
	Lap: key.NewBinding(
		key.WithKeys("l"),
		key.WithHelp("l", "lap"),
	),
	ScrollUp: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "scroll laps"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "scroll laps"),
	),
	SetTime: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "set time"),
	),
	ToggleFormat: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "12/24h"),
	),
	Resync: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "resync"),
	),
	FormSubmit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "set"),
	),
	FormCancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "cancel"),
	),
	FormNext: key.NewBinding(
		key.WithKeys("tab", "shift+tab", "up", "down"),
		key.WithHelp("Tab", "switch field"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}
