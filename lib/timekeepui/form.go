// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timekeepui

import (
	"errors"
	"strconv"
	"unicode"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Bounds of the countdown form fields.
const (
	maxFormMinutes = 99
	maxFormSeconds = 59
)

var errZeroDuration = errors.New("enter a time greater than zero")

// countdownForm is the modal minutes/seconds entry for setting the
// countdown target. Fields accept digits only, two at most.
type countdownForm struct {
	minutes textinput.Model
	seconds textinput.Model
	focus   int // 0 minutes, 1 seconds.
	err     error
}

func newCountdownForm(target int64) countdownForm {
	newField := func(prompt string) textinput.Model {
		field := textinput.New()
		field.Prompt = prompt
		field.Placeholder = "00"
		field.CharLimit = 2
		field.Width = 3
		return field
	}

	form := countdownForm{
		minutes: newField("Minutes: "),
		seconds: newField("Seconds: "),
	}
	if target > 0 {
		totalSeconds := target / 1000
		form.minutes.SetValue(strconv.FormatInt(min(totalSeconds/60, maxFormMinutes), 10))
		form.seconds.SetValue(strconv.FormatInt(totalSeconds%60, 10))
	}
	form.minutes.Focus()
	return form
}

// toggleFocus moves the cursor to the other field.
func (form *countdownForm) toggleFocus() {
	form.focus = 1 - form.focus
	if form.focus == 0 {
		form.seconds.Blur()
		form.minutes.Focus()
	} else {
		form.minutes.Blur()
		form.seconds.Focus()
	}
}

// update forwards a key to the focused field, discarding runes that
// are not digits.
func (form *countdownForm) update(message tea.KeyMsg) tea.Cmd {
	for _, character := range message.Runes {
		if !unicode.IsDigit(character) {
			return nil
		}
	}
	form.err = nil

	var cmd tea.Cmd
	if form.focus == 0 {
		form.minutes, cmd = form.minutes.Update(message)
	} else {
		form.seconds, cmd = form.seconds.Update(message)
	}
	return cmd
}

// values validates the fields. Empty fields count as zero; at least
// one must be positive.
func (form countdownForm) values() (minutes, seconds int, err error) {
	minutes, err = parseField(form.minutes.Value(), maxFormMinutes, "minutes")
	if err != nil {
		return 0, 0, err
	}
	seconds, err = parseField(form.seconds.Value(), maxFormSeconds, "seconds")
	if err != nil {
		return 0, 0, err
	}
	if minutes == 0 && seconds == 0 {
		return 0, 0, errZeroDuration
	}
	return minutes, seconds, nil
}

func parseField(text string, limit int, name string) (int, error) {
	if text == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(text)
	if err != nil || value < 0 || value > limit {
		return 0, errors.New(name + " must be 0-" + strconv.Itoa(limit))
	}
	return value, nil
}

// body returns the form's lines for the modal.
func (form countdownForm) body() []string {
	lines := []string{form.minutes.View(), form.seconds.View()}
	if form.err != nil {
		lines = append(lines, "", form.err.Error())
	}
	return lines
}
