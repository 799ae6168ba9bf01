// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderScrollbar renders a one-column scrollbar of height rows for a
// list of total items of which visible are on screen starting at
// offset. Returns "" when everything fits, so callers can skip the
// column entirely.
func RenderScrollbar(renderer *lipgloss.Renderer, theme Theme, height, total, visible, offset int) string {
	if height <= 0 || total <= visible {
		return ""
	}

	thumbSize := max(height*visible/total, 1)
	thumbOffset := 0
	if scrollable, travel := total-visible, height-thumbSize; scrollable > 0 && travel > 0 {
		thumbOffset = min(offset*travel/scrollable, travel)
	}

	track := renderer.NewStyle().Foreground(theme.BorderColor).Render("│")
	thumb := renderer.NewStyle().Foreground(theme.FaintText).Render("┃")

	rows := make([]string, height)
	for row := range rows {
		if row >= thumbOffset && row < thumbOffset+thumbSize {
			rows[row] = thumb
		} else {
			rows[row] = track
		}
	}
	return strings.Join(rows, "\n")
}
