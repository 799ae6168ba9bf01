// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Modal is a bordered box drawn over the main view: a bold title,
// body lines supplied by the caller (usually rendered text inputs),
// and a faint footer with key hints.
type Modal struct {
	Title  string
	Body   []string
	Footer string
}

// Render returns the modal's lines and the top-left anchor that
// centers it on a screenWidth x screenHeight view, ready for
// [SpliceOverlay].
func (modal Modal) Render(renderer *lipgloss.Renderer, theme Theme, screenWidth, screenHeight int) ([]string, int, int) {
	background := renderer.NewStyle().
		Foreground(theme.ModalForeground).
		Background(theme.ModalBackground)
	title := background.Bold(true).Foreground(theme.HeaderForeground)
	footer := background.Foreground(theme.FaintText)

	innerWidth := max(ansi.StringWidth(modal.Title), ansi.StringWidth(modal.Footer))
	for _, line := range modal.Body {
		innerWidth = max(innerWidth, ansi.StringWidth(line))
	}

	pad := func(styled string) string {
		if gap := innerWidth - ansi.StringWidth(styled); gap > 0 {
			styled += background.Render(strings.Repeat(" ", gap))
		}
		return background.Render(" ") + styled + background.Render(" ")
	}

	rows := []string{pad(title.Render(modal.Title)), pad("")}
	for _, line := range modal.Body {
		rows = append(rows, pad(background.Render(line)))
	}
	rows = append(rows, pad(""), pad(footer.Render(modal.Footer)))

	box := renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderColor).
		BorderBackground(theme.ModalBackground).
		Render(strings.Join(rows, "\n"))

	lines := strings.Split(box, "\n")
	anchorX := max((screenWidth-ansi.StringWidth(lines[0]))/2, 0)
	anchorY := max((screenHeight-len(lines))/2, 0)
	return lines, anchorX, anchorY
}
