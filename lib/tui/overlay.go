// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// SpliceOverlay paints overlayLines over view with the top-left corner
// at (anchorX, anchorY). Truncation is ANSI-aware, so styling in the
// underlying view survives on both sides of the overlay. Rows that
// fall outside the view are dropped. Short view lines are padded with
// spaces up to anchorX so the overlay lands in the right column.
func SpliceOverlay(view string, overlayLines []string, anchorX, anchorY int) string {
	if len(overlayLines) == 0 {
		return view
	}
	anchorX = max(anchorX, 0)

	viewLines := strings.Split(view, "\n")
	for offset, overlayLine := range overlayLines {
		row := anchorY + offset
		if row < 0 || row >= len(viewLines) {
			continue
		}
		base := viewLines[row]
		baseWidth := ansi.StringWidth(base)

		var line strings.Builder
		if baseWidth >= anchorX {
			line.WriteString(ansi.Truncate(base, anchorX, ""))
		} else {
			line.WriteString(base)
			line.WriteString(strings.Repeat(" ", anchorX-baseWidth))
		}
		line.WriteString("\x1b[0m")
		line.WriteString(overlayLine)
		line.WriteString("\x1b[0m")

		if resume := anchorX + ansi.StringWidth(overlayLine); resume < baseWidth {
			line.WriteString(ansi.TruncateLeft(base, resume, ""))
		}
		viewLines[row] = line.String()
	}
	return strings.Join(viewLines, "\n")
}
