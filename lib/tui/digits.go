// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// DigitHeight is the number of rows in a large-digit rendering.
const DigitHeight = 5

// glyphs is a 5-row block font covering the characters that appear in
// formatted readouts. Every row of a glyph has the same width.
var glyphs = map[rune][DigitHeight]string{
	'0': {"███", "█ █", "█ █", "█ █", "███"},
	'1': {" █ ", "██ ", " █ ", " █ ", "███"},
	'2': {"███", "  █", "███", "█  ", "███"},
	'3': {"███", "  █", "███", "  █", "███"},
	'4': {"█ █", "█ █", "███", "  █", "  █"},
	'5': {"███", "█  ", "███", "  █", "███"},
	'6': {"███", "█  ", "███", "█ █", "███"},
	'7': {"███", "  █", "  █", "  █", "  █"},
	'8': {"███", "█ █", "███", "█ █", "███"},
	'9': {"███", "█ █", "███", "  █", "███"},
	':': {" ", "█", " ", "█", " "},
	'.': {" ", " ", " ", " ", "█"},
	'-': {"   ", "   ", "███", "   ", "   "},
	' ': {" ", " ", " ", " ", " "},
}

// BigText renders text in the block font, one glyph column gap
// between characters. Runes without a glyph render as blank space of
// their display width, so a stray letter never shifts the layout.
func BigText(text string) []string {
	var rows [DigitHeight]strings.Builder
	for index, character := range text {
		glyph, ok := glyphs[character]
		if !ok {
			blank := strings.Repeat(" ", ansi.StringWidth(string(character)))
			glyph = [DigitHeight]string{blank, blank, blank, blank, blank}
		}
		for row := range rows {
			if index > 0 {
				rows[row].WriteByte(' ')
			}
			rows[row].WriteString(glyph[row])
		}
	}

	lines := make([]string, DigitHeight)
	for row := range rows {
		lines[row] = rows[row].String()
	}
	return lines
}

// BigWidth returns the display width of BigText(text).
func BigWidth(text string) int {
	return ansi.StringWidth(BigText(text)[0])
}

// CenterLines left-pads each line so the block is horizontally
// centered in width columns. The block is centered as a unit, on its
// widest line, so ragged lines keep their relative alignment. Lines
// wider than width are returned unchanged.
func CenterLines(lines []string, width int) []string {
	widest := 0
	for _, line := range lines {
		widest = max(widest, ansi.StringWidth(line))
	}
	pad := (width - widest) / 2
	if pad <= 0 {
		return lines
	}
	prefix := strings.Repeat(" ", pad)
	centered := make([]string, len(lines))
	for index, line := range lines {
		centered[index] = prefix + line
	}
	return centered
}
