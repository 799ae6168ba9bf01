// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// DetectProfile returns the color profile to use for output, honoring
// NO_COLOR and CLICOLOR_FORCE from the environment.
func DetectProfile(output io.Writer) termenv.Profile {
	return termenv.NewOutput(output).EnvColorProfile()
}

// NewRenderer returns a lipgloss renderer pinned to profile. lipgloss
// otherwise re-detects the profile from the process's stdout, which
// is wrong when the program draws on stderr or in tests.
func NewRenderer(output io.Writer, profile termenv.Profile) *lipgloss.Renderer {
	renderer := lipgloss.NewRenderer(output, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)
	return renderer
}
