// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"
)

// NewCommandLogger creates the structured logger for one-shot
// commands. On a terminal it writes slog text; when output is piped or
// redirected it writes JSON so scripts can parse it.
//
// Callers scope it with With:
//
//	logger := cli.NewCommandLogger(os.Stderr, level).With("command", "countdown/start")
func NewCommandLogger(output io.Writer, level slog.Leveler) *slog.Logger {
	options := &slog.HandlerOptions{Level: level}
	if isTerminal(output) {
		return slog.New(slog.NewTextHandler(output, options))
	}
	return slog.New(slog.NewJSONHandler(output, options))
}

// isTerminal reports whether output is a terminal file.
func isTerminal(output io.Writer) bool {
	file, ok := output.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
