// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/timekeepui"
	"github.com/bureau-foundation/timekeep/lib/tui"
)

func uiCommand(app *App, options *globalOptions) *cli.Command {
	var viewName string
	var logOutput string

	return &cli.Command{
		Name:    "ui",
		Summary: "Interactive stopwatch, countdown, and clock",
		Description: `Launch the full-screen display. Keys 1, 2, and 3 (or tab) switch
between the stopwatch, countdown, and clock; the active view is
remembered for next time. All three engines keep running while their
view is hidden, and their state survives quitting.

Warnings from background work, such as a failed clock sync, appear in
the help bar. Use --log-output to keep a full JSON log.`,
		Usage: "timekeep ui [--view stopwatch|countdown|clock] [--log-output path]",
		Examples: []cli.Example{
			{Description: "Open on the last used view", Command: "timekeep ui"},
			{Description: "Open on the clock and log to a file", Command: "timekeep ui --view clock --log-output /tmp/timekeep.log"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("ui", pflag.ContinueOnError)
			flagSet.StringVar(&viewName, "view", "", "view to open on (default: the last used view)")
			flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
			return flagSet
		},
		Run: noArgs(func(ctx context.Context) error {
			var initialView anchor.View
			if viewName != "" {
				parsed, err := anchor.ParseView(viewName)
				if err != nil {
					return cli.Validation("--view: %w", err)
				}
				initialView = parsed
			}
			// The terminal belongs to the program once it starts, so the
			// store and engines log through the status bar from the
			// moment the session opens.
			tuiHandler := timekeepui.NewTUILogHandler(slog.LevelWarn)
			logger, closeLog, err := uiLogger(tuiHandler, logOutput)
			if err != nil {
				return err
			}
			defer closeLog()
			return app.withSessionLogger(options, logger, func(s *session) error {
				return runUI(ctx, s, tuiHandler, initialView)
			})
		}),
	}
}

// uiLogger sends records at WARN and above to the status bar through
// tuiHandler and, when logOutput is set, every record to that file as
// JSON. The returned function closes the file.
func uiLogger(tuiHandler slog.Handler, logOutput string) (*slog.Logger, func(), error) {
	if logOutput == "" {
		return slog.New(tuiHandler), func() {}, nil
	}
	fileHandler, closeFile, err := openFileLogHandler(logOutput)
	if err != nil {
		return nil, nil, cli.Validation("cannot open log file %s: %w", logOutput, err)
	}
	return slog.New(fanoutHandler{tuiHandler, fileHandler}), closeFile, nil
}

func runUI(ctx context.Context, s *session, tuiHandler *timekeepui.TUILogHandler, initialView anchor.View) error {
	stopwatchEngine := s.stopwatch()
	defer stopwatchEngine.Close()
	countdownEngine := s.countdown()
	defer countdownEngine.Close()
	realTime, err := s.realTime(s.logger)
	if err != nil {
		return err
	}
	defer realTime.Close()

	output := s.app.stderr()
	model := timekeepui.NewModel(timekeepui.Config{
		Stopwatch:   stopwatchEngine,
		Countdown:   countdownEngine,
		RealTime:    realTime,
		Views:       anchor.NewViewRepository(s.store, s.logger),
		InitialView: initialView,
		Clock:       s.app.clock(),
		Renderer:    tui.NewRenderer(output, tui.DetectProfile(output)),
		Logger:      s.logger,
	})

	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)
	tuiHandler.SetProgram(program)
	realTime.Start(ctx)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Interrupted by a signal. Every operation has already saved
		// its anchor.
		return nil
	}
	return err
}

func openFileLogHandler(path string) (slog.Handler, func(), error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
	return handler, func() { file.Close() }, nil
}

// fanoutHandler sends each record to every sub-handler enabled for its
// level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			errs = append(errs, handler.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for i, handler := range handlers {
		derived[i] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for i, handler := range handlers {
		derived[i] = handler.WithGroup(name)
	}
	return derived
}
