// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/stopwatch"
)

func stopwatchCommand(app *App, options *globalOptions) *cli.Command {
	// operation applies one transition to the reconstructed stopwatch
	// and prints the resulting state.
	operation := func(name, summary string, apply func(*stopwatch.Engine)) *cli.Command {
		return &cli.Command{
			Name:    name,
			Summary: summary,
			Usage:   "timekeep stopwatch " + name,
			Run: noArgs(func(context.Context) error {
				return app.withSession(options, func(s *session) error {
					engine := s.stopwatch()
					defer engine.Close()
					apply(engine)
					printStopwatch(app.stdout(), engine.Snapshot())
					return nil
				})
			}),
		}
	}

	return &cli.Command{
		Name:    "stopwatch",
		Summary: "Control the stopwatch",
		Description: `Start, stop, reset, or lap the persistent stopwatch. Each subcommand
prints the state and elapsed time afterwards. Without a subcommand the
current state and laps are printed.

Operations that do not apply in the current state are ignored: "stop"
on a stopped stopwatch and "lap" while stopped change nothing.`,
		Usage: "timekeep stopwatch [start|stop|reset|lap]",
		Examples: []cli.Example{
			{Description: "Start timing", Command: "timekeep stopwatch start"},
			{Description: "Record a lap", Command: "timekeep stopwatch lap"},
		},
		Subcommands: []*cli.Command{
			operation("start", "Start or resume timing", (*stopwatch.Engine).Start),
			operation("stop", "Stop timing, keeping the elapsed time", (*stopwatch.Engine).Stop),
			operation("reset", "Clear the elapsed time and laps", (*stopwatch.Engine).Reset),
			operation("lap", "Record the current elapsed time as a lap", func(engine *stopwatch.Engine) {
				before := len(engine.Snapshot().Laps)
				engine.Lap()
				if laps := engine.Snapshot().Laps; len(laps) > before {
					fmt.Fprintf(app.stdout(), "lap %d: %s\n", len(laps), stopwatch.Snapshot{Elapsed: laps[len(laps)-1]}.Formatted())
				}
			}),
		},
		Run: noArgs(func(context.Context) error {
			return app.withSession(options, func(s *session) error {
				engine := s.stopwatch()
				defer engine.Close()
				snapshot := engine.Snapshot()
				printStopwatch(app.stdout(), snapshot)
				laps := snapshot.FormattedLaps()
				for i := len(laps) - 1; i >= 0; i-- {
					fmt.Fprintf(app.stdout(), "  #%-3d %s\n", i+1, laps[i])
				}
				return nil
			})
		}),
	}
}

func printStopwatch(w io.Writer, snapshot stopwatch.Snapshot) {
	fmt.Fprintf(w, "%s %s\n", snapshot.State, snapshot.Formatted())
}
