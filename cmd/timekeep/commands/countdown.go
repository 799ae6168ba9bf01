// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/countdown"
	"github.com/bureau-foundation/timekeep/lib/timefmt"
)

// Bounds of "countdown set", matching the interactive form.
const (
	maxCountdownMinutes = 99
	maxCountdownSeconds = 59
)

func countdownCommand(app *App, options *globalOptions) *cli.Command {
	operation := func(name, summary string, apply func(*countdown.Engine)) *cli.Command {
		return &cli.Command{
			Name:    name,
			Summary: summary,
			Usage:   "timekeep countdown " + name,
			Run: noArgs(func(context.Context) error {
				return app.withSession(options, func(s *session) error {
					engine := s.countdown()
					defer engine.Close()
					apply(engine)
					printCountdown(app.stdout(), engine.Snapshot())
					return nil
				})
			}),
		}
	}

	return &cli.Command{
		Name:    "countdown",
		Summary: "Control the countdown timer",
		Description: `Set, start, pause, or reset the persistent countdown. The deadline is
stored as a wall-clock time, so a running countdown keeps counting down
while no timekeep process is open and is reported as expired once its
deadline has passed. Without a subcommand the current state is printed.`,
		Usage: "timekeep countdown [set <minutes> <seconds>|start|pause|reset|wait]",
		Examples: []cli.Example{
			{Description: "Set and start a five minute countdown", Command: "timekeep countdown set 5 0 && timekeep countdown start"},
			{Description: "Block until the running countdown expires", Command: "timekeep countdown wait && notify-send 'time is up'"},
		},
		Subcommands: []*cli.Command{
			countdownSetCommand(app, options),
			operation("start", "Start or resume the countdown", (*countdown.Engine).Start),
			operation("pause", "Pause, keeping the remaining time", (*countdown.Engine).Pause),
			operation("reset", "Restore the duration last set", (*countdown.Engine).Reset),
			countdownWaitCommand(app, options),
		},
		Run: noArgs(func(context.Context) error {
			return app.withSession(options, func(s *session) error {
				engine := s.countdown()
				defer engine.Close()
				printCountdown(app.stdout(), engine.Snapshot())
				return nil
			})
		}),
	}
}

func countdownSetCommand(app *App, options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "set",
		Summary: "Set the countdown duration",
		Description: `Set the countdown to minutes (0-99) and seconds (0-59), discarding any
paused or expired progress. The countdown is left paused; start it with
"timekeep countdown start". A running countdown must be paused or reset
first.`,
		Usage: "timekeep countdown set <minutes> <seconds>",
		Examples: []cli.Example{
			{Description: "Ninety seconds", Command: "timekeep countdown set 1 30"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) != 2 {
				return cli.Validation("expected <minutes> <seconds>, got %d argument(s)", len(args))
			}
			minutes, err := parseBounded("minutes", args[0], maxCountdownMinutes)
			if err != nil {
				return err
			}
			seconds, err := parseBounded("seconds", args[1], maxCountdownSeconds)
			if err != nil {
				return err
			}
			if minutes == 0 && seconds == 0 {
				return cli.Validation("countdown duration must be greater than zero")
			}

			return app.withSession(options, func(s *session) error {
				engine := s.countdown()
				defer engine.Close()
				if engine.Snapshot().Running() {
					return cli.Validation("countdown is running; pause or reset it first")
				}
				engine.SetTime(minutes, seconds)
				printCountdown(app.stdout(), engine.Snapshot())
				return nil
			})
		},
	}
}

func countdownWaitCommand(app *App, options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "wait",
		Summary: "Block until the running countdown expires",
		Description: `Wait for the running countdown to reach zero, then print its final
state and exit 0. Exits 2 without waiting when the countdown is not
running, so scripts can distinguish "expired" from "nothing to wait
for".`,
		Usage: "timekeep countdown wait",
		Run: noArgs(func(ctx context.Context) error {
			return app.withSession(options, func(s *session) error {
				engine := s.countdown()
				defer engine.Close()
				snapshot := engine.Snapshot()
				if !snapshot.Running() {
					printCountdown(app.stdout(), snapshot)
					return &cli.ExitError{Code: 2}
				}
				if err := waitForExpiry(ctx, app.clock(), engine, s.config.Countdown.Tick()); err != nil {
					return err
				}
				printCountdown(app.stdout(), engine.Snapshot())
				return nil
			})
		}),
	}
}

// waitForExpiry sleeps until the engine leaves the running state. The
// engine's own tick performs the expiry; each wait lasts until the
// predicted deadline, but at least one tick interval.
func waitForExpiry(ctx context.Context, source clock.Clock, engine *countdown.Engine, tick time.Duration) error {
	for {
		snapshot := engine.Snapshot()
		if !snapshot.Running() {
			return nil
		}
		wait := max(snapshot.Remaining, tick)
		done := make(chan struct{})
		timer := source.AfterFunc(wait, func() { close(done) })
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-done:
		}
	}
}

func parseBounded(name, value string, maximum int) (int, error) {
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, cli.Validation("%s must be a whole number, got %q", name, value)
	}
	if parsed < 0 || parsed > maximum {
		return 0, cli.Validation("%s must be 0-%d, got %d", name, maximum, parsed)
	}
	return parsed, nil
}

func printCountdown(w io.Writer, snapshot countdown.Snapshot) {
	switch snapshot.State {
	case countdown.Unset:
		fmt.Fprintln(w, "unset")
	case countdown.Expired:
		fmt.Fprintf(w, "expired (of %s)\n", timefmt.Elapsed(snapshot.Target.Milliseconds()))
	default:
		fmt.Fprintf(w, "%s %s of %s\n", snapshot.State, snapshot.Formatted(), timefmt.Elapsed(snapshot.Target.Milliseconds()))
	}
}
