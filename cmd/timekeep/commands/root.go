// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/version"
)

// Root returns the timekeep command tree.
func Root(app *App) *cli.Command {
	options := &globalOptions{}
	var root *cli.Command
	root = &cli.Command{
		Name:    "timekeep",
		Summary: "Persistent stopwatch, countdown, and synchronized clock",
		Description: `timekeep keeps a stopwatch, a countdown, and a network-corrected
wall clock. Timers are stored as wall-clock anchors, so a stopwatch
started in one invocation keeps running after the process exits and
"timekeep status" later shows the time that passed in between.

Run "timekeep ui" for the interactive display, or use the one-shot
subcommands from scripts.`,
		Usage: "timekeep [flags] <command> [args]",
		Examples: []cli.Example{
			{Description: "Open the interactive display", Command: "timekeep ui"},
			{Description: "Start the stopwatch and check on it later", Command: "timekeep stopwatch start && timekeep status"},
			{Description: "Use a throwaway in-memory store", Command: "timekeep --store memory clock now"},
		},
		Flags:      options.flagSet,
		HelpOutput: app.stderr(),
		Run: func(ctx context.Context, args []string) error {
			if options.showVersion {
				fmt.Fprintln(app.stdout(), version.Info())
				return nil
			}
			root.PrintHelp(app.stderr())
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return cli.Validation("subcommand required")
		},
	}
	root.Subcommands = []*cli.Command{
		uiCommand(app, options),
		statusCommand(app, options),
		stopwatchCommand(app, options),
		countdownCommand(app, options),
		clockCommand(app, options),
		viewCommand(app, options),
		versionCommand(app),
	}
	return root
}

func versionCommand(app *App) *cli.Command {
	var full bool
	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "timekeep version [--full]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			flagSet.BoolVar(&full, "full", false, "include Go version and platform")
			return flagSet
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			if full {
				fmt.Fprintln(app.stdout(), version.Full())
				return nil
			}
			fmt.Fprintln(app.stdout(), version.Info())
			return nil
		},
	}
}

// noArgs wraps a run function for commands that take no positional
// arguments.
func noArgs(run func(ctx context.Context) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if len(args) > 0 {
			return cli.Validation("unexpected argument %q", args[0])
		}
		return run(ctx)
	}
}
