// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
)

func clockCommand(app *App, options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "clock",
		Summary: "Show the synchronized wall clock",
		Description: `Query the configured time authority and print the corrected local
time. When the authority cannot be reached the device time is printed
and a warning is logged.`,
		Usage: "timekeep clock <now|toggle-format>",
		Subcommands: []*cli.Command{
			clockNowCommand(app, options),
			clockToggleFormatCommand(app, options),
		},
	}
}

func clockNowCommand(app *App, options *globalOptions) *cli.Command {
	var noSync, showOffset bool
	return &cli.Command{
		Name:    "now",
		Summary: "Print the current time",
		Usage:   "timekeep clock now [--no-sync] [--offset]",
		Examples: []cli.Example{
			{Description: "Corrected time", Command: "timekeep clock now"},
			{Description: "Device time without a network query", Command: "timekeep clock now --no-sync"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("now", pflag.ContinueOnError)
			flagSet.BoolVar(&noSync, "no-sync", false, "skip the authority query and print device time")
			flagSet.BoolVar(&showOffset, "offset", false, "also print the measured offset from device time")
			return flagSet
		},
		Run: noArgs(func(ctx context.Context) error {
			return app.withSession(options, func(s *session) error {
				engine, err := s.realTime(s.logger)
				if err != nil {
					return err
				}
				defer engine.Close()
				if !noSync {
					engine.Sync(ctx)
				}
				fmt.Fprintln(app.stdout(), engine.Parts())
				if showOffset {
					fmt.Fprintf(app.stdout(), "offset %+.3fs\n", engine.Offset().Seconds())
				}
				return nil
			})
		}),
	}
}

func clockToggleFormatCommand(app *App, options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "toggle-format",
		Summary: "Switch between 12- and 24-hour display",
		Usage:   "timekeep clock toggle-format",
		Run: noArgs(func(context.Context) error {
			return app.withSession(options, func(s *session) error {
				engine, err := s.realTime(s.logger)
				if err != nil {
					return err
				}
				defer engine.Close()
				engine.ToggleFormat()
				if engine.Is24Hour() {
					fmt.Fprintln(app.stdout(), "24-hour")
				} else {
					fmt.Fprintln(app.stdout(), "12-hour")
				}
				return nil
			})
		}),
	}
}
