// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/anchor"
)

func viewCommand(app *App, options *globalOptions) *cli.Command {
	return &cli.Command{
		Name:    "view",
		Summary: "Show or set the view the interactive display opens on",
		Usage:   "timekeep view [stopwatch|countdown|clock]",
		Examples: []cli.Example{
			{Description: "Open on the countdown next time", Command: "timekeep view countdown"},
		},
		Run: func(_ context.Context, args []string) error {
			if len(args) > 1 {
				return cli.Validation("unexpected argument %q", args[1])
			}
			var target anchor.View
			if len(args) == 1 {
				parsed, err := anchor.ParseView(args[0])
				if err != nil {
					return cli.Validation("%w", err)
				}
				target = parsed
			}

			return app.withSession(options, func(s *session) error {
				views := s.views()
				if target != "" {
					if err := views.Save(target); err != nil {
						return cli.Internal("saving view: %w", err)
					}
					fmt.Fprintln(app.stdout(), target)
					return nil
				}
				current, err := views.Load()
				if err != nil {
					return cli.Internal("loading view: %w", err)
				}
				fmt.Fprintln(app.stdout(), current)
				return nil
			})
		},
	}
}
