// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Command is a CLI command or subcommand.
type Command struct {
	// Name is the command name as typed (e.g. "countdown", "set").
	Name string

	// Summary is a one-line description for the parent's listing.
	Summary string

	// Description is the detailed text for the command's own help.
	Description string

	// Usage overrides the synthesized usage line, e.g.
	// "timekeep countdown set <minutes> <seconds>".
	Usage string

	Examples []Example

	// Flags returns this command's flag set. Called lazily, possibly
	// more than once; every call must bind the same variables. Nil
	// means the command takes no flags.
	Flags func() *pflag.FlagSet

	// Subcommands are dispatched by the first positional argument.
	Subcommands []*Command

	// Run executes the command with the arguments left after flag
	// parsing. When Subcommands are also set, Run handles the case
	// where no subcommand name is given.
	Run func(ctx context.Context, args []string) error

	// HelpOutput receives help text. Inherited from the parent when
	// nil; os.Stderr at the root.
	HelpOutput io.Writer

	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	Description string
	Command     string
}

// Execute parses args and dispatches to the matching subcommand or
// Run function.
func (c *Command) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(c.helpOutput())
		return nil
	}

	if len(c.Subcommands) > 0 {
		// Flags of a dispatching command stop at the first positional
		// argument, which names the subcommand.
		if c.Flags != nil && len(args) > 0 && strings.HasPrefix(args[0], "-") {
			flagSet := c.Flags()
			flagSet.SetInterspersed(false)
			remaining, err := c.parseFlags(flagSet, args)
			if err != nil {
				return err
			}
			if len(remaining) > 0 && isHelpFlag(remaining[0]) {
				c.PrintHelp(c.helpOutput())
				return nil
			}
			args = remaining
		}

		if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
			return c.dispatch(ctx, args)
		}
		if c.Run == nil {
			c.PrintHelp(c.helpOutput())
			if len(args) == 0 {
				return Validation("subcommand required")
			}
			return Validation("subcommand required (got flag %q)", args[0])
		}
	} else if c.Flags != nil {
		remaining, err := c.parseFlags(c.Flags(), args)
		if err != nil {
			return err
		}
		args = remaining
	}

	if c.Run != nil {
		return c.Run(ctx, args)
	}
	c.PrintHelp(c.helpOutput())
	return Internal("no action defined for %q", c.fullName())
}

func (c *Command) dispatch(ctx context.Context, args []string) error {
	name := args[0]
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			sub.parent = c
			return sub.Execute(ctx, args[1:])
		}
	}

	if suggestion := suggestCommand(name, c.Subcommands); suggestion != "" {
		return Validation("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
			name, suggestion, c.fullName())
	}
	return Validation("unknown command %q\n\nRun '%s --help' for usage.", name, c.fullName())
}

// parseFlags parses args into flagSet and returns the positional
// arguments. Parse errors become validation errors with a flag
// suggestion when one is close enough.
func (c *Command) parseFlags(flagSet *pflag.FlagSet, args []string) ([]string, error) {
	flagSet.SetOutput(io.Discard)
	if err := flagSet.Parse(args); err != nil {
		message := err.Error()
		if strings.Contains(message, "unknown flag") || strings.Contains(message, "unknown shorthand flag") {
			// The failed parse may have left state behind; look the
			// suggestion up in a fresh set.
			if suggestion := suggestFlag(args, c.Flags()); suggestion != "" {
				return nil, Validation("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
					message, suggestion, c.fullName())
			}
		}
		return nil, Validation("%s\n\nRun '%s --help' for usage.", message, c.fullName())
	}
	return flagSet.Args(), nil
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s [flags] <command>\n", name)
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		tw.Flush()
	}

	if c.Flags != nil {
		if usage := c.Flags().FlagUsages(); usage != "" {
			fmt.Fprintf(w, "\nFlags:\n%s", usage)
		}
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for index, example := range c.Examples {
			if index > 0 {
				fmt.Fprintln(w)
			}
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

func (c *Command) helpOutput() io.Writer {
	for command := c; command != nil; command = command.parent {
		if command.HelpOutput != nil {
			return command.HelpOutput
		}
	}
	return os.Stderr
}

// fullName returns the command path, e.g. "timekeep countdown set".
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}
