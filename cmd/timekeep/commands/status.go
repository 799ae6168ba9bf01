// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/timekeep/cmd/timekeep/cli"
	"github.com/bureau-foundation/timekeep/lib/codec"
	"github.com/bureau-foundation/timekeep/lib/countdown"
	"github.com/bureau-foundation/timekeep/lib/kvstore"
	"github.com/bureau-foundation/timekeep/lib/stopwatch"
	"github.com/bureau-foundation/timekeep/lib/timefmt"
)

// statusReport is the --json form of "timekeep status".
type statusReport struct {
	View      string          `json:"view"`
	Stopwatch stopwatchStatus `json:"stopwatch"`
	Countdown countdownStatus `json:"countdown"`
	Clock     clockStatus     `json:"clock"`
}

type stopwatchStatus struct {
	State     string   `json:"state"`
	Elapsed   string   `json:"elapsed"`
	ElapsedMs int64    `json:"elapsed_ms"`
	Laps      []string `json:"laps"`
	LapsMs    []int64  `json:"laps_ms"`
}

type countdownStatus struct {
	State       string `json:"state"`
	Remaining   string `json:"remaining"`
	RemainingMs int64  `json:"remaining_ms"`
	Target      string `json:"target"`
	TargetMs    int64  `json:"target_ms"`
}

type clockStatus struct {
	// Time is device time; status never queries the authority.
	Time     string `json:"time"`
	Is24Hour bool   `json:"is_24_hour"`
}

func statusCommand(app *App, options *globalOptions) *cli.Command {
	var jsonOutput, raw bool
	return &cli.Command{
		Name:    "status",
		Summary: "Print the state of every timer",
		Description: `Reconstruct the stopwatch and countdown from the store and print their
current values, the active view, and the device clock. The clock is not
synchronized; use "timekeep clock now" for corrected time.`,
		Usage: "timekeep status [--json | --raw]",
		Examples: []cli.Example{
			{Description: "Machine-readable state", Command: "timekeep status --json | jq .stopwatch.elapsed_ms"},
			{Description: "Inspect a file store's snapshot", Command: "timekeep --store file status --raw"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("status", pflag.ContinueOnError)
			flagSet.BoolVar(&jsonOutput, "json", false, "print JSON instead of a table")
			flagSet.BoolVar(&raw, "raw", false, "print the file store's snapshot in CBOR diagnostic notation")
			return flagSet
		},
		Run: noArgs(func(context.Context) error {
			if jsonOutput && raw {
				return cli.Validation("--json and --raw are mutually exclusive")
			}
			return app.withSession(options, func(s *session) error {
				if raw {
					return printRawStore(app.stdout(), s.store)
				}
				report, err := s.status()
				if err != nil {
					return err
				}
				if jsonOutput {
					return cli.WriteJSON(app.stdout(), report)
				}
				return printStatus(app.stdout(), report)
			})
		}),
	}
}

func (s *session) status() (statusReport, error) {
	stopwatchEngine := s.stopwatch()
	defer stopwatchEngine.Close()
	countdownEngine := s.countdown()
	defer countdownEngine.Close()
	realTime, err := s.realTime(s.logger)
	if err != nil {
		return statusReport{}, err
	}
	defer realTime.Close()

	view, err := s.views().Load()
	if err != nil {
		return statusReport{}, cli.Internal("loading view: %w", err)
	}

	return statusReport{
		View:      string(view),
		Stopwatch: newStopwatchStatus(stopwatchEngine.Snapshot()),
		Countdown: newCountdownStatus(countdownEngine.Snapshot()),
		Clock: clockStatus{
			Time:     realTime.Parts().String(),
			Is24Hour: realTime.Is24Hour(),
		},
	}, nil
}

func newStopwatchStatus(snapshot stopwatch.Snapshot) stopwatchStatus {
	status := stopwatchStatus{
		State:     snapshot.State.String(),
		Elapsed:   snapshot.Formatted(),
		ElapsedMs: snapshot.Elapsed.Milliseconds(),
		Laps:      snapshot.FormattedLaps(),
		LapsMs:    make([]int64, len(snapshot.Laps)),
	}
	for i, lap := range snapshot.Laps {
		status.LapsMs[i] = lap.Milliseconds()
	}
	return status
}

func newCountdownStatus(snapshot countdown.Snapshot) countdownStatus {
	return countdownStatus{
		State:       snapshot.State.String(),
		Remaining:   snapshot.Formatted(),
		RemainingMs: snapshot.Remaining.Milliseconds(),
		Target:      timefmt.Elapsed(snapshot.Target.Milliseconds()),
		TargetMs:    snapshot.Target.Milliseconds(),
	}
}

// printRawStore prints the persisted key space exactly as the file
// backend stored it.
func printRawStore(w io.Writer, store kvstore.Store) error {
	file, ok := store.(*kvstore.File)
	if !ok {
		return cli.Validation("--raw requires the file store backend")
	}
	data, err := file.Raw()
	if err != nil {
		return cli.Internal("reading store snapshot: %w", err)
	}
	if data == nil {
		fmt.Fprintln(w, "(empty)")
		return nil
	}
	diagnostic, err := codec.Diagnose(data)
	if err != nil {
		return cli.Internal("decoding store snapshot: %w", err)
	}
	fmt.Fprintln(w, diagnostic)
	return nil
}

func printStatus(w io.Writer, report statusReport) error {
	table := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(table, "view\t%s\n", report.View)

	stopwatchLine := report.Stopwatch.State + " " + report.Stopwatch.Elapsed
	switch laps := len(report.Stopwatch.Laps); laps {
	case 0:
	case 1:
		stopwatchLine += " (1 lap)"
	default:
		stopwatchLine += fmt.Sprintf(" (%d laps)", laps)
	}
	fmt.Fprintf(table, "stopwatch\t%s\n", stopwatchLine)

	countdownLine := report.Countdown.State
	switch report.Countdown.State {
	case countdown.Unset.String():
	case countdown.Expired.String():
		countdownLine += " (of " + report.Countdown.Target + ")"
	default:
		countdownLine += " " + report.Countdown.Remaining + " of " + report.Countdown.Target
	}
	fmt.Fprintf(table, "countdown\t%s\n", countdownLine)
	fmt.Fprintf(table, "clock\t%s (device time)\n", report.Clock.Time)
	return table.Flush()
}
