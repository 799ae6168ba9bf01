// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the timekeep
// binary.
//
// The central type is [Command]: a named node with optional nested
// [Command.Subcommands], a lazily built [pflag.FlagSet], and a Run
// function. The tree is assembled in cmd/timekeep/commands and
// dispatched via [Command.Execute], which parses flags, routes to
// subcommands, and prints structured help with examples. Flags on a
// command that also has subcommands are parsed before dispatch, so
// global options such as --store may precede the subcommand name.
//
// Unknown subcommands and flags get a "did you mean" suggestion based
// on Levenshtein distance (at most 3 edits).
//
// Errors returned by Run may be categorized with [Validation] or
// [Internal]; an [ExitError] requests a specific exit code without an
// extra error line.
package cli
