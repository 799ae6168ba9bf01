// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the timekeep command tree. [Root] returns the
// root [cli.Command]; an [App] carries the process's output streams and,
// for tests, a replacement clock and time authority.
//
// Every command resolves configuration through lib/config, applies the
// --store and --store-path overrides, and opens the store with
// lib/kvstore before reconstructing the engines it needs.
package commands
