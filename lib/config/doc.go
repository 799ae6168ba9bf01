// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for timekeep.
//
// Configuration comes from a single file named by either the
// TIMEKEEP_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). [Resolve] implements the command-line precedence:
// flag, then environment, then [Default]. There is no search path.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${XDG_STATE_HOME}, and ${VAR:-default} patterns are
// expanded. Durations are kept as strings in the file ("10ms", "1h")
// and checked by [Config.Validate]; the typed accessors assume a
// validated Config.
//
// This package depends on no other timekeep packages.
package config
