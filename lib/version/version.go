// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Set via -ldflags, for example:
//
//	go build -ldflags "-X github.com/bureau-foundation/timekeep/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/timekeep
var (
	GitCommit = "unknown"
	GitDirty  = "false"
	BuildTime = "unknown"
	Version   = "0.1.0-dev"
)

// Info returns the one-line string printed by timekeep --version,
// e.g. "timekeep 0.1.0-dev (abc1234-dirty, 2026-03-01T10:00:00Z)".
func Info() string {
	commit := GitCommit
	if GitDirty == "true" {
		commit += "-dirty"
	}
	return fmt.Sprintf("timekeep %s (%s, %s)", Version, commit, BuildTime)
}

// Full appends the Go toolchain and platform to [Info], for bug
// reports.
func Full() string {
	var builder strings.Builder
	builder.WriteString(Info())
	fmt.Fprintf(&builder, "\n  Go: %s", runtime.Version())
	fmt.Fprintf(&builder, "\n  Platform: %s/%s", runtime.GOOS, runtime.GOARCH)
	return builder.String()
}

// Short returns just the version number.
func Short() string {
	return Version
}
