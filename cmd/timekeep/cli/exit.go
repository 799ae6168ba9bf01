// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
)

// ExitError requests a non-zero exit code without printing an error
// line; the command has already written its own output. "timekeep
// countdown wait" uses it when there is no running countdown to wait
// for.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the requested code.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// ExitCode maps an error returned from [Command.Execute] to the
// process exit code and reports whether main should print it: 0 for
// nil, the requested code for an [ExitError], and 1 otherwise.
func ExitCode(err error) (code int, printError bool) {
	if err == nil {
		return 0, false
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, false
	}
	return 1, true
}
