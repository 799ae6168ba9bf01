// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestCategoryOf(t *testing.T) {
	validation := Validation("minutes must be 0-99, got %d", 120)
	if validation.Error() != "minutes must be 0-99, got 120" {
		t.Errorf("Error() = %q", validation.Error())
	}

	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"validation", validation, CategoryValidation},
		{"wrapped validation", fmt.Errorf("countdown set: %w", validation), CategoryValidation},
		{"internal", Internal("opening store: %w", errors.New("locked")), CategoryInternal},
		{"plain", errors.New("boom"), CategoryInternal},
	}
	for _, test := range tests {
		if got := CategoryOf(test.err); got != test.want {
			t.Errorf("%s: CategoryOf = %s, want %s", test.name, got, test.want)
		}
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err       error
		wantCode  int
		wantPrint bool
	}{
		{nil, 0, false},
		{&ExitError{Code: 2}, 2, false},
		{fmt.Errorf("wait: %w", &ExitError{Code: 3}), 3, false},
		{Validation("bad"), 1, true},
	}
	for _, test := range tests {
		code, shouldPrint := ExitCode(test.err)
		if code != test.wantCode || shouldPrint != test.wantPrint {
			t.Errorf("ExitCode(%v) = %d, %v; want %d, %v", test.err, code, shouldPrint, test.wantCode, test.wantPrint)
		}
	}
}
