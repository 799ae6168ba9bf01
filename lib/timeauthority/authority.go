// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package timeauthority

import (
	"context"
	"errors"
	"time"
)

// Authority reports an external clock's current instant.
type Authority interface {
	Now(ctx context.Context) (time.Time, error)
}

// Func adapts a function to the Authority interface.
type Func func(ctx context.Context) (time.Time, error)

// Now calls f.
func (f Func) Now(ctx context.Context) (time.Time, error) {
	return f(ctx)
}

// ErrDisabled is returned by None.
var ErrDisabled = errors.New("timeauthority: synchronization disabled")

// None is an Authority that always fails with ErrDisabled. A clock
// engine using it trusts the local clock.
var None Authority = Func(func(context.Context) (time.Time, error) {
	return time.Time{}, ErrDisabled
})
