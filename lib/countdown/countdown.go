// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package countdown

import (
	"log/slog"
	"sync"
	"time"

	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/timefmt"
)

// DefaultTickInterval is the recomputation period used when
// Config.TickInterval is zero.
const DefaultTickInterval = 10 * time.Millisecond

// Repository persists the countdown anchor.
// [anchor.CountdownRepository] is the production implementation.
type Repository interface {
	Load() (anchor.Countdown, error)
	Save(anchor.Countdown) error
	Clear() error
}

// Config holds the engine's dependencies.
type Config struct {
	// Clock is the time source. Required.
	Clock clock.Clock

	// Repository stores the anchor. Required.
	Repository Repository

	// Logger receives persistence warnings and expiry events. If nil,
	// a no-op logger is used.
	Logger *slog.Logger

	// TickInterval is the recomputation period while running.
	// Defaults to DefaultTickInterval.
	TickInterval time.Duration
}

// State is the engine's state-machine position.
type State int

const (
	Unset State = iota
	Paused
	Running
	Expired
)

func (s State) String() string {
	switch s {
	case Unset:
		return "unset"
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the engine.
type Snapshot struct {
	State State

	// Remaining is deadline minus now while running, so it can be
	// briefly negative between a missed deadline and the tick that
	// expires the countdown. In every other state it is the stored
	// remaining duration.
	Remaining time.Duration

	// Target is the duration last set with SetTime.
	Target time.Duration
}

// Running reports whether the countdown was running.
func (s Snapshot) Running() bool {
	return s.State == Running
}

// HasTime reports whether Start would do anything: the countdown is
// not running and has time left.
func (s Snapshot) HasTime() bool {
	return s.State == Paused && s.Remaining > 0
}

// Formatted returns Remaining as MM:SS.cc, with a leading "-" during
// an overrun.
func (s Snapshot) Formatted() string {
	return timefmt.Signed(s.Remaining.Milliseconds())
}

// Engine is a persistent countdown timer. Create with New; release
// with Close.
type Engine struct {
	clock        clock.Clock
	repository   Repository
	logger       *slog.Logger
	tickInterval time.Duration

	mu     sync.Mutex
	anchor anchor.Countdown
	state  State

	// remainingMs is the remaining duration outside Running, and the
	// value published by the last tick while Running.
	remainingMs int64

	timer      *clock.Timer
	generation uint64
	closed     bool
	restored   Snapshot
}

// New reconstructs a countdown from cfg.Repository. A repository that
// cannot be read is logged and treated as empty. Panics if Clock or
// Repository is nil.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		panic("countdown: Config.Clock is required")
	}
	if cfg.Repository == nil {
		panic("countdown: Config.Repository is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	e := &Engine{
		clock:        cfg.Clock,
		repository:   cfg.Repository,
		logger:       logger,
		tickInterval: tickInterval,
	}

	loaded, err := cfg.Repository.Load()
	if err != nil {
		logger.Warn("loading countdown state failed, starting unset", "error", err)
		loaded = anchor.Countdown{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.restoreLocked(loaded)
	e.restored = e.snapshotLocked()

	logger.Debug("countdown restored",
		"state", e.restored.State,
		"remaining_ms", e.restored.Remaining.Milliseconds(),
		"target_ms", e.restored.Target.Milliseconds(),
	)
	return e
}

// restoreLocked derives the state from a loaded anchor. The deadline
// wins over a paused value; a paused value wins over the target.
func (e *Engine) restoreLocked(loaded anchor.Countdown) {
	e.anchor = anchor.Countdown{TargetMs: loaded.TargetMs}

	switch {
	case loaded.EndUnixMs.Valid:
		e.anchor.EndUnixMs = loaded.EndUnixMs
		remaining := loaded.EndUnixMs.Value - clock.UnixMilli(e.clock)
		if remaining <= 0 {
			e.expireLocked()
			return
		}
		e.state = Running
		e.remainingMs = remaining
		if loaded.PausedRemainingMs.Valid {
			e.saveLocked()
		}
		e.scheduleLocked()

	case loaded.PausedRemainingMs.Valid:
		e.anchor.PausedRemainingMs = loaded.PausedRemainingMs
		e.remainingMs = loaded.PausedRemainingMs.Value
		if e.remainingMs == 0 {
			e.state = Expired
		} else {
			e.state = Paused
		}

	default:
		e.remainingMs = loaded.TargetMs.Value
		if e.remainingMs > 0 {
			e.state = Paused
		} else {
			e.state = Unset
		}
	}
}

// SetTime replaces the target with minutes*60+seconds seconds and
// discards any paused or expired progress. Ignored while running, if
// either argument is negative, or if the total exceeds
// anchor.MaxDurationMs. A zero duration is stored as the target but
// leaves the countdown Unset.
func (e *Engine) SetTime(minutes, seconds int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state == Running || minutes < 0 || seconds < 0 {
		return
	}

	target, ok := targetMs(minutes, seconds)
	if !ok {
		e.logger.Warn("countdown duration out of range, ignoring",
			"minutes", minutes,
			"seconds", seconds,
		)
		return
	}
	e.anchor = anchor.Countdown{TargetMs: anchor.Mark(target)}
	e.remainingMs = target
	if target > 0 {
		e.state = Paused
	} else {
		e.state = Unset
	}
	e.saveLocked()
}

// targetMs converts a non-negative minutes and seconds pair to
// milliseconds. ok is false when the total exceeds anchor.MaxDurationMs.
func targetMs(minutes, seconds int) (int64, bool) {
	const maxSeconds = anchor.MaxDurationMs / 1000
	if int64(minutes) > maxSeconds/60 || int64(seconds) > maxSeconds {
		return 0, false
	}
	total := int64(minutes)*60 + int64(seconds)
	if total > maxSeconds {
		return 0, false
	}
	return total * 1000, true
}

// Start runs the countdown from its remaining duration. Ignored while
// running or when no time remains. remainingMs never exceeds
// anchor.MaxDurationMs, so the deadline cannot overflow.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state == Running || e.remainingMs <= 0 {
		return
	}

	end := clock.UnixMilli(e.clock) + e.remainingMs
	e.anchor.EndUnixMs = anchor.Mark(end)
	e.anchor.PausedRemainingMs = anchor.Unset
	e.state = Running
	e.saveLocked()
	e.scheduleLocked()
}

// Pause captures the remaining duration at this instant. Ignored unless
// running. A countdown whose deadline has already passed expires
// instead of pausing.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.state != Running {
		return
	}

	e.cancelLocked()
	remaining := e.anchor.EndUnixMs.Value - clock.UnixMilli(e.clock)
	if remaining <= 0 {
		e.expireLocked()
		return
	}
	e.remainingMs = remaining
	e.anchor.EndUnixMs = anchor.Unset
	e.anchor.PausedRemainingMs = anchor.Mark(remaining)
	e.state = Paused
	e.saveLocked()
}

// Reset restores the target duration last set with SetTime.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.cancelLocked()
	e.anchor = anchor.Countdown{TargetMs: e.anchor.TargetMs}
	e.remainingMs = e.anchor.TargetMs.Value
	if e.remainingMs > 0 {
		e.state = Paused
	} else {
		e.state = Unset
	}
	if e.anchor.TargetMs.Valid {
		e.saveLocked()
	} else if err := e.repository.Clear(); err != nil {
		e.logger.Warn("clearing countdown state failed", "error", err)
	}
}

// Snapshot returns the current state. While running, Remaining is
// computed from the deadline at the time of the call.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Remaining returns the remaining duration, clamped at zero.
func (e *Engine) Remaining() time.Duration {
	return max(0, e.Snapshot().Remaining)
}

// Formatted returns the remaining duration as MM:SS.cc.
func (e *Engine) Formatted() string {
	return e.Snapshot().Formatted()
}

// HasTime reports whether Start would run the countdown.
func (e *Engine) HasTime() bool {
	return e.Snapshot().HasTime()
}

// Running reports whether the countdown is running.
func (e *Engine) Running() bool {
	return e.Snapshot().Running()
}

// Target returns the duration last set with SetTime.
func (e *Engine) Target() time.Duration {
	return e.Snapshot().Target
}

// Restored returns the state produced by reconstruction in New.
func (e *Engine) Restored() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.restored
}

// Close cancels the outstanding recomputation. Afterwards control
// operations are ignored. The persisted deadline is untouched, so a
// running countdown keeps running for the next engine built on the
// same repository. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.cancelLocked()
	e.closed = true
}

func (e *Engine) snapshotLocked() Snapshot {
	remaining := e.remainingMs
	if e.state == Running && !e.closed {
		remaining = e.anchor.EndUnixMs.Value - clock.UnixMilli(e.clock)
	}
	return Snapshot{
		State:     e.state,
		Remaining: time.Duration(remaining) * time.Millisecond,
		Target:    time.Duration(e.anchor.TargetMs.Value) * time.Millisecond,
	}
}

// expireLocked clamps to zero and persists the expiry in place of the
// deadline.
func (e *Engine) expireLocked() {
	e.cancelLocked()
	e.state = Expired
	e.remainingMs = 0
	e.anchor.EndUnixMs = anchor.Unset
	e.anchor.PausedRemainingMs = anchor.Mark(0)
	e.saveLocked()
	e.logger.Info("countdown expired", "target_ms", e.anchor.TargetMs.Value)
}

func (e *Engine) saveLocked() {
	if err := e.repository.Save(e.anchor); err != nil {
		e.logger.Warn("saving countdown state failed", "error", err)
	}
}

func (e *Engine) scheduleLocked() {
	e.cancelLocked()
	generation := e.generation
	e.timer = e.clock.AfterFunc(e.tickInterval, func() {
		e.tick(generation)
	})
}

func (e *Engine) cancelLocked() {
	e.timer.Stop()
	e.timer = nil
	e.generation++
}

func (e *Engine) tick(generation uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || generation != e.generation || e.state != Running {
		return
	}
	remaining := e.anchor.EndUnixMs.Value - clock.UnixMilli(e.clock)
	if remaining <= 0 {
		e.expireLocked()
		return
	}
	e.remainingMs = remaining
	e.scheduleLocked()
}
