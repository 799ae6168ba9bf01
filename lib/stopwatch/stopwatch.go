// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stopwatch

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/timefmt"
)

// DefaultTickInterval is the recomputation period used when
// Config.TickInterval is zero.
const DefaultTickInterval = 10 * time.Millisecond

// Repository persists the stopwatch anchor.
// [anchor.StopwatchRepository] is the production implementation.
type Repository interface {
	Load() (anchor.Stopwatch, error)
	Save(anchor.Stopwatch) error
	Clear() error
}

// Config holds the engine's dependencies.
type Config struct {
	// Clock is the time source. Required.
	Clock clock.Clock

	// Repository stores the anchor. Required.
	Repository Repository

	// Logger receives persistence warnings. If nil, a no-op logger is
	// used.
	Logger *slog.Logger

	// TickInterval is the period at which the published elapsed value
	// is refreshed while running. Defaults to DefaultTickInterval.
	TickInterval time.Duration
}

// State is the engine's state-machine position.
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Snapshot is a consistent view of the engine.
type Snapshot struct {
	State   State
	Elapsed time.Duration

	// Laps holds lap times in recording order.
	Laps []time.Duration
}

// Running reports whether the snapshot was taken while running.
func (s Snapshot) Running() bool {
	return s.State == Running
}

// Formatted returns Elapsed as MM:SS.cc.
func (s Snapshot) Formatted() string {
	return timefmt.Elapsed(s.Elapsed.Milliseconds())
}

// FormattedLaps returns the laps as MM:SS.cc in recording order.
func (s Snapshot) FormattedLaps() []string {
	formatted := make([]string, len(s.Laps))
	for i, lap := range s.Laps {
		formatted[i] = timefmt.Elapsed(lap.Milliseconds())
	}
	return formatted
}

// Engine is a persistent stopwatch. Create with New; release with
// Close.
type Engine struct {
	clock        clock.Clock
	repository   Repository
	logger       *slog.Logger
	tickInterval time.Duration

	mu     sync.Mutex
	anchor anchor.Stopwatch

	// elapsedMs is the published value: the elapsed time as of the
	// last transition or tick.
	elapsedMs int64

	// timer is the single outstanding recomputation, nil when stopped.
	timer *clock.Timer

	// generation is bumped whenever timer is replaced or cancelled. A
	// callback whose generation no longer matches lost a race with
	// Stop and does nothing.
	generation uint64

	closed   bool
	restored Snapshot
}

// New reconstructs a stopwatch from cfg.Repository. A repository that
// cannot be read is logged and treated as empty: the engine always
// starts in a valid state. Panics if Clock or Repository is nil.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		panic("stopwatch: Config.Clock is required")
	}
	if cfg.Repository == nil {
		panic("stopwatch: Config.Repository is required")
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
		logger.Warn("loading stopwatch state failed, starting from zero", "error", err)
		loaded = anchor.Stopwatch{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.anchor = loaded
	e.elapsedMs = loaded.ElapsedMs(clock.UnixMilli(e.clock))
	if loaded.Running() {
		e.scheduleLocked()
	}
	e.restored = e.snapshotLocked()

	logger.Debug("stopwatch restored",
		"state", e.restored.State,
		"elapsed_ms", e.elapsedMs,
		"laps", len(loaded.LapsMs),
	)
	return e
}

// Start begins or resumes timing. Ignored while running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.anchor.Running() {
		return
	}

	e.anchor.RunStartUnixMs = anchor.Mark(clock.UnixMilli(e.clock))
	e.elapsedMs = e.anchor.AccumulatedMs
	e.saveLocked()
	e.scheduleLocked()
}

// Stop folds the current run into the accumulated duration. Ignored
// unless running.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.anchor.Running() {
		return
	}

	e.cancelLocked()
	e.anchor.AccumulatedMs = e.anchor.ElapsedMs(clock.UnixMilli(e.clock))
	e.anchor.RunStartUnixMs = anchor.Unset
	e.elapsedMs = e.anchor.AccumulatedMs
	e.saveLocked()
}

// Reset returns to zero, stopped, with no laps, and deletes the
// persisted anchor.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}

	e.cancelLocked()
	e.anchor = anchor.Stopwatch{}
	e.elapsedMs = 0
	if err := e.repository.Clear(); err != nil {
		e.logger.Warn("clearing stopwatch state failed", "error", err)
	}
}

// Lap records the current elapsed time. Ignored unless running.
func (e *Engine) Lap() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || !e.anchor.Running() {
		return
	}

	e.elapsedMs = e.anchor.ElapsedMs(clock.UnixMilli(e.clock))
	e.anchor.LapsMs = append(e.anchor.LapsMs, e.elapsedMs)
	e.saveLocked()
}

// Snapshot returns the published state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// Elapsed returns the published elapsed time.
func (e *Engine) Elapsed() time.Duration {
	return e.Snapshot().Elapsed
}

// Formatted returns the published elapsed time as MM:SS.cc.
func (e *Engine) Formatted() string {
	return e.Snapshot().Formatted()
}

// FormattedLaps returns the laps as MM:SS.cc in recording order.
func (e *Engine) FormattedLaps() []string {
	return e.Snapshot().FormattedLaps()
}

// Running reports whether the stopwatch is running.
func (e *Engine) Running() bool {
	return e.Snapshot().Running()
}

// Restored returns the state produced by reconstruction in New.
func (e *Engine) Restored() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	restored := e.restored
	restored.Laps = slices.Clone(restored.Laps)
	return restored
}

// Close cancels the outstanding recomputation. Afterwards control
// operations are ignored and the published state is frozen. The
// persisted anchor is untouched, so a running stopwatch keeps running
// for the next engine built on the same repository. Safe to call more
// than once.
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
	snapshot := Snapshot{
		State:   Stopped,
		Elapsed: time.Duration(e.elapsedMs) * time.Millisecond,
		Laps:    make([]time.Duration, len(e.anchor.LapsMs)),
	}
	if e.anchor.Running() {
		snapshot.State = Running
	}
	for i, lap := range e.anchor.LapsMs {
		snapshot.Laps[i] = time.Duration(lap) * time.Millisecond
	}
	return snapshot
}

// saveLocked persists the anchor. A failed write leaves the in-memory
// state authoritative for this process.
func (e *Engine) saveLocked() {
	if err := e.repository.Save(e.anchor.Clone()); err != nil {
		e.logger.Warn("saving stopwatch state failed", "error", err)
	}
}

// scheduleLocked replaces any outstanding recomputation with one
// tickInterval from now.
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
	if e.closed || generation != e.generation || !e.anchor.Running() {
		return
	}
	e.elapsedMs = e.anchor.ElapsedMs(clock.UnixMilli(e.clock))
	e.scheduleLocked()
}
