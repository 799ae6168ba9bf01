// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/timeauthority"
	"github.com/bureau-foundation/timekeep/lib/timefmt"
)

const (
	// DefaultResyncInterval is the time between periodic syncs.
	DefaultResyncInterval = time.Hour

	// DefaultSyncTimeout bounds one authority query.
	DefaultSyncTimeout = 10 * time.Second

	// RequestSyncInterval is the minimum spacing of operator-requested
	// syncs accepted by RequestSync.
	RequestSyncInterval = 5 * time.Second
)

// PreferencesRepository persists the 12/24-hour flag.
// [anchor.PreferencesRepository] is the production implementation.
type PreferencesRepository interface {
	Load() (anchor.Preferences, error)
	Save(anchor.Preferences) error
}

// SyncResult describes one completed sync.
type SyncResult struct {
	// Offset is the offset the sync produced: zero on failure.
	Offset time.Duration

	// Err is the authority's error, or nil.
	Err error

	// Applied is false when a newer sync began before this one
	// finished, or the engine was closed; the result was discarded.
	Applied bool
}

// Config holds the engine's dependencies.
type Config struct {
	// Clock is the local time source. Required.
	Clock clock.Clock

	// Authority is queried on every sync. Defaults to
	// timeauthority.None, which always falls back to local time.
	Authority timeauthority.Authority

	// Preferences stores the display format. Required.
	Preferences PreferencesRepository

	// Logger receives sync failures. If nil, a no-op logger is used.
	Logger *slog.Logger

	// ResyncInterval defaults to DefaultResyncInterval.
	ResyncInterval time.Duration

	// SyncTimeout defaults to DefaultSyncTimeout.
	SyncTimeout time.Duration

	// Location is the zone Parts renders in. Defaults to time.Local.
	Location *time.Location

	// OnSync, if set, is called after every sync with its result,
	// outside the engine lock.
	OnSync func(SyncResult)
}

// Engine is a corrected wall clock. Create with New; release with
// Close.
type Engine struct {
	clock          clock.Clock
	authority      timeauthority.Authority
	preferences    PreferencesRepository
	logger         *slog.Logger
	resyncInterval time.Duration
	syncTimeout    time.Duration
	location       *time.Location
	onSync         func(SyncResult)
	limiter        *rate.Limiter

	// ctx is the parent of background syncs started by ticks and
	// RequestSync. Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	offset   time.Duration
	current  time.Time
	syncing  bool
	lastSync time.Time
	lastErr  error
	is24Hour bool
	started  bool

	// syncSequence numbers syncs in the order they began.
	syncSequence uint64

	timer      *clock.Timer
	generation uint64
	closed     bool
}

// New returns an engine showing uncorrected local time and marked as
// syncing. No timer runs until the first sync completes: call Start,
// or Sync directly. Panics if Clock or Preferences is nil.
func New(cfg Config) *Engine {
	if cfg.Clock == nil {
		panic("realtime: Config.Clock is required")
	}
	if cfg.Preferences == nil {
		panic("realtime: Config.Preferences is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	authority := cfg.Authority
	if authority == nil {
		authority = timeauthority.None
	}
	resyncInterval := cfg.ResyncInterval
	if resyncInterval <= 0 {
		resyncInterval = DefaultResyncInterval
	}
	syncTimeout := cfg.SyncTimeout
	if syncTimeout <= 0 {
		syncTimeout = DefaultSyncTimeout
	}
	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	preferences, err := cfg.Preferences.Load()
	if err != nil {
		logger.Warn("loading clock preferences failed, using defaults", "error", err)
		preferences = anchor.DefaultPreferences()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		clock:          cfg.Clock,
		authority:      authority,
		preferences:    cfg.Preferences,
		logger:         logger,
		resyncInterval: resyncInterval,
		syncTimeout:    syncTimeout,
		location:       location,
		onSync:         cfg.OnSync,
		limiter:        rate.NewLimiter(rate.Every(RequestSyncInterval), 1),
		ctx:            ctx,
		cancel:         cancel,
		current:        cfg.Clock.Now(),
		syncing:        true,
		is24Hour:       preferences.Is24Hour,
	}
}

// Start runs the first sync in the background. Background syncs are
// cancelled when ctx is done or the engine is closed. Only the first
// call has any effect.
func (e *Engine) Start(ctx context.Context) {
	e.mu.Lock()
	if e.closed || e.started {
		e.mu.Unlock()
		return
	}
	e.started = true
	parent := e.cancel
	e.ctx, e.cancel = context.WithCancel(ctx)
	background := e.ctx
	e.mu.Unlock()

	parent()
	go e.Sync(background)
}

// Sync queries the authority and applies the resulting offset, then
// (re)starts the second-aligned tick. It blocks for at most
// SyncTimeout and never fails: an authority error yields a zero
// offset. The result is discarded if another sync began meanwhile.
func (e *Engine) Sync(ctx context.Context) SyncResult {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return SyncResult{}
	}
	e.syncSequence++
	sequence := e.syncSequence
	e.syncing = true
	e.mu.Unlock()

	queryCtx, cancel := context.WithTimeout(ctx, e.syncTimeout)
	authorityTime, err := e.authority.Now(queryCtx)
	cancel()
	localAfter := e.clock.Now()

	result := SyncResult{Err: err}
	if err == nil {
		result.Offset = time.Duration(authorityTime.UnixMilli()-localAfter.UnixMilli()) * time.Millisecond
	} else if errors.Is(err, timeauthority.ErrDisabled) {
		e.logger.Debug("clock sync disabled, using local time")
	} else {
		e.logger.Warn("clock sync failed, using local time", "error", err)
	}

	e.mu.Lock()
	if e.closed || sequence != e.syncSequence {
		e.mu.Unlock()
		e.logger.Debug("discarding superseded clock sync", "sequence", sequence)
		e.notify(result)
		return result
	}
	result.Applied = true
	e.offset = result.Offset
	e.lastSync = localAfter
	e.lastErr = err
	e.syncing = false
	e.current = e.clock.Now().Add(e.offset)
	e.scheduleLocked(e.current)
	e.mu.Unlock()

	e.logger.Info("clock synced", "offset_ms", result.Offset.Milliseconds(), "ok", err == nil)
	e.notify(result)
	return result
}

// RequestSync starts a background sync on operator request. Requests
// are limited to one per RequestSyncInterval; a throttled or
// post-Close request returns false.
func (e *Engine) RequestSync() bool {
	e.mu.Lock()
	if e.closed || !e.limiter.AllowN(e.clock.Now(), 1) {
		e.mu.Unlock()
		return false
	}
	e.syncing = true
	ctx := e.ctx
	e.mu.Unlock()

	go e.Sync(ctx)
	return true
}

// ToggleFormat flips between 12- and 24-hour display and persists the
// choice.
func (e *Engine) ToggleFormat() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.is24Hour = !e.is24Hour
	if err := e.preferences.Save(anchor.Preferences{Is24Hour: e.is24Hour}); err != nil {
		e.logger.Warn("saving clock preferences failed", "error", err)
	}
}

// Now returns the corrected time published by the last tick or sync.
func (e *Engine) Now() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Offset returns authority time minus local time from the last applied
// sync.
func (e *Engine) Offset() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.offset
}

// Syncing reports whether a sync is in progress.
func (e *Engine) Syncing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.syncing
}

// LastSync returns the local time at which the last applied sync
// completed, or the zero time before the first. A failed sync counts:
// check LastSyncError.
func (e *Engine) LastSync() time.Time {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastSync
}

// LastSyncError returns the authority error of the last applied sync,
// or nil if it succeeded.
func (e *Engine) LastSyncError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Is24Hour reports the display format.
func (e *Engine) Is24Hour() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.is24Hour
}

// Parts returns the published time split for display in the
// configured location and format.
func (e *Engine) Parts() timefmt.Parts {
	e.mu.Lock()
	defer e.mu.Unlock()
	return timefmt.ClockParts(e.current.In(e.location), e.is24Hour)
}

// Close stops the tick and cancels background syncs. A sync that
// completes afterwards is discarded. Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.cancelLocked()
	cancel := e.cancel
	e.mu.Unlock()
	cancel()
}

// untilNextSecond returns the wait from corrected to the next whole
// second: in (0, 1s].
func untilNextSecond(corrected time.Time) time.Duration {
	return time.Second - time.Duration(corrected.UnixNano()%int64(time.Second))
}

func (e *Engine) scheduleLocked(corrected time.Time) {
	e.cancelLocked()
	generation := e.generation
	e.timer = e.clock.AfterFunc(untilNextSecond(corrected), func() {
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
	if e.closed || generation != e.generation {
		return
	}
	now := e.clock.Now()
	e.current = now.Add(e.offset)
	e.scheduleLocked(e.current)

	if !e.syncing && now.Sub(e.lastSync) >= e.resyncInterval {
		e.syncing = true
		go e.Sync(e.ctx)
	}
}

func (e *Engine) notify(result SyncResult) {
	if e.onSync != nil {
		e.onSync(result)
	}
}
