// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anchor

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bureau-foundation/timekeep/lib/kvstore"
)

const (
	keyRunStart        = "run_start_unix_ms"
	keyAccumulated     = "accumulated_ms"
	keyLaps            = "laps"
	keyTarget          = "target_ms"
	keyEnd             = "end_unix_ms"
	keyPausedRemaining = "paused_remaining_ms"
	keyIs24Hour        = "is_24_hour"
	keyActive          = "active"
)

// reader wraps a namespaced store with the tolerant parsing every
// repository shares.
type reader struct {
	store     kvstore.Store
	namespace string
	logger    *slog.Logger
}

func newReader(store kvstore.Store, namespace string, logger *slog.Logger) reader {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return reader{
		store:     kvstore.Namespace(store, namespace),
		namespace: namespace,
		logger:    logger,
	}
}

// discard logs a stored value that cannot be used and deletes it, so
// the warning is not repeated on every reconstruction.
func (r reader) discard(key, raw, reason string) {
	r.logger.Warn("ignoring unusable persisted value",
		"key", r.namespace+"."+key,
		"value", raw,
		"reason", reason,
	)
	if err := r.store.Delete(key); err != nil {
		r.logger.Warn("deleting unusable persisted value failed",
			"key", r.namespace+"."+key,
			"error", err,
		)
	}
}

// load reads keys from one consistent state of the store.
func (r reader) load(keys ...string) (map[string]string, error) {
	values, err := r.store.GetMany(keys...)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", r.namespace, err)
	}
	return values, nil
}

// marker parses values[key] as an integer within ±MaxDurationMs.
// nonNegative also rejects values below zero (durations).
func (r reader) marker(values map[string]string, key string, nonNegative bool) Marker {
	raw, ok := values[key]
	if !ok {
		return Unset
	}
	value, parseErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if parseErr != nil {
		r.discard(key, raw, "not an integer")
		return Unset
	}
	if nonNegative && value < 0 {
		r.discard(key, raw, "negative duration")
		return Unset
	}
	if value > MaxDurationMs || value < -MaxDurationMs {
		r.discard(key, raw, "out of range")
		return Unset
	}
	return Mark(value)
}

// markerChange stores a present marker and deletes an absent one.
func markerChange(key string, marker Marker) kvstore.Change {
	if !marker.Valid {
		return kvstore.Remove(key)
	}
	return kvstore.Put(key, strconv.FormatInt(marker.Value, 10))
}

// StopwatchRepository persists a Stopwatch anchor.
type StopwatchRepository struct {
	reader
}

// NewStopwatchRepository returns a repository over the "stopwatch"
// namespace of store. logger may be nil.
func NewStopwatchRepository(store kvstore.Store, logger *slog.Logger) *StopwatchRepository {
	return &StopwatchRepository{newReader(store, "stopwatch", logger)}
}

// Load reads the anchor. Unusable fields come back unset.
func (r *StopwatchRepository) Load() (Stopwatch, error) {
	values, err := r.load(keyAccumulated, keyRunStart, keyLaps)
	if err != nil {
		return Stopwatch{}, err
	}

	result := Stopwatch{
		AccumulatedMs:  r.marker(values, keyAccumulated, true).Value,
		RunStartUnixMs: r.marker(values, keyRunStart, false),
	}
	if raw, ok := values[keyLaps]; ok {
		var laps []int64
		if err := json.Unmarshal([]byte(raw), &laps); err != nil {
			r.discard(keyLaps, raw, "not a JSON array of integers")
		} else if reason := invalidLap(laps); reason != "" {
			r.discard(keyLaps, raw, reason)
		} else {
			result.LapsMs = laps
		}
	}
	return result, nil
}

// Save writes every field of anchor in one atomic batch, deleting the
// run-start marker and lap list when they are absent or empty.
func (r *StopwatchRepository) Save(anchor Stopwatch) error {
	changes := []kvstore.Change{
		markerChange(keyAccumulated, Mark(anchor.AccumulatedMs)),
		markerChange(keyRunStart, anchor.RunStartUnixMs),
	}
	if len(anchor.LapsMs) == 0 {
		changes = append(changes, kvstore.Remove(keyLaps))
	} else {
		encoded, err := json.Marshal(anchor.LapsMs)
		if err != nil {
			return fmt.Errorf("encoding laps: %w", err)
		}
		changes = append(changes, kvstore.Put(keyLaps, string(encoded)))
	}
	return r.store.Apply(changes...)
}

// Clear deletes every stopwatch key.
func (r *StopwatchRepository) Clear() error {
	return r.store.Delete(keyRunStart, keyAccumulated, keyLaps)
}

// invalidLap returns why laps cannot be restored, or "" if they can.
func invalidLap(laps []int64) string {
	for _, lap := range laps {
		switch {
		case lap < 0:
			return "negative lap"
		case lap > MaxDurationMs:
			return "lap out of range"
		}
	}
	return ""
}

// CountdownRepository persists a Countdown anchor.
type CountdownRepository struct {
	reader
}

// NewCountdownRepository returns a repository over the "countdown"
// namespace of store. logger may be nil.
func NewCountdownRepository(store kvstore.Store, logger *slog.Logger) *CountdownRepository {
	return &CountdownRepository{newReader(store, "countdown", logger)}
}

// Load reads the anchor. A deadline that is not a number is treated as
// absent. If a corrupted store holds both a deadline and a paused
// remaining value, both are returned; the engine prefers the deadline
// and its next Save removes the other.
func (r *CountdownRepository) Load() (Countdown, error) {
	values, err := r.load(keyTarget, keyEnd, keyPausedRemaining)
	if err != nil {
		return Countdown{}, err
	}
	return Countdown{
		TargetMs:          r.marker(values, keyTarget, true),
		EndUnixMs:         r.marker(values, keyEnd, false),
		PausedRemainingMs: r.marker(values, keyPausedRemaining, true),
	}, nil
}

// Save writes present markers and deletes absent ones in one atomic
// batch, so a concurrent Load never sees half of a transition.
func (r *CountdownRepository) Save(anchor Countdown) error {
	return r.store.Apply(
		markerChange(keyTarget, anchor.TargetMs),
		markerChange(keyEnd, anchor.EndUnixMs),
		markerChange(keyPausedRemaining, anchor.PausedRemainingMs),
	)
}

// Clear deletes every countdown key.
func (r *CountdownRepository) Clear() error {
	return r.store.Delete(keyTarget, keyEnd, keyPausedRemaining)
}

// PreferencesRepository persists clock display preferences.
type PreferencesRepository struct {
	reader
}

// NewPreferencesRepository returns a repository over the "clock"
// namespace of store. logger may be nil.
func NewPreferencesRepository(store kvstore.Store, logger *slog.Logger) *PreferencesRepository {
	return &PreferencesRepository{newReader(store, "clock", logger)}
}

// Load returns the stored preferences, or DefaultPreferences for
// anything missing or unparsable.
func (r *PreferencesRepository) Load() (Preferences, error) {
	result := DefaultPreferences()
	raw, ok, err := r.store.Get(keyIs24Hour)
	if err != nil {
		return result, fmt.Errorf("loading clock.%s: %w", keyIs24Hour, err)
	}
	if !ok {
		return result, nil
	}
	value, parseErr := strconv.ParseBool(strings.TrimSpace(raw))
	if parseErr != nil {
		r.discard(keyIs24Hour, raw, "not a boolean")
		return result, nil
	}
	result.Is24Hour = value
	return result, nil
}

// Save writes preferences.
func (r *PreferencesRepository) Save(preferences Preferences) error {
	return r.store.Set(keyIs24Hour, strconv.FormatBool(preferences.Is24Hour))
}

// Clear deletes the stored preferences.
func (r *PreferencesRepository) Clear() error {
	return r.store.Delete(keyIs24Hour)
}

// ViewRepository persists the active view selector, independently of
// the engines.
type ViewRepository struct {
	reader
}

// NewViewRepository returns a repository over the "view" namespace of
// store. logger may be nil.
func NewViewRepository(store kvstore.Store, logger *slog.Logger) *ViewRepository {
	return &ViewRepository{newReader(store, "view", logger)}
}

// Load returns the stored view, or ViewStopwatch when none is stored.
func (r *ViewRepository) Load() (View, error) {
	raw, ok, err := r.store.Get(keyActive)
	if err != nil {
		return ViewStopwatch, fmt.Errorf("loading view.%s: %w", keyActive, err)
	}
	if !ok {
		return ViewStopwatch, nil
	}
	view, parseErr := ParseView(strings.TrimSpace(raw))
	if parseErr != nil {
		r.discard(keyActive, raw, "unknown view")
		return ViewStopwatch, nil
	}
	return view, nil
}

// Save writes the active view.
func (r *ViewRepository) Save(view View) error {
	if _, err := ParseView(string(view)); err != nil {
		return err
	}
	return r.store.Set(keyActive, string(view))
}

// Clear deletes the stored view.
func (r *ViewRepository) Clear() error {
	return r.store.Delete(keyActive)
}
