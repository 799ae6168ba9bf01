// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package anchor

import (
	"errors"
	"maps"
	"slices"
	"testing"

	"github.com/bureau-foundation/timekeep/lib/kvstore"
)

func TestStopwatchRepositoryRoundtrip(t *testing.T) {
	store := kvstore.NewMemory()
	repository := NewStopwatchRepository(store, nil)

	saved := Stopwatch{
		AccumulatedMs:  1230,
		RunStartUnixMs: Mark(1767225600000),
		LapsMs:         []int64{1230, 2460},
	}
	if err := repository.Save(saved); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries := store.Entries()
	if entries["stopwatch.accumulated_ms"] != "1230" ||
		entries["stopwatch.run_start_unix_ms"] != "1767225600000" ||
		entries["stopwatch.laps"] != "[1230,2460]" {
		t.Fatalf("stored entries = %v", entries)
	}

	loaded, err := repository.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.AccumulatedMs != 1230 || loaded.RunStartUnixMs != Mark(1767225600000) ||
		!slices.Equal(loaded.LapsMs, saved.LapsMs) {
		t.Fatalf("Load = %+v, want %+v", loaded, saved)
	}
}

func TestStopwatchRepositorySaveClearsAbsentFields(t *testing.T) {
	store := kvstore.NewMemory()
	repository := NewStopwatchRepository(store, nil)

	repository.Save(Stopwatch{AccumulatedMs: 5, RunStartUnixMs: Mark(10), LapsMs: []int64{5}})
	repository.Save(Stopwatch{AccumulatedMs: 7})

	entries := store.Entries()
	if _, ok := entries["stopwatch.run_start_unix_ms"]; ok {
		t.Error("run-start marker left stale after a stopped Save")
	}
	if _, ok := entries["stopwatch.laps"]; ok {
		t.Error("empty lap list should delete the key")
	}

	if err := repository.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if len(store.Entries()) != 0 {
		t.Fatalf("entries after Clear = %v", store.Entries())
	}
}

func TestStopwatchRepositoryCorruptFields(t *testing.T) {
	tests := []struct {
		name    string
		entries map[string]string
		want    Stopwatch
	}{
		{
			name:    "non-numeric accumulated",
			entries: map[string]string{"stopwatch.accumulated_ms": "lots"},
			want:    Stopwatch{},
		},
		{
			name:    "negative accumulated",
			entries: map[string]string{"stopwatch.accumulated_ms": "-40"},
			want:    Stopwatch{},
		},
		{
			name: "non-numeric run start keeps accumulated",
			entries: map[string]string{
				"stopwatch.accumulated_ms":    "900",
				"stopwatch.run_start_unix_ms": "yesterday",
			},
			want: Stopwatch{AccumulatedMs: 900},
		},
		{
			name:    "malformed laps",
			entries: map[string]string{"stopwatch.laps": "[1,2"},
			want:    Stopwatch{},
		},
		{
			name:    "negative lap",
			entries: map[string]string{"stopwatch.laps": "[100,-1]"},
			want:    Stopwatch{},
		},
		{
			name:    "accumulated beyond duration range",
			entries: map[string]string{"stopwatch.accumulated_ms": "9223372036855"},
			want:    Stopwatch{},
		},
		{
			name:    "lap beyond duration range",
			entries: map[string]string{"stopwatch.laps": "[100,9223372036855]"},
			want:    Stopwatch{},
		},
		{
			name:    "whitespace tolerated",
			entries: map[string]string{"stopwatch.accumulated_ms": " 42\n"},
			want:    Stopwatch{AccumulatedMs: 42},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			store := kvstore.NewMemory()
			for key, value := range test.entries {
				store.Set(key, value)
			}
			loaded, err := NewStopwatchRepository(store, nil).Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if loaded.AccumulatedMs != test.want.AccumulatedMs ||
				loaded.RunStartUnixMs != test.want.RunStartUnixMs ||
				len(loaded.LapsMs) != len(test.want.LapsMs) {
				t.Fatalf("Load = %+v, want %+v", loaded, test.want)
			}
		})
	}
}

func TestCorruptValueIsDeleted(t *testing.T) {
	store := kvstore.NewMemory()
	store.Set("countdown.end_unix_ms", "soon")
	store.Set("countdown.target_ms", "90000")

	loaded, err := NewCountdownRepository(store, nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.EndUnixMs.Valid {
		t.Fatal("non-numeric deadline must be treated as absent")
	}
	if loaded.TargetMs != Mark(90000) {
		t.Fatalf("TargetMs = %v, want 90000", loaded.TargetMs)
	}
	if _, ok, _ := store.Get("countdown.end_unix_ms"); ok {
		t.Fatal("unusable deadline should be removed from the store")
	}
}

func TestCountdownRepositoryRoundtrip(t *testing.T) {
	store := kvstore.NewMemory()
	repository := NewCountdownRepository(store, nil)

	running := Countdown{TargetMs: Mark(90000), EndUnixMs: Mark(1767225690000)}
	if err := repository.Save(running); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, _ := repository.Load()
	if loaded != running {
		t.Fatalf("Load = %+v, want %+v", loaded, running)
	}

	paused := Countdown{TargetMs: Mark(90000), PausedRemainingMs: Mark(80000)}
	repository.Save(paused)
	loaded, _ = repository.Load()
	if loaded != paused {
		t.Fatalf("Load = %+v, want %+v", loaded, paused)
	}
	if _, ok := store.Entries()["countdown.end_unix_ms"]; ok {
		t.Fatal("deadline left stale after pause")
	}

	repository.Clear()
	loaded, _ = repository.Load()
	if loaded != (Countdown{}) {
		t.Fatalf("Load after Clear = %+v", loaded)
	}
}

func TestCountdownRepositoryRejectsOutOfRange(t *testing.T) {
	store := kvstore.NewMemory()
	store.Set("countdown.target_ms", "-9223372036854771616")
	store.Set("countdown.paused_remaining_ms", "9223372036855")
	store.Set("countdown.end_unix_ms", "-9223372036855")

	loaded, err := NewCountdownRepository(store, nil).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != (Countdown{}) {
		t.Fatalf("Load = %+v, want every marker absent", loaded)
	}

	store.Set("countdown.target_ms", "9223372036854")
	loaded, _ = NewCountdownRepository(store, nil).Load()
	if loaded.TargetMs != Mark(MaxDurationMs) {
		t.Fatalf("TargetMs = %v, want %d", loaded.TargetMs, MaxDurationMs)
	}
}

// batchRecorder counts the write calls that reach a store.
type batchRecorder struct {
	*kvstore.Memory
	applies, singleWrites int
}

func (b *batchRecorder) Set(key, value string) error {
	b.singleWrites++
	return b.Memory.Set(key, value)
}

func (b *batchRecorder) Delete(keys ...string) error {
	b.singleWrites++
	return b.Memory.Delete(keys...)
}

func (b *batchRecorder) Apply(changes ...kvstore.Change) error {
	b.applies++
	return b.Memory.Apply(changes...)
}

func TestSaveIsOneAtomicBatch(t *testing.T) {
	store := &batchRecorder{Memory: kvstore.NewMemory()}
	countdowns := NewCountdownRepository(store, nil)

	countdowns.Save(Countdown{TargetMs: Mark(90000), EndUnixMs: Mark(1767225690000)})
	countdowns.Save(Countdown{TargetMs: Mark(90000), PausedRemainingMs: Mark(80000)})
	stopwatches := NewStopwatchRepository(store, nil)
	stopwatches.Save(Stopwatch{AccumulatedMs: 500, RunStartUnixMs: Mark(1767225600000), LapsMs: []int64{250}})
	stopwatches.Save(Stopwatch{AccumulatedMs: 900})

	if store.applies != 4 || store.singleWrites != 0 {
		t.Fatalf("applies = %d, single writes = %d; want 4 and 0", store.applies, store.singleWrites)
	}
	want := map[string]string{
		"countdown.target_ms":           "90000",
		"countdown.paused_remaining_ms": "80000",
		"stopwatch.accumulated_ms":      "900",
	}
	if got := store.Entries(); !maps.Equal(got, want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
}

func TestPreferencesRepository(t *testing.T) {
	store := kvstore.NewMemory()
	repository := NewPreferencesRepository(store, nil)

	loaded, err := repository.Load()
	if err != nil || !loaded.Is24Hour {
		t.Fatalf("default Load = %+v, %v; want 24-hour", loaded, err)
	}

	repository.Save(Preferences{Is24Hour: false})
	if store.Entries()["clock.is_24_hour"] != "false" {
		t.Fatalf("entries = %v", store.Entries())
	}
	loaded, _ = repository.Load()
	if loaded.Is24Hour {
		t.Fatal("Load after saving 12-hour returned 24-hour")
	}

	store.Set("clock.is_24_hour", "maybe")
	loaded, _ = repository.Load()
	if !loaded.Is24Hour {
		t.Fatal("unparsable flag should fall back to the default")
	}
}

func TestViewRepository(t *testing.T) {
	store := kvstore.NewMemory()
	repository := NewViewRepository(store, nil)

	view, err := repository.Load()
	if err != nil || view != ViewStopwatch {
		t.Fatalf("default Load = %q, %v", view, err)
	}

	if err := repository.Save(ViewClock); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if view, _ := repository.Load(); view != ViewClock {
		t.Fatalf("Load = %q, want clock", view)
	}

	if err := repository.Save("calendar"); err == nil {
		t.Fatal("Save of an unknown view should fail")
	}

	store.Set("view.active", "calendar")
	if view, _ := repository.Load(); view != ViewStopwatch {
		t.Fatalf("unknown stored view Load = %q, want stopwatch", view)
	}
}

func TestStopwatchElapsed(t *testing.T) {
	stopped := Stopwatch{AccumulatedMs: 1230}
	if got := stopped.ElapsedMs(99999); got != 1230 {
		t.Errorf("stopped ElapsedMs = %d, want 1230", got)
	}

	running := Stopwatch{AccumulatedMs: 1230, RunStartUnixMs: Mark(10000)}
	if got := running.ElapsedMs(10500); got != 1730 {
		t.Errorf("running ElapsedMs = %d, want 1730", got)
	}
	if got := running.ElapsedMs(9000); got != 1230 {
		t.Errorf("ElapsedMs with clock before run start = %d, want 1230", got)
	}
}

func TestStopwatchClone(t *testing.T) {
	original := Stopwatch{LapsMs: []int64{1, 2}}
	clone := original.Clone()
	clone.LapsMs[0] = 99
	if original.LapsMs[0] != 1 {
		t.Fatal("Clone shares lap storage")
	}
}

func TestParseView(t *testing.T) {
	for _, view := range Views {
		parsed, err := ParseView(string(view))
		if err != nil || parsed != view {
			t.Errorf("ParseView(%q) = %q, %v", view, parsed, err)
		}
	}
	if _, err := ParseView("timer"); err == nil {
		t.Error("ParseView(timer) should fail")
	}
}

// failingStore fails every operation, to check that backend errors
// surface from Load instead of being mistaken for absent keys.
type failingStore struct{}

var errBackend = errors.New("disk on fire")

func (failingStore) Get(string) (string, bool, error) { return "", false, errBackend }
func (failingStore) Set(string, string) error         { return errBackend }
func (failingStore) Delete(...string) error           { return errBackend }
func (failingStore) Close() error                     { return nil }

func (failingStore) GetMany(...string) (map[string]string, error) { return nil, errBackend }
func (failingStore) Apply(...kvstore.Change) error                { return errBackend }

func TestLoadSurfacesBackendErrors(t *testing.T) {
	if _, err := NewStopwatchRepository(failingStore{}, nil).Load(); !errors.Is(err, errBackend) {
		t.Errorf("stopwatch Load error = %v", err)
	}
	if _, err := NewCountdownRepository(failingStore{}, nil).Load(); !errors.Is(err, errBackend) {
		t.Errorf("countdown Load error = %v", err)
	}
	if _, err := NewPreferencesRepository(failingStore{}, nil).Load(); !errors.Is(err, errBackend) {
		t.Errorf("preferences Load error = %v", err)
	}
	if _, err := NewViewRepository(failingStore{}, nil).Load(); !errors.Is(err, errBackend) {
		t.Errorf("view Load error = %v", err)
	}
}
