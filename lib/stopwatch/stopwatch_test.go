// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package stopwatch

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/bureau-foundation/timekeep/lib/anchor"
	"github.com/bureau-foundation/timekeep/lib/clock"
	"github.com/bureau-foundation/timekeep/lib/kvstore"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

// newTestEngine returns an engine over a fresh memory store and the
// store itself, so tests can reconstruct a second engine from it.
func newTestEngine(t *testing.T, fake *clock.FakeClock) (*Engine, *kvstore.Memory) {
	t.Helper()
	store := kvstore.NewMemory()
	return reopen(t, fake, store), store
}

func reopen(t *testing.T, fake *clock.FakeClock, store kvstore.Store) *Engine {
	t.Helper()
	engine := New(Config{
		Clock:      fake,
		Repository: anchor.NewStopwatchRepository(store, nil),
	})
	t.Cleanup(engine.Close)
	return engine
}

func TestInitialState(t *testing.T) {
	engine, _ := newTestEngine(t, clock.Fake(epoch))
	snapshot := engine.Snapshot()
	if snapshot.State != Stopped || snapshot.Elapsed != 0 || len(snapshot.Laps) != 0 {
		t.Fatalf("initial snapshot = %+v", snapshot)
	}
	if engine.Formatted() != "00:00.00" {
		t.Fatalf("Formatted = %q", engine.Formatted())
	}
}

func TestLapScenario(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, _ := newTestEngine(t, fake)

	engine.Start()
	fake.Advance(1230 * time.Millisecond)
	engine.Lap()
	if laps := engine.FormattedLaps(); !slices.Equal(laps, []string{"00:01.23"}) {
		t.Fatalf("laps = %v, want [00:01.23]", laps)
	}
	engine.Stop()

	engine.Start()
	fake.Advance(500 * time.Millisecond)
	engine.Stop()

	if got := engine.Formatted(); got != "00:01.73" {
		t.Fatalf("Formatted = %q, want 00:01.73", got)
	}
	if engine.Running() {
		t.Fatal("still running after Stop")
	}
}

func TestTicksPublishElapsed(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, _ := newTestEngine(t, fake)

	engine.Start()
	for range 100 {
		fake.Advance(DefaultTickInterval)
	}
	if got := engine.Elapsed(); got != time.Second {
		t.Fatalf("Elapsed after 100 ticks = %v, want 1s", got)
	}

	// A single late tick publishes the true elapsed time, not one
	// interval's worth.
	fake.Advance(730 * time.Millisecond)
	if got := engine.Elapsed(); got != 1730*time.Millisecond {
		t.Fatalf("Elapsed after late tick = %v, want 1.73s", got)
	}
}

func TestMonotonicAcrossStartStop(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, _ := newTestEngine(t, fake)

	advances := []time.Duration{
		3 * time.Millisecond, 250 * time.Millisecond, 10 * time.Millisecond,
		1 * time.Second, 7 * time.Millisecond, 42 * time.Millisecond,
	}
	var previous time.Duration
	for _, advance := range advances {
		engine.Start()
		fake.Advance(advance)
		beforeStop := engine.Snapshot().Elapsed
		engine.Stop()
		afterStop := engine.Elapsed()
		if afterStop < previous {
			t.Fatalf("elapsed decreased: %v after %v", afterStop, previous)
		}
		if afterStop-beforeStop > DefaultTickInterval {
			t.Fatalf("stop jumped from %v to %v", beforeStop, afterStop)
		}

		// Stopped time does not count.
		fake.Advance(time.Minute)
		engine.Start()
		if resumed := engine.Elapsed(); resumed != afterStop {
			t.Fatalf("elapsed just after resume = %v, want %v", resumed, afterStop)
		}
		engine.Stop()
		previous = afterStop
	}

	var total time.Duration
	for _, advance := range advances {
		total += advance
	}
	if engine.Elapsed() != total {
		t.Fatalf("Elapsed = %v, want %v", engine.Elapsed(), total)
	}
}

func TestRedundantOperationsIgnored(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, store := newTestEngine(t, fake)

	engine.Stop()
	engine.Lap()
	if len(store.Entries()) != 0 {
		t.Fatalf("ignored operations wrote %v", store.Entries())
	}

	engine.Start()
	fake.Advance(time.Second)
	engine.Start()
	fake.Advance(time.Second)
	if got := engine.Elapsed(); got != 2*time.Second {
		t.Fatalf("second Start restarted the run: Elapsed = %v", got)
	}
}

func TestLapsNotAppendedWhileStopped(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, _ := newTestEngine(t, fake)

	engine.Start()
	fake.Advance(time.Second)
	engine.Lap()
	engine.Stop()
	engine.Lap()
	engine.Lap()

	if laps := engine.Snapshot().Laps; len(laps) != 1 {
		t.Fatalf("laps = %v, want one", laps)
	}
}

func TestResetClearsEverything(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, store := newTestEngine(t, fake)

	engine.Start()
	fake.Advance(time.Second)
	engine.Lap()
	fake.Advance(time.Second)
	engine.Reset()

	snapshot := engine.Snapshot()
	if snapshot.State != Stopped || snapshot.Elapsed != 0 || len(snapshot.Laps) != 0 {
		t.Fatalf("snapshot after Reset = %+v", snapshot)
	}
	if len(store.Entries()) != 0 {
		t.Fatalf("entries after Reset = %v", store.Entries())
	}
	if fake.Pending() != 0 {
		t.Fatalf("pending timers after Reset = %d", fake.Pending())
	}

	// Reset while running stops the run too.
	fake.Advance(time.Second)
	if engine.Elapsed() != 0 {
		t.Fatalf("Elapsed kept advancing after Reset: %v", engine.Elapsed())
	}
}

func TestAtMostOneTimer(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, _ := newTestEngine(t, fake)

	engine.Start()
	engine.Start()
	engine.Lap()
	if fake.Pending() != 1 {
		t.Fatalf("pending after Start = %d, want 1", fake.Pending())
	}
	for range 50 {
		fake.Advance(3 * time.Millisecond)
		if fake.Pending() != 1 {
			t.Fatalf("pending while running = %d, want 1", fake.Pending())
		}
	}
	engine.Stop()
	if fake.Pending() != 0 {
		t.Fatalf("pending after Stop = %d, want 0", fake.Pending())
	}
}

func TestClosePreventsUpdates(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, store := newTestEngine(t, fake)

	engine.Start()
	fake.Advance(100 * time.Millisecond)
	engine.Close()
	frozen := engine.Elapsed()

	if fake.Pending() != 0 {
		t.Fatalf("pending after Close = %d", fake.Pending())
	}
	fake.Advance(time.Second)
	engine.Stop()
	engine.Reset()
	if engine.Elapsed() != frozen || !engine.Running() {
		t.Fatalf("closed engine changed: %+v", engine.Snapshot())
	}
	if _, ok := store.Entries()["stopwatch.run_start_unix_ms"]; !ok {
		t.Fatal("Close must not clear the persisted run")
	}
	engine.Close()
}

func TestReloadTransparency(t *testing.T) {
	fake := clock.Fake(epoch)
	resident, _ := newTestEngine(t, fake)
	unloaded, store := newTestEngine(t, fake)

	resident.Start()
	unloaded.Start()
	fake.Advance(300 * time.Millisecond)
	unloaded.Lap()
	resident.Lap()
	unloaded.Close()

	const d = 4321 * time.Millisecond
	for step := time.Duration(0); step < d; step += DefaultTickInterval {
		fake.Advance(min(DefaultTickInterval, d-step))
	}

	reloaded := reopen(t, fake, store)
	want := resident.Elapsed()
	got := reloaded.Elapsed()
	if diff := got - want; diff < -DefaultTickInterval || diff > DefaultTickInterval {
		t.Fatalf("reloaded Elapsed = %v, resident = %v", got, want)
	}
	if !reloaded.Running() || reloaded.Restored().State != Running {
		t.Fatal("reloaded engine should resume running")
	}
	if !slices.Equal(reloaded.FormattedLaps(), resident.FormattedLaps()) {
		t.Fatalf("laps %v, resident %v", reloaded.FormattedLaps(), resident.FormattedLaps())
	}

	// Recomputation continues after reconstruction.
	fake.Advance(time.Second)
	if reloaded.Elapsed() != got+time.Second {
		t.Fatalf("reloaded engine did not keep ticking: %v", reloaded.Elapsed())
	}
}

func TestIdempotentReconstruction(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, store := newTestEngine(t, fake)

	engine.Start()
	fake.Advance(2500 * time.Millisecond)
	engine.Lap()
	engine.Stop()
	engine.Close()

	first := reopen(t, fake, store)
	second := reopen(t, fake, store)
	if first.Formatted() != second.Formatted() || first.Formatted() != "00:02.50" {
		t.Fatalf("reconstructions differ: %q vs %q", first.Formatted(), second.Formatted())
	}
	if !slices.Equal(first.FormattedLaps(), second.FormattedLaps()) {
		t.Fatalf("laps differ: %v vs %v", first.FormattedLaps(), second.FormattedLaps())
	}
	if first.Running() {
		t.Fatal("stopped stopwatch restored as running")
	}
}

func TestCorruptStateReconstructsStopped(t *testing.T) {
	fake := clock.Fake(epoch)
	store := kvstore.NewMemory()
	store.Set("stopwatch.run_start_unix_ms", "not a number")
	store.Set("stopwatch.accumulated_ms", "1500")
	store.Set("stopwatch.laps", "{broken")

	engine := reopen(t, fake, store)
	snapshot := engine.Restored()
	if snapshot.State != Stopped || snapshot.Elapsed != 1500*time.Millisecond || len(snapshot.Laps) != 0 {
		t.Fatalf("restored = %+v", snapshot)
	}
}

func TestWallClockSteppedBack(t *testing.T) {
	fake := clock.Fake(epoch)
	engine, _ := newTestEngine(t, fake)

	engine.Start()
	fake.Advance(time.Second)
	engine.Stop()
	engine.Start()
	fake.Set(epoch.Add(-time.Hour))
	engine.Stop()

	if got := engine.Elapsed(); got != time.Second {
		t.Fatalf("Elapsed after backwards step = %v, want 1s", got)
	}
}

// failingRepository loads an empty anchor and fails every write.
type failingRepository struct {
	saves int
}

func (r *failingRepository) Load() (anchor.Stopwatch, error) { return anchor.Stopwatch{}, nil }
func (r *failingRepository) Clear() error                    { return errors.New("read-only") }
func (r *failingRepository) Save(anchor.Stopwatch) error {
	r.saves++
	return errors.New("read-only")
}

func TestPersistenceFailureKeepsMemoryState(t *testing.T) {
	fake := clock.Fake(epoch)
	repository := &failingRepository{}
	engine := New(Config{Clock: fake, Repository: repository})
	defer engine.Close()

	engine.Start()
	fake.Advance(time.Second)
	engine.Lap()
	engine.Stop()

	if repository.saves != 3 {
		t.Fatalf("saves = %d, want 3", repository.saves)
	}
	if engine.Formatted() != "00:01.00" || len(engine.FormattedLaps()) != 1 {
		t.Fatalf("snapshot = %+v", engine.Snapshot())
	}
	engine.Reset()
	if engine.Elapsed() != 0 {
		t.Fatal("Reset with failing Clear left elapsed time")
	}
}

type unreadableRepository struct{ failingRepository }

func (unreadableRepository) Load() (anchor.Stopwatch, error) {
	return anchor.Stopwatch{}, errors.New("database locked")
}

func TestUnreadableRepositoryStartsFromZero(t *testing.T) {
	engine := New(Config{Clock: clock.Fake(epoch), Repository: &unreadableRepository{}})
	defer engine.Close()
	if engine.Restored().State != Stopped || engine.Elapsed() != 0 {
		t.Fatalf("restored = %+v", engine.Restored())
	}
}
