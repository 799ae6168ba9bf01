// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockNow(t *testing.T) {
	clock := Fake(epoch)
	if got := clock.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	clock.Advance(5 * time.Second)
	want := epoch.Add(5 * time.Second)
	if got := clock.Now(); !got.Equal(want) {
		t.Fatalf("Now() after Advance = %v, want %v", got, want)
	}
}

func TestFakeClockAfterFuncInvokesCallback(t *testing.T) {
	clock := Fake(epoch)
	called := false
	clock.AfterFunc(2*time.Second, func() { called = true })

	clock.Advance(time.Second)
	if called {
		t.Fatal("callback ran before its deadline")
	}
	clock.Advance(time.Second)
	if !called {
		t.Fatal("callback did not run at its deadline")
	}
}

func TestFakeClockAfterFuncObservesAdvancedTime(t *testing.T) {
	clock := Fake(epoch)
	var observed time.Time
	clock.AfterFunc(10*time.Millisecond, func() { observed = clock.Now() })

	clock.Advance(37 * time.Millisecond)
	want := epoch.Add(37 * time.Millisecond)
	if !observed.Equal(want) {
		t.Fatalf("callback saw %v, want %v (late timers see the late time)", observed, want)
	}
}

func TestFakeClockAfterFuncZeroDuration(t *testing.T) {
	clock := Fake(epoch)
	called := false
	timer := clock.AfterFunc(0, func() { called = true })
	if !called {
		t.Fatal("AfterFunc(0) should run synchronously")
	}
	if timer.Stop() {
		t.Error("Stop on an already-run timer should return false")
	}
}

func TestFakeClockAfterFuncStop(t *testing.T) {
	clock := Fake(epoch)
	called := false
	timer := clock.AfterFunc(time.Second, func() { called = true })

	if !timer.Stop() {
		t.Fatal("Stop on a pending timer should return true")
	}
	if timer.Stop() {
		t.Error("second Stop should return false")
	}
	clock.Advance(2 * time.Second)
	if called {
		t.Fatal("stopped callback ran")
	}
}

func TestFakeClockStopAfterFire(t *testing.T) {
	clock := Fake(epoch)
	timer := clock.AfterFunc(time.Second, func() {})
	clock.Advance(time.Second)
	if timer.Stop() {
		t.Error("Stop after fire should return false")
	}
}

func TestFakeClockNilTimerStop(t *testing.T) {
	var timer *Timer
	if timer.Stop() {
		t.Error("Stop on a nil timer should return false")
	}
}

func TestFakeClockCallbacksFireInDeadlineOrder(t *testing.T) {
	clock := Fake(epoch)
	var order []int
	clock.AfterFunc(3*time.Second, func() { order = append(order, 3) })
	clock.AfterFunc(1*time.Second, func() { order = append(order, 1) })
	clock.AfterFunc(2*time.Second, func() { order = append(order, 2) })
	clock.AfterFunc(1*time.Second, func() { order = append(order, 11) })

	clock.Advance(5 * time.Second)

	want := []int{1, 11, 2, 3}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestFakeClockRescheduleChainWithinOneAdvance(t *testing.T) {
	clock := Fake(epoch)
	fires := 0
	var schedule func()
	schedule = func() {
		clock.AfterFunc(100*time.Millisecond, func() {
			fires++
			schedule()
		})
	}
	schedule()

	// The first callback sees Now() == epoch+1s and reschedules past
	// the target, so exactly one fire happens per Advance.
	clock.Advance(time.Second)
	if fires != 1 {
		t.Fatalf("fires = %d, want 1", fires)
	}
	if clock.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", clock.Pending())
	}
}

func TestFakeClockSetForward(t *testing.T) {
	clock := Fake(epoch)
	called := false
	clock.AfterFunc(time.Minute, func() { called = true })

	clock.Set(epoch.Add(time.Hour))
	if !called {
		t.Fatal("Set forward past a deadline should fire it")
	}
	if got := clock.Now(); !got.Equal(epoch.Add(time.Hour)) {
		t.Fatalf("Now() = %v", got)
	}
}

func TestFakeClockSetBackward(t *testing.T) {
	clock := Fake(epoch)
	called := false
	clock.AfterFunc(time.Second, func() { called = true })

	clock.Set(epoch.Add(-time.Hour))
	if called {
		t.Fatal("Set backward fired a callback")
	}
	if got := clock.Now(); !got.Equal(epoch.Add(-time.Hour)) {
		t.Fatalf("Now() = %v", got)
	}
	if clock.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", clock.Pending())
	}
}

func TestFakeClockNextDeadline(t *testing.T) {
	clock := Fake(epoch)
	if _, ok := clock.NextDeadline(); ok {
		t.Fatal("NextDeadline with nothing pending should report false")
	}

	late := clock.AfterFunc(5*time.Second, func() {})
	clock.AfterFunc(2*time.Second, func() {})
	deadline, ok := clock.NextDeadline()
	if !ok || !deadline.Equal(epoch.Add(2*time.Second)) {
		t.Fatalf("NextDeadline() = %v, %v", deadline, ok)
	}

	clock.Advance(2 * time.Second)
	late.Stop()
	if _, ok := clock.NextDeadline(); ok {
		t.Fatal("stopped timers must not count")
	}
}

func TestFakeClockAdvanceNegativePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Advance(-1) should panic")
		}
	}()
	Fake(epoch).Advance(-time.Nanosecond)
}

func TestFakeClockImplementsClock(t *testing.T) {
	var _ Clock = Fake(epoch)
}

func TestRealClockImplementsClock(t *testing.T) {
	var _ Clock = Real()
}

func TestUnixMilli(t *testing.T) {
	clock := Fake(epoch.Add(1234 * time.Millisecond))
	if got, want := UnixMilli(clock), epoch.UnixMilli()+1234; got != want {
		t.Fatalf("UnixMilli() = %d, want %d", got, want)
	}
}

func TestFakeClockConcurrentAccess(t *testing.T) {
	clock := Fake(epoch)
	var waitGroup sync.WaitGroup
	for range 10 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			timer := clock.AfterFunc(time.Second, func() {})
			clock.Now()
			timer.Stop()
		}()
	}
	waitGroup.Wait()
	clock.Advance(2 * time.Second)
	if clock.Pending() != 0 {
		t.Fatalf("Pending() = %d, want 0", clock.Pending())
	}
}
