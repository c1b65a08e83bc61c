// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var testEpoch = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestFakeNowAdvance(t *testing.T) {
	fake := Fake(testEpoch)
	if !fake.Now().Equal(testEpoch) {
		t.Errorf("Now = %v, want %v", fake.Now(), testEpoch)
	}
	fake.Advance(90 * time.Second)
	want := testEpoch.Add(90 * time.Second)
	if !fake.Now().Equal(want) {
		t.Errorf("Now = %v, want %v", fake.Now(), want)
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	fake := Fake(testEpoch)
	ch := fake.After(time.Minute)

	select {
	case <-ch:
		t.Fatal("After channel fired before Advance")
	default:
	}

	fake.Advance(time.Minute)
	select {
	case fired := <-ch:
		if !fired.Equal(testEpoch.Add(time.Minute)) {
			t.Errorf("fire time = %v, want %v", fired, testEpoch.Add(time.Minute))
		}
	default:
		t.Fatal("After channel did not fire after Advance")
	}
}

func TestFakeAfterImmediateForNonPositive(t *testing.T) {
	fake := Fake(testEpoch)
	select {
	case <-fake.After(0):
	default:
		t.Fatal("After(0) should fire immediately")
	}
}

func TestFakeTickerRepeats(t *testing.T) {
	fake := Fake(testEpoch)
	ticker := fake.NewTicker(time.Minute)
	defer ticker.Stop()

	for i := 0; i < 3; i++ {
		fake.Advance(time.Minute)
		select {
		case <-ticker.C:
		default:
			t.Fatalf("tick %d missing", i+1)
		}
	}
}

func TestFakeTickerDropsWhenBehind(t *testing.T) {
	fake := Fake(testEpoch)
	ticker := fake.NewTicker(time.Minute)
	defer ticker.Stop()

	// Spanning five intervals with nobody reading: the buffer holds
	// one tick and the rest are dropped.
	fake.Advance(5 * time.Minute)

	received := 0
	for {
		select {
		case <-ticker.C:
			received++
		default:
			if received != 1 {
				t.Errorf("received %d buffered ticks, want 1", received)
			}
			return
		}
	}
}

func TestFakeTickerStop(t *testing.T) {
	fake := Fake(testEpoch)
	ticker := fake.NewTicker(time.Minute)
	ticker.Stop()

	fake.Advance(time.Hour)
	select {
	case <-ticker.C:
		t.Fatal("stopped ticker delivered a tick")
	default:
	}
}

func TestFakeDeadlineOrder(t *testing.T) {
	fake := Fake(testEpoch)
	late := fake.After(2 * time.Minute)
	early := fake.After(time.Minute)

	fake.Advance(3 * time.Minute)

	earlyTime := <-early
	lateTime := <-late
	if !earlyTime.Before(lateTime) {
		t.Errorf("fire times out of order: early %v, late %v", earlyTime, lateTime)
	}
}

func TestFakeWaitForTimers(t *testing.T) {
	fake := Fake(testEpoch)
	done := make(chan struct{})

	go func() {
		ch := fake.After(time.Minute)
		<-ch
		close(done)
	}()

	fake.WaitForTimers(1)
	fake.Advance(time.Minute)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutine did not observe the fired timer")
	}
}
