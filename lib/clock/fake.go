// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// Fake returns a deterministic Clock for tests, initialized to the
// given time. Time stands still until Advance is called.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	f := &FakeClock{now: initial}
	f.registered = sync.NewCond(&f.mu)
	return f
}

// FakeClock is a Clock whose time only moves when Advance is called.
// Pending After channels and tickers fire, in deadline order, as the
// clock passes their deadlines.
type FakeClock struct {
	mu         sync.Mutex
	now        time.Time
	pending    []*pendingTimer
	registered *sync.Cond
}

// pendingTimer is one scheduled delivery: a one-shot After channel
// (interval == 0) or a repeating ticker (interval > 0).
type pendingTimer struct {
	deadline time.Time
	channel  chan time.Time
	interval time.Duration
	stopped  bool
}

// Now returns the current fake time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that receives once the clock advances past
// the deadline. If d <= 0, the channel receives immediately.
func (f *FakeClock) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- f.now
		return channel
	}
	f.pending = append(f.pending, &pendingTimer{
		deadline: f.now.Add(d),
		channel:  channel,
	})
	f.registered.Broadcast()
	return channel
}

// NewTicker returns a Ticker firing every d of fake time. Panics if
// d <= 0.
func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	timer := &pendingTimer{
		deadline: f.now.Add(d),
		channel:  make(chan time.Time, 1),
		interval: d,
	}
	f.pending = append(f.pending, timer)
	f.registered.Broadcast()

	return &Ticker{
		C: timer.channel,
		stop: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			timer.stopped = true
		},
	}
}

// Advance moves the clock forward by d, firing every pending timer and
// ticker whose deadline falls within the new time, in deadline order.
// Channel sends are non-blocking: a tick that finds its buffer full is
// dropped, matching time.Ticker.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.now = f.now.Add(d)
	for {
		timer := f.earliestDueLocked()
		if timer == nil {
			return
		}
		fireTime := timer.deadline
		select {
		case timer.channel <- fireTime:
		default:
		}
		if timer.interval > 0 {
			timer.deadline = timer.deadline.Add(timer.interval)
		} else {
			timer.stopped = true
		}
	}
}

// earliestDueLocked returns the unstopped timer with the earliest
// deadline not after the current time, or nil. Also compacts stopped
// timers out of the pending slice. Must be called with f.mu held.
func (f *FakeClock) earliestDueLocked() *pendingTimer {
	var due *pendingTimer
	live := f.pending[:0]
	for _, timer := range f.pending {
		if timer.stopped {
			continue
		}
		live = append(live, timer)
		if timer.deadline.After(f.now) {
			continue
		}
		if due == nil || timer.deadline.Before(due.deadline) {
			due = timer
		}
	}
	f.pending = live
	return due
}

// WaitForTimers blocks until at least n timers or tickers are
// registered and pending. Call this before Advance when the timer is
// registered by another goroutine, otherwise Advance can race ahead of
// the registration and the timer never fires.
func (f *FakeClock) WaitForTimers(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for f.pendingCountLocked() < n {
		f.registered.Wait()
	}
}

func (f *FakeClock) pendingCountLocked() int {
	count := 0
	for _, timer := range f.pending {
		if !timer.stopped {
			count++
		}
	}
	return count
}
