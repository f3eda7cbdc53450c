// Copyright 2026 The Tel84 Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock frozen at initial. Time moves only when
// Advance is called.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.pendingChanged = sync.NewCond(&clock.mu)
	return clock
}

// FakeClock is a deterministic Clock for tests. After, Sleep and
// tickers block until Advance moves the clock past their deadline.
type FakeClock struct {
	mu             sync.Mutex
	current        time.Time
	pending        []*pendingWake
	pendingChanged *sync.Cond
}

// pendingWake is a registered After, Sleep, or ticker deadline.
type pendingWake struct {
	deadline time.Time
	channel  chan time.Time

	// period is non-zero for tickers; a fired ticker is rescheduled
	// at deadline + period.
	period time.Duration

	stopped bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock has advanced by
// d. A non-positive d delivers immediately without registering.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}

	c.pending = append(c.pending, &pendingWake{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	c.pendingChanged.Broadcast()
	return channel
}

// NewTicker returns a Ticker firing every d of fake time. Panics if
// d <= 0.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	wake := &pendingWake{
		deadline: c.current.Add(d),
		channel:  channel,
		period:   d,
	}
	c.pending = append(c.pending, wake)
	c.pendingChanged.Broadcast()

	return &Ticker{
		C: channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			wake.stopped = true
		},
	}
}

// Sleep blocks until the clock advances by d. Returns immediately if
// d <= 0.
func (c *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	<-c.After(d)
}

// Advance moves the clock forward by d and fires every waiter whose
// deadline is reached, in deadline order. Sends are non-blocking, so a
// ticker spanning several periods delivers at most one buffered tick.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.current = c.current.Add(d)
	target := c.current
	c.mu.Unlock()

	for {
		due := c.collectDue(target)
		if len(due) == 0 {
			return
		}

		sort.Slice(due, func(i, j int) bool {
			return due[i].deadline.Before(due[j].deadline)
		})

		for _, wake := range due {
			select {
			case wake.channel <- target:
			default:
			}
		}
	}
}

// collectDue removes due waiters from the pending list, reschedules
// tickers, and returns what should fire. Acquires c.mu.
func (c *FakeClock) collectDue(target time.Time) []*pendingWake {
	c.mu.Lock()
	defer c.mu.Unlock()

	var due, remaining []*pendingWake
	for _, wake := range c.pending {
		if wake.stopped {
			continue
		}
		if !wake.deadline.After(target) {
			due = append(due, wake)
		} else {
			remaining = append(remaining, wake)
		}
	}

	for _, wake := range due {
		if wake.period > 0 {
			wake.deadline = wake.deadline.Add(wake.period)
			remaining = append(remaining, wake)
		}
	}

	c.pending = remaining
	return due
}

// WaitForTimers blocks until at least n waiters are pending. Call it
// before Advance so the goroutine under test has armed its timer.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pendingCountLocked() < n {
		c.pendingChanged.Wait()
	}
}

// PendingCount returns the number of active pending waiters.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingCountLocked()
}

func (c *FakeClock) pendingCountLocked() int {
	count := 0
	for _, wake := range c.pending {
		if !wake.stopped {
			count++
		}
	}
	return count
}
