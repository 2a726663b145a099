// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package mempool

import "time"

// Clock abstracts the pool's time source so tests can advance time
// deterministically instead of sleeping real wall-clock durations, the
// same injection point the corpus uses wherever "advance the clock to
// t=1500ms" style scenarios need to be exercised without a real timer.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock, backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// ManualClock is a test Clock whose value only changes when Advance or
// Set is called.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a ManualClock starting at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Set pins the clock to t.
func (c *ManualClock) Set(t time.Time) { c.now = t }
