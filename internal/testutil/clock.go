// Package testutil provides deterministic helpers shared by tests:
// a settable wall clock and a fixed token generator. Both exist so the
// same scenario produces identical output on every run.
package testutil

import (
	"sync"
	"time"
)

// DeterministicClock is a settable wall clock for tests.
//
// Production code takes a Clock interface (editor deadlines,
// notification expiry); tests inject this and advance time explicitly
// instead of sleeping.
//
// Thread-safety: all methods are safe for concurrent use via an
// internal mutex, since detached sync goroutines may read the clock
// while the test advances it.
type DeterministicClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewDeterministicClock creates a clock frozen at the given instant.
func NewDeterministicClock(start time.Time) *DeterministicClock {
	return &DeterministicClock{now: start}
}

// Now returns the current frozen instant.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *DeterministicClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set jumps the clock to a specific instant.
func (c *DeterministicClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
