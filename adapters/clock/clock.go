// Package clock provides time sources for the "$generate: now" default.
package clock

import (
	"sync"
	"time"

	"github.com/artpar/modeldiff/core/registry"
)

// UTC reads the system clock in UTC.
type UTC struct{}

// Now returns the current time in UTC.
func (UTC) Now() time.Time {
	return time.Now().UTC()
}

var _ registry.Clock = UTC{}

// Fake is a settable clock. With a non-zero step, every call to Now moves
// the clock forward, so records created back to back get distinct dates.
type Fake struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewFake creates a fake clock that starts at t.
func NewFake(t time.Time) *Fake {
	return &Fake{current: t}
}

// NewStepping creates a fake clock that advances by step after each read.
func NewStepping(t time.Time, step time.Duration) *Fake {
	return &Fake{current: t, step: step}
}

// Now returns the fake time, then applies the step.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.current
	f.current = f.current.Add(f.step)
	return now
}

// Set moves the clock to t.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = t
}

// Advance moves the clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.current.Add(d)
}

var _ registry.Clock = (*Fake)(nil)
