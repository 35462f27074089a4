// Package clock abstracts the wall clock so install timestamps and debug
// reports can be pinned in tests.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock. Times are returned in UTC so recorded
// install state does not depend on the host's zone.
type RealClock struct{}

// Now returns the current system time in UTC.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FakeClock is a Clock pinned to a settable instant.
type FakeClock struct {
	current time.Time
}

// NewFakeClock creates a FakeClock fixed at t.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t}
}

// Now returns the pinned time.
func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the pinned time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
