package ambient

import "time"

// Clock supplies "now" to whoever drives the engine. The engine itself only
// sees the instants passed to Tick.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time { return time.Time(c) }

// ScaledClock runs Factor times faster than real time from Origin.
// A factor of 1 is real time starting at Origin.
type ScaledClock struct {
	Origin time.Time
	Factor float64

	started time.Time
	since   func(time.Time) time.Duration
}

// NewScaledClock returns a clock starting at origin, running factor times
// faster than the wall clock.
func NewScaledClock(origin time.Time, factor float64) *ScaledClock {
	if factor <= 0 {
		factor = 1
	}
	return &ScaledClock{
		Origin:  origin,
		Factor:  factor,
		started: time.Now(),
		since:   time.Since,
	}
}

// Now returns the scaled instant.
func (c *ScaledClock) Now() time.Time {
	elapsed := c.since(c.started)
	return c.Origin.Add(time.Duration(float64(elapsed) * c.Factor)).UTC()
}
