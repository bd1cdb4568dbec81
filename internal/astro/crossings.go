package astro

import (
	"math"
	"time"
)

// Standard solar elevations, in degrees, used to define the day's events.
const (
	ElevationSunriseEnd = -0.3 // lower limb clears the horizon
	ElevationCivil      = -6.0 // civil dawn/dusk
)

// crossingStep is the sampling interval of the crossing search. The Sun moves
// at most ~2.5° of elevation in 10 minutes, so a linear fit is good to seconds.
const crossingStep = 10 * time.Minute

// Crossing holds the morning and evening instants at which the Sun passes a
// given elevation. RiseOK/SetOK are false when the Sun never reaches that
// elevation on the respective side of transit (polar day or night).
type Crossing struct {
	Rise   time.Time
	Set    time.Time
	RiseOK bool
	SetOK  bool
}

// SunCrossings finds when the Sun passes elevationDeg in the half days
// before and after the given transit instant.
func SunCrossings(obs Observer, transit time.Time, elevationDeg float64) Crossing {
	var c Crossing
	c.Rise, c.RiseOK = findCrossing(obs, transit.Add(-12*time.Hour), transit, elevationDeg, true)
	c.Set, c.SetOK = findCrossing(obs, transit, transit.Add(12*time.Hour), elevationDeg, false)
	return c
}

// findCrossing scans [from, to] and returns the first upward (rising) or
// downward crossing of threshold.
func findCrossing(obs Observer, from, to time.Time, threshold float64, rising bool) (time.Time, bool) {
	prevT := from
	prevEl := SunElevation(obs, from)

	for t := from.Add(crossingStep); !t.After(to); t = t.Add(crossingStep) {
		el := SunElevation(obs, t)

		up := prevEl <= threshold && el > threshold
		down := prevEl > threshold && el <= threshold
		if (rising && up) || (!rising && down) {
			return interpolateCrossing(prevT, t, prevEl, el, threshold), true
		}

		prevT, prevEl = t, el
	}
	return time.Time{}, false
}

// interpolateCrossing finds the time when elevation crosses a threshold.
func interpolateCrossing(t1, t2 time.Time, el1, el2, threshold float64) time.Time {
	if math.Abs(el2-el1) < 0.0001 {
		return t1
	}

	fraction := (threshold - el1) / (el2 - el1)
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}

	dt := t2.Sub(t1)
	return t1.Add(time.Duration(float64(dt) * fraction))
}
