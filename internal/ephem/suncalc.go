package ephem

import (
	"time"

	"github.com/sixdouglas/suncalc"

	"github.com/litescript/ls-ambient/internal/astro"
)

// SunCalc is a Source backed by the SunCalc algorithms. It is the only
// source with a true lunar ephemeris.
type SunCalc struct{}

// NewSunCalc creates a SunCalc source.
func NewSunCalc() *SunCalc {
	return &SunCalc{}
}

// Name implements Source.
func (s *SunCalc) Name() string {
	return "SunCalc"
}

// Events implements Source.
//
// For events that never occur SunCalc yields times derived from NaN; those
// are filtered out by their distance from solar noon.
func (s *SunCalc) Events(t time.Time, obs astro.Observer) Events {
	times := suncalc.GetTimes(t, obs.LatDeg, obs.LonDeg)
	noon := times[suncalc.SolarNoon].Value

	pick := func(name suncalc.DayTimeName) time.Time {
		dt, ok := times[name]
		if !ok {
			return time.Time{}
		}
		return validEvent(dt.Value, noon)
	}

	return Events{
		Dawn:        pick(suncalc.Dawn),
		Sunrise:     pick(suncalc.Sunrise),
		SunriseEnd:  pick(suncalc.SunriseEnd),
		SolarNoon:   noon,
		SunsetStart: pick(suncalc.SunsetStart),
		Sunset:      pick(suncalc.Sunset),
		Dusk:        pick(suncalc.Dusk),
	}
}

// SunPosition implements Source.
func (s *SunCalc) SunPosition(t time.Time, obs astro.Observer) Position {
	pos := suncalc.GetPosition(t, obs.LatDeg, obs.LonDeg)
	return Position{Azimuth: pos.Azimuth, Altitude: pos.Altitude}
}

// MoonPosition implements Source.
func (s *SunCalc) MoonPosition(t time.Time, obs astro.Observer) (Position, bool) {
	pos := suncalc.GetMoonPosition(t, obs.LatDeg, obs.LonDeg)
	return Position{Azimuth: pos.Azimuth, Altitude: pos.Altitude}, true
}
