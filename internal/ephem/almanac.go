package ephem

import (
	"math"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/litescript/ls-ambient/internal/astro"
)

// Almanac is a Source built from go-sunrise for the standard sunrise and
// sunset, and the astro package for the solar position, the meridian
// transit and the twilight crossings. It has no lunar ephemeris.
type Almanac struct{}

// NewAlmanac creates an Almanac source.
func NewAlmanac() *Almanac {
	return &Almanac{}
}

// Name implements Source.
func (a *Almanac) Name() string {
	return "Almanac"
}

// Events implements Source.
func (a *Almanac) Events(t time.Time, obs astro.Observer) Events {
	noon := astro.SolarTransit(t, obs)

	// go-sunrise returns zero times when the sun neither rises nor sets
	y, m, d := astro.SolarDate(t, obs.LonDeg)
	rise, set := sunrise.SunriseSunset(obs.LatDeg, obs.LonDeg, y, m, d)

	civil := astro.SunCrossings(obs, noon, astro.ElevationCivil)
	limb := astro.SunCrossings(obs, noon, astro.ElevationSunriseEnd)

	ev := Events{
		SolarNoon: noon,
		Sunrise:   validEvent(rise, noon),
		Sunset:    validEvent(set, noon),
	}
	if civil.RiseOK {
		ev.Dawn = civil.Rise
	}
	if civil.SetOK {
		ev.Dusk = civil.Set
	}
	if limb.RiseOK {
		ev.SunriseEnd = limb.Rise
	}
	if limb.SetOK {
		ev.SunsetStart = limb.Set
	}
	return ev
}

// SunPosition implements Source.
func (a *Almanac) SunPosition(t time.Time, obs astro.Observer) Position {
	coord := astro.SunHorizontal(t, obs)
	return Position{
		Azimuth:  southAzimuth(coord.AzDeg),
		Altitude: coord.ElDeg * math.Pi / 180,
	}
}

// MoonPosition implements Source. The almanac has no lunar ephemeris.
func (a *Almanac) MoonPosition(t time.Time, obs astro.Observer) (Position, bool) {
	return Position{}, false
}

// southAzimuth converts a north-based compass azimuth in degrees to the
// south-based, west-positive radians used by Position.
func southAzimuth(azDeg float64) float64 {
	a := math.Mod(azDeg-180, 360)
	if a <= -180 {
		a += 360
	} else if a > 180 {
		a -= 360
	}
	return a * math.Pi / 180
}
