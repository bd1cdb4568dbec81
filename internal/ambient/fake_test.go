package ambient

import (
	"math"
	"time"

	"github.com/litescript/ls-ambient/internal/astro"
	"github.com/litescript/ls-ambient/internal/ephem"
)

// fakeSource has solar noon at 12:00 UTC every day and events at fixed
// offsets from noon. A zero offset means the event does not occur.
type fakeSource struct {
	dawn, rise, riseEnd time.Duration
	setStart, set, dusk time.Duration
	noonAlt             float64 // radians
	moon                bool
	nanPosition         bool
}

func temperateFake() *fakeSource {
	return &fakeSource{
		dawn:     -7 * time.Hour,
		rise:     -6*time.Hour - 30*time.Minute,
		riseEnd:  -6*time.Hour - 25*time.Minute,
		setStart: 6*time.Hour + 25*time.Minute,
		set:      6*time.Hour + 30*time.Minute,
		dusk:     7 * time.Hour,
		noonAlt:  1.1,
	}
}

func (f *fakeSource) Name() string { return "fake" }

func (f *fakeSource) noon(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour).Add(12 * time.Hour)
}

func (f *fakeSource) Events(t time.Time, _ astro.Observer) ephem.Events {
	noon := f.noon(t)
	at := func(d time.Duration) time.Time {
		if d == 0 {
			return time.Time{}
		}
		return noon.Add(d)
	}
	return ephem.Events{
		Dawn:        at(f.dawn),
		Sunrise:     at(f.rise),
		SunriseEnd:  at(f.riseEnd),
		SolarNoon:   noon,
		SunsetStart: at(f.setStart),
		Sunset:      at(f.set),
		Dusk:        at(f.dusk),
	}
}

func (f *fakeSource) SunPosition(t time.Time, _ astro.Observer) ephem.Position {
	if f.nanPosition {
		return ephem.Position{Azimuth: math.NaN(), Altitude: math.NaN()}
	}
	h := 2 * math.Pi * t.Sub(f.noon(t)).Hours() / 24
	return ephem.Position{
		Azimuth:  h,
		Altitude: f.noonAlt - 0.6*(1-math.Cos(h)),
	}
}

func (f *fakeSource) MoonPosition(t time.Time, obs astro.Observer) (ephem.Position, bool) {
	if !f.moon {
		return ephem.Position{}, false
	}
	p := f.SunPosition(t.Add(12*time.Hour), obs)
	return p, true
}

var paris = Location{Latitude: 48.85341, Longitude: 2.3488}

func utc(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}
