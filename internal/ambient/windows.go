package ambient

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-ambient/internal/astro"
	"github.com/litescript/ls-ambient/internal/ephem"
)

const day = 24 * time.Hour

// ActiveWindow is the result of locating an instant in a day cycle.
type ActiveWindow struct {
	Current PhaseWindow
	Next    PhaseWindow // next non-empty window in cycle order
	Start   time.Time
	End     time.Time
}

// solarDays holds the settled events of the solar day around an instant
// and its two neighbours, plus the derived values the mapper needs.
//
// Settled events are always ordered and every event is defined:
// midnightBefore <= Dawn <= SunriseEnd <= SolarNoon <= SunsetStart <= Dusk <= midnightAfter,
// where solar midnight is the midpoint between consecutive noons.
type solarDays struct {
	yesterday, today, tomorrow ephem.Events

	// today covers instants in [from, to)
	from, to time.Time

	sunriseAzimuth float64 // radians, SunCalc convention
	noonAltitude   float64 // radians
	degenerate     bool    // some event of today was undefined
}

// ResolveWindows builds the four phase windows of the solar day around now,
// in cycle order sunrise, day, sunset, night.
//
// The night window depends on which side of solar noon now falls: in the
// afternoon it runs from today's dusk to tomorrow's dawn, in the morning from
// yesterday's dusk to today's dawn.
func ResolveWindows(src ephem.Source, now time.Time, loc Location, palette Palette) ([NumPhases]PhaseWindow, error) {
	if err := loc.Validate(); err != nil {
		return [NumPhases]PhaseWindow{}, err
	}
	days, err := resolveDays(src, now, loc.Observer())
	if err != nil {
		return [NumPhases]PhaseWindow{}, err
	}
	return days.windows(now, palette), nil
}

// resolveDays fetches yesterday, today and tomorrow and settles undefined
// events. "Today" is the solar day whose midnights bracket now.
func resolveDays(src ephem.Source, now time.Time, obs astro.Observer) (*solarDays, error) {
	today := src.Events(now, obs)
	if today.SolarNoon.IsZero() {
		return nil, fmt.Errorf("%w: solar noon undefined at %v", ErrEphemeris, now)
	}
	yesterday := src.Events(today.SolarNoon.Add(-day), obs)
	tomorrow := src.Events(today.SolarNoon.Add(day), obs)

	// The source picks the nearest mean noon; re-centre on true noons.
	for i := 0; i < 2; i++ {
		switch {
		case now.Before(midpoint(yesterday.SolarNoon, today.SolarNoon)):
			tomorrow, today = today, yesterday
			yesterday = src.Events(today.SolarNoon.Add(-day), obs)
		case !now.Before(midpoint(today.SolarNoon, tomorrow.SolarNoon)):
			yesterday, today = today, tomorrow
			tomorrow = src.Events(today.SolarNoon.Add(day), obs)
		}
	}

	d := &solarDays{
		from: midpoint(yesterday.SolarNoon, today.SolarNoon),
		to:   midpoint(today.SolarNoon, tomorrow.SolarNoon),
	}
	if !d.from.Before(d.to) || now.Before(d.from) || !now.Before(d.to) {
		return nil, fmt.Errorf("%w: noons %v %v %v do not bracket %v",
			ErrEphemeris, yesterday.SolarNoon, today.SolarNoon, tomorrow.SolarNoon, now)
	}

	noonAlt := func(ev ephem.Events) float64 {
		return src.SunPosition(ev.SolarNoon, obs).Altitude
	}

	d.noonAltitude = noonAlt(today)
	d.today, d.degenerate = settle(today, yesterday.SolarNoon, tomorrow.SolarNoon, d.noonAltitude)
	d.yesterday, _ = settle(yesterday, yesterday.SolarNoon.Add(-day), today.SolarNoon, noonAlt(yesterday))
	d.tomorrow, _ = settle(tomorrow, today.SolarNoon, tomorrow.SolarNoon.Add(day), noonAlt(tomorrow))

	// Sunrise azimuth anchors the horizontal mapping; without a sunrise
	// fall back to due east.
	d.sunriseAzimuth = -math.Pi / 2
	if !today.Sunrise.IsZero() {
		d.sunriseAzimuth = src.SunPosition(today.Sunrise, obs).Azimuth
	}

	return d, nil
}

// covers reports whether the cached days can serve instant t.
func (d *solarDays) covers(t time.Time) bool {
	return !t.Before(d.from) && t.Before(d.to)
}

// windows builds the cycle for now. now must be covered by d.
func (d *solarDays) windows(now time.Time, palette Palette) [NumPhases]PhaseWindow {
	td := d.today

	night := PhaseWindow{Phase: PhaseNight, Start: d.yesterday.Dusk, End: td.Dawn}
	if !now.Before(td.SolarNoon) {
		night.Start, night.End = td.Dusk, d.tomorrow.Dawn
	}

	w := [NumPhases]PhaseWindow{
		{Phase: PhaseSunrise, Start: td.Dawn, End: td.SunriseEnd},
		{Phase: PhaseDay, Start: td.SunriseEnd, End: td.SunsetStart},
		{Phase: PhaseSunset, Start: td.SunsetStart, End: td.Dusk},
		night,
	}
	for i := range w {
		w[i].PhaseStyle = palette[w[i].Phase]
	}
	return w
}

// settle fills undefined events so that the day still partitions cleanly.
//
//   - Sun rises and sets but twilight never ends (white night): dawn moves
//     to the solar midnight before, dusk to the one after; night is empty.
//   - Sun never sets (polar day): sunrise and sunset collapse onto the
//     midnights and day spans the whole solar day.
//   - Sun never rises (polar night): day collapses onto noon; if there is no
//     civil twilight either, everything collapses onto noon and night spans
//     the whole solar day.
//
// The second result reports whether any substitution was needed.
func settle(ev ephem.Events, prevNoon, nextNoon time.Time, noonAltitude float64) (ephem.Events, bool) {
	before := midpoint(prevNoon, ev.SolarNoon)
	after := midpoint(ev.SolarNoon, nextNoon)
	noon := ev.SolarNoon

	degenerate := ev.Dawn.IsZero() || ev.SunriseEnd.IsZero() || ev.SunsetStart.IsZero() || ev.Dusk.IsZero()

	switch {
	case !ev.SunriseEnd.IsZero() && !ev.SunsetStart.IsZero():
		if ev.Dawn.IsZero() {
			ev.Dawn = before
		}
		if ev.Dusk.IsZero() {
			ev.Dusk = after
		}
	case noonAltitude > 0:
		ev.Dawn, ev.SunriseEnd = before, before
		ev.SunsetStart, ev.Dusk = after, after
	default:
		ev.SunriseEnd, ev.SunsetStart = noon, noon
		if ev.Dawn.IsZero() || ev.Dusk.IsZero() {
			ev.Dawn, ev.Dusk = noon, noon
		}
	}

	ev.Dawn = clampTime(ev.Dawn, before, noon)
	ev.SunriseEnd = clampTime(ev.SunriseEnd, ev.Dawn, noon)
	ev.SunsetStart = clampTime(ev.SunsetStart, noon, after)
	ev.Dusk = clampTime(ev.Dusk, ev.SunsetStart, after)

	return ev, degenerate
}

// FindActiveWindow returns the window containing now. Windows are scanned in
// order; should two windows both contain now, the later-starting one wins.
// It fails with ErrNoActiveWindow when no window contains now.
func FindActiveWindow(now time.Time, windows []PhaseWindow) (ActiveWindow, error) {
	idx := -1
	for i, w := range windows {
		if !w.Contains(now) {
			continue
		}
		if idx < 0 || !w.Start.Before(windows[idx].Start) {
			idx = i
		}
	}
	if idx < 0 {
		return ActiveWindow{}, fmt.Errorf("%w: %v in %s", ErrNoActiveWindow, now.Format(time.RFC3339), describeWindows(windows))
	}

	cur := windows[idx]
	next := cur
	for k := 1; k < len(windows); k++ {
		cand := windows[(idx+k)%len(windows)]
		if !cand.Empty() {
			next = cand
			break
		}
	}

	return ActiveWindow{
		Current: cur,
		Next:    next,
		Start:   cur.Start,
		End:     cur.End,
	}, nil
}

func describeWindows(windows []PhaseWindow) string {
	s := "["
	for i, w := range windows {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s:%s..%s", w.Phase, w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
	}
	return s + "]"
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

func clampTime(t, lo, hi time.Time) time.Time {
	if t.Before(lo) {
		return lo
	}
	if t.After(hi) {
		return hi
	}
	return t
}
