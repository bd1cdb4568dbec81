package astro

import (
	"math"
	"time"
)

// SynodicMonth is the mean length of the lunar cycle in days.
const SynodicMonth = 29.5305882

// MoonPhases is the number of discrete phase buckets.
const MoonPhases = 8

var moonPhaseNames = [MoonPhases]string{
	"new",
	"waxing_crescent",
	"first_quarter",
	"waxing_gibbous",
	"full",
	"waning_gibbous",
	"last_quarter",
	"waning_crescent",
}

// MoonPhaseIndex returns the lunar phase of t's calendar date as an integer
// in [0, 7]: 0 is new moon, 4 is full moon, 7 is waning crescent.
//
// Days elapsed since a reference new moon are folded by the synodic month
// and the fraction is rounded to the nearest of eight buckets; bucket 8 is
// the next new moon and folds back to 0.
func MoonPhaseIndex(t time.Time) int {
	year, m, day := t.Date()
	return moonPhaseIndex(year, m, day)
}

// MoonPhaseIndexAt is MoonPhaseIndex for the observer's local mean solar
// date, so the bucket turns over near local midnight rather than at 00:00 UTC.
func MoonPhaseIndexAt(t time.Time, lonDeg float64) int {
	year, m, day := SolarDate(t, lonDeg)
	return moonPhaseIndex(year, m, day)
}

func moonPhaseIndex(year int, m time.Month, day int) int {
	month := int(m)

	if month < 3 {
		year--
		month += 12
	}
	month++

	days := 365.25*float64(year) + 30.6*float64(month) + float64(day) - 694039.09
	cycles := days / SynodicMonth
	frac := cycles - math.Floor(cycles)

	b := int(math.Round(frac * MoonPhases))
	if b >= MoonPhases {
		b = 0
	}
	return b
}

// MoonPhaseName returns a short identifier for a phase index, or "" when the
// index is out of range.
func MoonPhaseName(idx int) string {
	if idx < 0 || idx >= MoonPhases {
		return ""
	}
	return moonPhaseNames[idx]
}
