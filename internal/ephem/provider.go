// Package ephem supplies solar and lunar ephemeris for an observer: the
// Sun's position, the day's named solar events, and the Moon's position
// where the backing library provides it.
package ephem

import (
	"time"

	"github.com/litescript/ls-ambient/internal/astro"
)

// maxEventOffset bounds how far a solar event may lie from its own solar
// noon. Anything further is a library artefact of an undefined event.
const maxEventOffset = 13 * time.Hour

// Events are the named solar instants of one solar day. An event that does
// not occur (polar day or night) is the zero time.
type Events struct {
	Dawn        time.Time // civil dawn, sun at -6°
	Sunrise     time.Time // upper limb on the horizon
	SunriseEnd  time.Time // lower limb clears the horizon
	SolarNoon   time.Time // meridian transit, always defined
	SunsetStart time.Time
	Sunset      time.Time
	Dusk        time.Time // civil dusk, sun at -6°
}

// Position is a horizontal position in radians, in the SunCalc convention:
// azimuth is measured from south, positive toward west, in (-π, π];
// altitude is positive above the horizon.
type Position struct {
	Azimuth  float64
	Altitude float64
}

// Source defines the interface for ephemeris data sources.
type Source interface {
	// Name returns the source name for display/logging.
	Name() string

	// Events returns the solar events of the solar day whose noon is
	// nearest to t.
	Events(t time.Time, obs astro.Observer) Events

	// SunPosition returns the Sun's horizontal position at t.
	SunPosition(t time.Time, obs astro.Observer) Position

	// MoonPosition returns the Moon's horizontal position at t. The second
	// result is false when the source has no lunar ephemeris.
	MoonPosition(t time.Time, obs astro.Observer) (Position, bool)
}

// Mode represents which ephemeris source to use.
type Mode int

const (
	ModeSunCalc Mode = iota // SunCalc algorithms (default)
	ModeAlmanac             // go-sunrise plus the astro package
	ModeAuto                // Best available, currently SunCalc
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeSunCalc:
		return "suncalc"
	case ModeAlmanac:
		return "almanac"
	case ModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode string.
func ParseMode(s string) Mode {
	switch s {
	case "suncalc":
		return ModeSunCalc
	case "almanac":
		return ModeAlmanac
	case "auto":
		return ModeAuto
	default:
		return ModeAuto
	}
}

// New returns the source for a mode.
func New(mode Mode) Source {
	switch mode {
	case ModeAlmanac:
		return NewAlmanac()
	default:
		return NewSunCalc()
	}
}

// validEvent returns t when it is a plausible event of the solar day around
// noon, and the zero time otherwise.
func validEvent(t, noon time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	d := t.Sub(noon)
	if d < -maxEventOffset || d > maxEventOffset {
		return time.Time{}
	}
	return t
}
