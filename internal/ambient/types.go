// Package ambient computes the environmental state of the ambient scene:
// which solar phase is active, the sky colours and brightness blended across
// phase boundaries, where the sun and moon sit on screen, and the star field.
//
// The Engine owns all mutable state and is advanced once per frame by Tick.
// It is not safe for concurrent use.
package ambient

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-ambient/internal/astro"
)

// Errors returned by the engine and the resolver.
var (
	ErrInvalidLocation = errors.New("invalid location")
	ErrNoActiveWindow  = errors.New("no phase window contains instant")
	ErrEphemeris       = errors.New("inconsistent ephemeris")
	ErrInvalidState    = errors.New("computed state is not finite")
)

// Phase is one ambient lighting regime.
type Phase int

// Phases in cycle order. The order is also the resolver's tie-break order.
const (
	PhaseSunrise Phase = iota
	PhaseDay
	PhaseSunset
	PhaseNight
)

// NumPhases is the number of phases in a day cycle.
const NumPhases = 4

func (p Phase) String() string {
	switch p {
	case PhaseSunrise:
		return "sunrise"
	case PhaseDay:
		return "day"
	case PhaseSunset:
		return "sunset"
	case PhaseNight:
		return "night"
	default:
		return "unknown"
	}
}

// Location is a geographic position in degrees.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Validate rejects coordinates outside [-90,90] x [-180,180].
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidLocation, l.Latitude)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// Observer converts the location for the ephemeris layer.
func (l Location) Observer() astro.Observer {
	return astro.Observer{LatDeg: l.Latitude, LonDeg: l.Longitude}
}

func (l Location) String() string {
	return fmt.Sprintf("%.5f,%.5f", l.Latitude, l.Longitude)
}

// RGB is a colour with channels in [0,255]. Channels are floats so blended
// colours keep their precision until serialization.
type RGB struct {
	R, G, B float64
}

// ParseHex parses a "#rrggbb" colour.
func ParseHex(s string) (RGB, error) {
	c, err := colorful.Hex(s)
	if err != nil {
		return RGB{}, fmt.Errorf("parse colour: %w", err)
	}
	return RGB{R: c.R * 255, G: c.G * 255, B: c.B * 255}, nil
}

// Colorful converts to a go-colorful colour with channels in [0,1].
func (c RGB) Colorful() colorful.Color {
	return colorful.Color{R: c.R / 255, G: c.G / 255, B: c.B / 255}
}

// Hex returns the "#rrggbb" form.
func (c RGB) Hex() string {
	return c.Colorful().Clamped().Hex()
}

func (c RGB) finite() bool {
	return isFinite(c.R) && isFinite(c.G) && isFinite(c.B)
}

// PhaseStyle is the static look of one phase.
type PhaseStyle struct {
	Top        RGB
	Bottom     RGB
	Brightness float64 // multiplier in [0,1]
}

// Palette holds one style per phase, indexed by Phase.
type Palette [NumPhases]PhaseStyle

// DefaultPalette returns the stock sky colours.
func DefaultPalette() Palette {
	return Palette{
		PhaseSunrise: {Top: RGB{63, 144, 208}, Bottom: RGB{255, 194, 117}, Brightness: 0.75},
		PhaseDay:     {Top: RGB{42, 207, 255}, Bottom: RGB{181, 255, 246}, Brightness: 1.0},
		PhaseSunset:  {Top: RGB{59, 38, 115}, Bottom: RGB{255, 86, 36}, Brightness: 0.65},
		PhaseNight:   {Top: RGB{8, 0, 30}, Bottom: RGB{50, 39, 119}, Brightness: 0.3},
	}
}

// PhaseWindow is a half-open interval [Start, End) of one phase.
type PhaseWindow struct {
	Phase Phase
	Start time.Time
	End   time.Time
	PhaseStyle
}

// Contains reports whether t lies in [Start, End).
func (w PhaseWindow) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Duration returns End - Start.
func (w PhaseWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Empty reports whether the window has no extent.
func (w PhaseWindow) Empty() bool {
	return !w.End.After(w.Start)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
