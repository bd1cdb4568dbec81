package ambient

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/litescript/ls-ambient/internal/astro"
	"github.com/litescript/ls-ambient/internal/ephem"
	"github.com/litescript/ls-ambient/internal/logging"
)

// State is the environmental state of the scene at one instant. It is a
// value; slices are copies owned by the receiver.
type State struct {
	Time     time.Time
	Location Location
	Source   string

	Phase       Phase
	NextPhase   Phase
	WindowStart time.Time
	WindowEnd   time.Time
	Progress    float64 // blend progress toward NextPhase

	Top        RGB
	Bottom     RGB
	Brightness float64

	Sun       Body
	Moon      Body
	MoonPhase int // 0..7, 0 = new moon
	MoonAlpha float64

	StarVisibility float64
	Stars          []Star
	ShootingStars  []ShootingStar

	// Degenerate is set when some of today's solar events do not occur
	// and the windows were settled by substitution.
	Degenerate bool
}

// Valid reports whether every numeric output is finite.
func (s State) Valid() bool {
	for _, v := range []float64{
		s.Progress, s.Brightness, s.MoonAlpha, s.StarVisibility,
		s.Sun.X, s.Sun.Y, s.Moon.X, s.Moon.Y,
	} {
		if !isFinite(v) {
			return false
		}
	}
	if !s.Top.finite() || !s.Bottom.finite() {
		return false
	}
	for _, st := range s.Stars {
		if !isFinite(st.Alpha) {
			return false
		}
	}
	return true
}

// Engine owns the cached windows, the star field and the last valid state.
// It is advanced by Tick and must be driven from a single goroutine.
type Engine struct {
	src   ephem.Source
	cfg   Config
	scene Scene
	stars *StarField
	log   *logging.Logger

	loc     Location
	hasLoc  bool
	days    *solarDays
	windows [NumPhases]PhaseWindow

	last    State
	hasLast bool
}

// NewEngine creates an engine. rng drives twinkle and shooting stars; a nil
// rng is seeded from the clock. A nil logger discards output.
func NewEngine(src ephem.Source, cfg Config, rng *rand.Rand, log *logging.Logger) *Engine {
	cfg = cfg.withDefaults()
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Engine{
		src:   src,
		cfg:   cfg,
		scene: Scene{Width: cfg.Width, SeaLevel: cfg.SeaLevel, TopMargin: cfg.TopMargin},
		stars: NewStarField(cfg.Stars, rng),
		log:   log.With("engine"),
	}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Tick computes the state at now for loc. On failure it returns the last
// valid state (zero before the first success) together with the error.
//
// A location different from the previous tick discards cached windows and
// re-places the stars.
func (e *Engine) Tick(now time.Time, loc Location) (State, error) {
	if err := loc.Validate(); err != nil {
		return e.last, err
	}
	now = now.UTC()

	if !e.hasLoc || loc != e.loc {
		if e.hasLoc {
			e.log.Debug("location changed %s -> %s, dropping cached windows", e.loc, loc)
			e.stars.Reset()
		}
		e.loc, e.hasLoc = loc, true
		e.days = nil
	}

	if e.days == nil || !e.days.covers(now) {
		days, err := resolveDays(e.src, now, loc.Observer())
		if err != nil {
			e.log.Error("resolve solar days at %s: %v", loc, err)
			return e.last, err
		}
		e.days = days
		e.log.Debug("solar day %s..%s at %s (%s)", days.from.Format(time.RFC3339), days.to.Format(time.RFC3339), loc, e.src.Name())
		if days.degenerate {
			e.log.Warn("degenerate solar day at %s, noon altitude %.2f rad", loc, days.noonAltitude)
		}
	}

	e.windows = e.days.windows(now, e.cfg.Palette)
	aw, err := FindActiveWindow(now, e.windows[:])
	if err != nil {
		e.log.Error("tick %s: %v", now.Format(time.RFC3339), err)
		return e.last, err
	}

	st := e.compute(now, aw)
	if !st.Valid() {
		err := fmt.Errorf("%w at %s", ErrInvalidState, now.Format(time.RFC3339))
		e.log.Error("tick: %v", err)
		return e.last, err
	}

	// Only a validated tick advances the star field.
	e.stars.Step(st.StarVisibility)
	st.Stars = e.stars.Stars()
	st.ShootingStars = e.stars.ShootingStars()

	e.last, e.hasLast = st, true
	return st, nil
}

func (e *Engine) compute(now time.Time, aw ActiveWindow) State {
	obs := e.loc.Observer()
	frac := e.cfg.TransitionFraction
	blend := Interpolate(aw.Start, aw.End, now, aw.Current.PhaseStyle, aw.Next.PhaseStyle, frac)

	sunPos := e.src.SunPosition(now, obs)
	sun := e.scene.body(sunPos.Altitude, sunPos.Azimuth, e.days.sunriseAzimuth, e.days.noonAltitude)

	moonPos, ok := e.src.MoonPosition(now, obs)
	if !ok {
		moonPos.Altitude, moonPos.Azimuth = AntipodalPosition(sunPos.Altitude, sunPos.Azimuth, e.days.sunriseAzimuth)
	}
	moon := e.scene.body(moonPos.Altitude, moonPos.Azimuth, e.days.sunriseAzimuth, moonScale(e.days.noonAltitude, moonPos.Altitude))

	vis := StarVisibility(aw, now, frac)

	return State{
		Time:           now,
		Location:       e.loc,
		Source:         e.src.Name(),
		Phase:          aw.Current.Phase,
		NextPhase:      aw.Next.Phase,
		WindowStart:    aw.Start,
		WindowEnd:      aw.End,
		Progress:       blend.Progress,
		Top:            blend.Top,
		Bottom:         blend.Bottom,
		Brightness:     blend.Brightness,
		Sun:            sun,
		Moon:           moon,
		MoonPhase:      astro.MoonPhaseIndexAt(now, e.loc.Longitude),
		MoonAlpha:      clamp(BaselineAlpha(moon.Y, e.cfg.Stars.SpawnHeight), 0, 1),
		StarVisibility: vis,
		Degenerate:     e.days.degenerate,
	}
}

// moonScale is the altitude mapped to the top margin for the moon. The moon
// can stand higher than the sun does at noon, so a risen moon is scaled by
// whichever is higher and stays between sea level and the top margin.
func moonScale(noonAltitude, moonAltitude float64) float64 {
	if !(noonAltitude > 0) {
		noonAltitude = math.Pi / 2
	}
	return math.Max(noonAltitude, math.Abs(moonAltitude))
}

// Last returns the last valid state and whether there is one.
func (e *Engine) Last() (State, bool) {
	return e.last, e.hasLast
}

// Windows returns the phase windows used by the last tick.
func (e *Engine) Windows() []PhaseWindow {
	out := make([]PhaseWindow, len(e.windows))
	copy(out, e.windows[:])
	return out
}
