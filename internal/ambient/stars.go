package ambient

import (
	"math"
	"math/rand"
	"time"
)

// StarFieldConfig controls the star field.
type StarFieldConfig struct {
	Count       int
	Width       float64 // 0 = scene width
	SpawnHeight float64 // stars live in y ∈ [0, SpawnHeight); 0 = 2/3 of scene height

	// RevealInterval is the number of ticks between revealing or hiding
	// one more star. 0 reveals the whole field at once.
	RevealInterval int

	TwinkleChance float64 // per star per tick
	TwinkleDepth  float64 // max alpha drop below baseline

	ShootingChance float64 // per tick while stars are visible
	ShootingFrames int     // animation length
	ShootingSpeed  float64 // frames advanced per tick
}

// DefaultStarFieldConfig returns the stock star field settings.
func DefaultStarFieldConfig() StarFieldConfig {
	return StarFieldConfig{
		Count:          60,
		TwinkleChance:  1.0 / 40,
		TwinkleDepth:   0.25,
		ShootingChance: 1.0 / 200,
		ShootingFrames: 5,
		ShootingSpeed:  0.8,
	}
}

// Star is one fixed background star.
type Star struct {
	X, Y     float64
	Baseline float64 // alpha before twinkle and fade
	Alpha    float64 // alpha this tick
	Revealed bool

	twinkle float64
}

// ShootingStar is a short-lived animated streak.
type ShootingStar struct {
	ID    uint64  `json:"id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Age   float64 `json:"age"` // frames played so far
	Alpha float64 `json:"alpha"`
}

// Frame returns the animation frame index to draw.
func (s ShootingStar) Frame() int {
	return int(s.Age)
}

// StarField animates the stars and spawns shooting stars. All randomness
// comes from the injected source.
type StarField struct {
	cfg      StarFieldConfig
	rng      *rand.Rand
	stars    []Star
	order    []int // reveal order
	revealed int
	ticks    int
	shooting []ShootingStar
	nextID   uint64
}

// NewStarField places cfg.Count stars. cfg must have Width and SpawnHeight set.
func NewStarField(cfg StarFieldConfig, rng *rand.Rand) *StarField {
	f := &StarField{cfg: cfg, rng: rng}
	f.Reset()
	return f
}

// Reset re-places every star and drops all shooting stars.
func (f *StarField) Reset() {
	n := f.cfg.Count
	f.stars = make([]Star, n)
	for i := range f.stars {
		y := f.rng.Float64() * f.cfg.SpawnHeight
		f.stars[i] = Star{
			X:        math.Floor(float64(i)/float64(n)*f.cfg.Width) + 1,
			Y:        y,
			Baseline: BaselineAlpha(y, f.cfg.SpawnHeight),
		}
	}
	f.order = f.rng.Perm(n)
	f.revealed = 0
	f.ticks = 0
	f.shooting = nil
}

// Step advances the field by one tick at the given visibility in [0,1].
func (f *StarField) Step(visibility float64) {
	visibility = clamp(visibility, 0, 1)
	f.ticks++
	f.stepReveal(visibility)

	for i := range f.stars {
		s := &f.stars[i]
		if f.rng.Float64() < f.cfg.TwinkleChance {
			s.twinkle = f.rng.Float64() * f.cfg.TwinkleDepth
		}
		if !s.Revealed {
			s.Alpha = 0
			continue
		}
		s.Alpha = math.Max(0, s.Baseline-s.twinkle) * visibility
	}

	f.stepShooting(visibility)
}

func (f *StarField) stepReveal(visibility float64) {
	target := int(math.Round(visibility * float64(len(f.stars))))
	if visibility > 0 && target == 0 && len(f.stars) > 0 {
		target = 1
	}

	switch {
	case f.cfg.RevealInterval <= 0:
		f.revealed = target
	case f.ticks%f.cfg.RevealInterval != 0:
	case f.revealed < target:
		f.revealed++
	case f.revealed > target:
		f.revealed--
	}

	for k, idx := range f.order {
		f.stars[idx].Revealed = k < f.revealed
	}
}

func (f *StarField) stepShooting(visibility float64) {
	live := f.shooting[:0]
	for _, s := range f.shooting {
		s.Age += f.cfg.ShootingSpeed
		if s.Frame() >= f.cfg.ShootingFrames {
			continue
		}
		live = append(live, s)
	}
	f.shooting = live

	if visibility <= 0 || f.rng.Float64() >= f.cfg.ShootingChance {
		return
	}
	y := f.rng.Float64() * f.cfg.SpawnHeight
	f.nextID++
	f.shooting = append(f.shooting, ShootingStar{
		ID:    f.nextID,
		X:     f.rng.Float64() * f.cfg.Width,
		Y:     y,
		Alpha: BaselineAlpha(y, f.cfg.SpawnHeight) * visibility,
	})
}

// Stars returns a copy of the current stars.
func (f *StarField) Stars() []Star {
	out := make([]Star, len(f.stars))
	copy(out, f.stars)
	return out
}

// ShootingStars returns a copy of the live shooting stars.
func (f *StarField) ShootingStars() []ShootingStar {
	if len(f.shooting) == 0 {
		return nil
	}
	out := make([]ShootingStar, len(f.shooting))
	copy(out, f.shooting)
	return out
}

// Revealed returns how many stars are currently revealed.
func (f *StarField) Revealed() int {
	return f.revealed
}

// BaselineAlpha is the resting alpha of a star at height y: 1 at the top of
// the scene falling linearly to 0 at spawnHeight.
func BaselineAlpha(y, spawnHeight float64) float64 {
	if spawnHeight <= 0 {
		return 0
	}
	return (spawnHeight - y) / spawnHeight
}

// StarVisibility returns the star fade factor for the active window:
// fading in over the transition from sunset into night, fully visible
// during night, and fading out over the transition from night into
// sunrise. It is 0 during sunrise and day.
func StarVisibility(aw ActiveWindow, now time.Time, fraction float64) float64 {
	p := TransitionProgress(aw.Start, aw.End, now, fraction)
	switch aw.Current.Phase {
	case PhaseSunset:
		if aw.Next.Phase == PhaseNight {
			return p
		}
		return 0
	case PhaseNight:
		if aw.Next.Phase == PhaseNight {
			return 1
		}
		return 1 - p
	default:
		return 0
	}
}
