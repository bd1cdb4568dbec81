package ambient

// Scene geometry in logical pixels.
const (
	SceneWidth  = 256
	SceneHeight = 144
	SeaLevel    = 120
	TopMargin   = 10
)

// TransitionFraction is the point within a window, as a fraction of its
// duration, after which the sky starts blending toward the next window.
const TransitionFraction = 0.98

// Config holds the engine configuration.
type Config struct {
	Width              float64
	Height             float64
	SeaLevel           float64
	TopMargin          float64
	TransitionFraction float64
	Palette            Palette
	Stars              StarFieldConfig
}

// DefaultConfig returns the reference scene configuration.
func DefaultConfig() Config {
	return Config{
		Width:              SceneWidth,
		Height:             SceneHeight,
		SeaLevel:           SeaLevel,
		TopMargin:          TopMargin,
		TransitionFraction: TransitionFraction,
		Palette:            DefaultPalette(),
		Stars:              DefaultStarFieldConfig(),
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Width <= 0 {
		c.Width = d.Width
	}
	if c.Height <= 0 {
		c.Height = d.Height
	}
	if c.SeaLevel <= 0 {
		c.SeaLevel = d.SeaLevel
	}
	if c.TopMargin <= 0 {
		c.TopMargin = d.TopMargin
	}
	if c.TransitionFraction <= 0 || c.TransitionFraction >= 1 {
		c.TransitionFraction = d.TransitionFraction
	}
	if c.Palette == (Palette{}) {
		c.Palette = d.Palette
	}
	if c.Stars.Count <= 0 {
		c.Stars.Count = d.Stars.Count
	}
	if c.Stars.SpawnHeight <= 0 {
		c.Stars.SpawnHeight = c.Height * 2 / 3
	}
	if c.Stars.Width <= 0 {
		c.Stars.Width = c.Width
	}
	if c.Stars.TwinkleChance <= 0 {
		c.Stars.TwinkleChance = d.Stars.TwinkleChance
	}
	if c.Stars.TwinkleDepth <= 0 {
		c.Stars.TwinkleDepth = d.Stars.TwinkleDepth
	}
	if c.Stars.ShootingChance <= 0 {
		c.Stars.ShootingChance = d.Stars.ShootingChance
	}
	if c.Stars.ShootingFrames <= 0 {
		c.Stars.ShootingFrames = d.Stars.ShootingFrames
	}
	if c.Stars.ShootingSpeed <= 0 {
		c.Stars.ShootingSpeed = d.Stars.ShootingSpeed
	}
	return c
}
