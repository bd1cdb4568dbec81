package ambient

import "math"

// AzimuthMargin keeps the sun off the screen edges at sunrise, in radians.
const AzimuthMargin = 0.1

// Body is a celestial body placed in the scene.
type Body struct {
	X, Y     float64 // logical pixels
	Altitude float64 // radians
	Azimuth  float64 // radians, from south toward west
	Visible  bool    // above the horizon
}

// Scene maps horizontal coordinates into the logical scene.
type Scene struct {
	Width     float64
	SeaLevel  float64
	TopMargin float64
}

// AzimuthOffset returns half the horizontal period for a given sunrise
// azimuth.
func AzimuthOffset(sunriseAzimuth float64) float64 {
	return math.Abs(sunriseAzimuth) + AzimuthMargin
}

// MapSun converts an altitude/azimuth pair into scene coordinates.
//
// x sweeps the scene width once per 2*offset of azimuth, starting at the
// left edge at -offset. y is sea level at the horizon and TopMargin at the
// day's noon altitude; negative altitudes land below sea level.
func (s Scene) MapSun(altitude, azimuth, sunriseAzimuth, noonAltitude float64) (x, y float64) {
	offset := AzimuthOffset(sunriseAzimuth)
	period := 2 * offset
	x = s.Width * positiveMod(azimuth+offset, period) / period

	if !(noonAltitude > 0) {
		noonAltitude = math.Pi / 2
	}
	y = s.SeaLevel - (s.SeaLevel-s.TopMargin)*(altitude/noonAltitude)
	return x, y
}

// MapSun is Scene.MapSun for the reference scene.
func MapSun(altitude, azimuth, sunriseAzimuth, noonAltitude, width, seaLevel float64) (x, y float64) {
	return Scene{Width: width, SeaLevel: seaLevel, TopMargin: TopMargin}.MapSun(altitude, azimuth, sunriseAzimuth, noonAltitude)
}

// AntipodalPosition places the moon opposite the sun in the mapping cycle,
// for sources without lunar ephemeris.
func AntipodalPosition(sunAltitude, sunAzimuth, sunriseAzimuth float64) (altitude, azimuth float64) {
	return -sunAltitude, sunAzimuth + AzimuthOffset(sunriseAzimuth)
}

func (s Scene) body(altitude, azimuth, sunriseAzimuth, noonAltitude float64) Body {
	x, y := s.MapSun(altitude, azimuth, sunriseAzimuth, noonAltitude)
	return Body{X: x, Y: y, Altitude: altitude, Azimuth: azimuth, Visible: altitude >= 0}
}

func positiveMod(a, m float64) float64 {
	r := math.Mod(a, m)
	if r < 0 {
		r += m
	}
	if r >= m {
		r = 0
	}
	return r
}
