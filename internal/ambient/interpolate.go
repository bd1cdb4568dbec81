package ambient

import "time"

// Blend is the sky look at one instant.
type Blend struct {
	Top        RGB
	Bottom     RGB
	Brightness float64
	Progress   float64 // 0 outside the trailing transition
}

// TransitionProgress returns how far now is into the trailing transition of
// [start, end). The transition begins at start + fraction*(end-start).
// Before that the result is exactly 0; it approaches 1 as now nears end.
func TransitionProgress(start, end, now time.Time, fraction float64) float64 {
	dur := end.Sub(start)
	if dur <= 0 {
		return 0
	}
	tStart := start.Add(time.Duration(float64(dur) * fraction))
	if now.Before(tStart) {
		return 0
	}
	span := end.Sub(tStart)
	if span <= 0 {
		return 0
	}
	p := float64(now.Sub(tStart)) / float64(span)
	return clamp(p, 0, 1)
}

// Interpolate blends cur toward next across the trailing transition of
// [start, end). Outside the transition it returns cur unchanged.
func Interpolate(start, end, now time.Time, cur, next PhaseStyle, fraction float64) Blend {
	p := TransitionProgress(start, end, now, fraction)
	if p == 0 {
		return Blend{Top: cur.Top, Bottom: cur.Bottom, Brightness: cur.Brightness}
	}
	return Blend{
		Top:        LerpRGB(cur.Top, next.Top, p),
		Bottom:     LerpRGB(cur.Bottom, next.Bottom, p),
		Brightness: lerp(cur.Brightness, next.Brightness, p),
		Progress:   p,
	}
}

// LerpRGB interpolates each channel independently.
func LerpRGB(a, b RGB, t float64) RGB {
	return RGB{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
	}
}

func lerp(a, b, t float64) float64 {
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
