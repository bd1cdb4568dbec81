package astro

import (
	"math"
	"time"
)

// siderealRate is the Earth's rotation relative to the stars in degrees per day.
const siderealRate = 360.98564736629

// SunPosition calculates the apparent equatorial coordinates of the Sun.
// Uses a simplified solar ephemeris based on the Astronomical Almanac.
// Accuracy: ~0.01 degrees for RA, ~0.001 degrees for Dec.
func SunPosition(t time.Time) (raDeg, decDeg float64) {
	jd := julianDate(t)

	// Julian centuries from J2000.0
	T := (jd - 2451545.0) / 36525.0

	// Mean longitude of the Sun (degrees)
	L0 := normalizeAngle360(280.46646 + 36000.76983*T + 0.0003032*T*T)

	// Mean anomaly of the Sun (degrees)
	M := normalizeAngle360(357.52911 + 35999.05029*T - 0.0001537*T*T)
	Mrad := degToRad(M)

	// Equation of center (degrees)
	C := (1.914602 - 0.004817*T - 0.000014*T*T) * math.Sin(Mrad)
	C += (0.019993 - 0.000101*T) * math.Sin(2*Mrad)
	C += 0.000289 * math.Sin(3*Mrad)

	sunLon := L0 + C

	// Apparent longitude (aberration and nutation)
	omega := 125.04 - 1934.136*T
	sunLonApp := sunLon - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity of the ecliptic, corrected
	eps0 := 23.439291 - 0.0130042*T - 0.00000016*T*T + 0.000000504*T*T*T
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	sunLonRad := degToRad(sunLonApp)
	epsRad := degToRad(eps)

	ra := math.Atan2(math.Cos(epsRad)*math.Sin(sunLonRad), math.Cos(sunLonRad))
	raDeg = normalizeAngle360(radToDeg(ra))

	dec := math.Asin(math.Sin(epsRad) * math.Sin(sunLonRad))
	decDeg = radToDeg(dec)

	return raDeg, decDeg
}

// SunHorizontal returns the Sun's full sky coordinate for an observer.
func SunHorizontal(t time.Time, obs Observer) SkyCoord {
	ra, dec := SunPosition(t)
	return EquatorialToHorizontal(SkyCoord{RAdeg: ra, DecDeg: dec}, obs, t)
}

// SunElevation returns the Sun's geometric elevation in degrees.
func SunElevation(obs Observer, t time.Time) float64 {
	return SunHorizontal(t, obs).ElDeg
}

// SolarTransit returns the instant the Sun crosses the observer's meridian on
// the solar date containing t (see SolarDate).
//
// Starts from mean noon and corrects by the residual hour angle; three
// iterations converge well below a second.
func SolarTransit(t time.Time, obs Observer) time.Time {
	y, m, d := SolarDate(t, obs.LonDeg)
	transit := time.Date(y, m, d, 12, 0, 0, 0, time.UTC).
		Add(-time.Duration(obs.LonDeg / 15 * float64(time.Hour)))

	for i := 0; i < 3; i++ {
		ra, _ := SunPosition(transit)
		ha := HourAngle(ra, obs, transit)
		transit = transit.Add(-time.Duration(ha / siderealRate * 24 * float64(time.Hour)))
	}
	return transit
}

// normalizeAngle360 normalizes an angle to 0-360 degrees.
func normalizeAngle360(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// normalizeAngle180 wraps an angle to (-180, 180].
func normalizeAngle180(a float64) float64 {
	a = normalizeAngle360(a)
	if a > 180 {
		a -= 360
	}
	return a
}
