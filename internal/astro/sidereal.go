package astro

import "math"

// GMSTDeg calculates Greenwich Mean Sidereal Time in degrees for a Julian
// day of UT, using the IAU 1982 formula.
func GMSTDeg(jdUT float64) float64 {
	T := (jdUT - J2000) / DaysPerCentury

	gmst := 280.46061837 +
		360.98564736629*(jdUT-J2000) +
		0.000387933*T*T -
		T*T*T/38710000.0

	gmst = math.Mod(gmst, 360)
	if gmst < 0 {
		gmst += 360
	}
	return gmst
}

// GASTRad calculates Greenwich Apparent Sidereal Time in radians, applying
// the equation of the equinoxes to GMST.
func GASTRad(jdUT float64, n Nutation, eps float64) float64 {
	gast := GMSTDeg(jdUT)*math.Pi/180 + n.Dpsi*math.Cos(eps)
	gast = math.Mod(gast, 2*math.Pi)
	if gast < 0 {
		gast += 2 * math.Pi
	}
	return gast
}

// NormalizeRad wraps an angle into [0, 2π).
func NormalizeRad(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a
}

// NormalizeDeg wraps an angle into [0, 360).
func NormalizeDeg(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	return a
}
