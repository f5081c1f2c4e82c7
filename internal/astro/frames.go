package astro

import (
	"math"

	"github.com/soniakeys/meeus/v3/nutation"
)

// Arcsec is one second of arc in radians.
const Arcsec = math.Pi / 180 / 3600

// Eps2000 is the mean obliquity of the ecliptic at J2000 in radians.
const Eps2000 = 23.43929111111111 * math.Pi / 180

// MeanObliquity returns the mean obliquity of the ecliptic in radians for a
// Julian day (TT), using the Laskar series.
func MeanObliquity(jd float64) float64 {
	return nutation.MeanObliquityLaskar(jd).Rad()
}

// Nutation holds the nutation angles for one instant: Δψ in longitude and
// Δε in obliquity, radians.
type Nutation struct {
	Dpsi float64
	Deps float64
}

// NutationAngles computes the nutation angles for a Julian day (TT).
func NutationAngles(jd float64) Nutation {
	dpsi, deps := nutation.Nutation(jd)
	return Nutation{Dpsi: dpsi.Rad(), Deps: deps.Rad()}
}

// Matrix returns the rotation from the mean equator and equinox of date to
// the true equator and equinox of date, for mean obliquity eps.
func (n Nutation) Matrix(eps float64) Mat3 {
	return RotX(-(eps + n.Deps)).Mul(RotZ(-n.Dpsi)).Mul(RotX(eps))
}

// PrecessionMatrix returns the rotation taking mean equatorial J2000
// coordinates to the mean equator and equinox of jd (TT), using the IAU
// 1976 (Lieske) angles.
func PrecessionMatrix(jd float64) Mat3 {
	T := JulianCentury(jd)
	zeta := (2306.2181 + (0.30188+0.017998*T)*T) * T * Arcsec
	z := (2306.2181 + (1.09468+0.018203*T)*T) * T * Arcsec
	theta := (2004.3109 - (0.42665+0.041833*T)*T) * T * Arcsec
	return RotZ(-z).Mul(RotY(theta)).Mul(RotZ(-zeta))
}

// Frame-bias angles: the fixed offset between the ICRS axes and the J2000
// dynamical frame (IERS Conventions), in radians.
var (
	biasEta    = -6.8192e-3 * Arcsec
	biasXi     = -16.617e-3 * Arcsec
	biasDalpha = -14.6e-3 * Arcsec
)

// BiasMatrix returns the rotation from ICRS to the J2000 dynamical frame.
func BiasMatrix() Mat3 {
	return RotX(-biasEta).Mul(RotY(biasXi)).Mul(RotZ(biasDalpha))
}

// EclipticToEquatorial rotates an ecliptic vector to the equator for
// obliquity eps (radians).
func EclipticToEquatorial(ecl Vec3, eps float64) Vec3 {
	return RotX(-eps).MulVec(ecl)
}

// EquatorialToEcliptic rotates an equatorial vector to the ecliptic for
// obliquity eps.
func EquatorialToEcliptic(eq Vec3, eps float64) Vec3 {
	return RotX(eps).MulVec(eq)
}
