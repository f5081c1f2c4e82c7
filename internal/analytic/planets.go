// Package analytic computes low-precision body positions from closed-form
// series and mean orbital elements. It is the fallback when no ephemeris
// file covers the requested body and date, good to roughly an arcminute
// for the planets over 1800-2050.
package analytic

import (
	"fmt"
	"math"

	"github.com/soniakeys/meeus/v3/base"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

// Planet indexes the mean-element table.
type Planet int

const (
	Mercury Planet = iota
	Venus
	EarthMoonBary
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	numPlanets
)

// elements holds mean Keplerian elements at J2000 and their rates per
// Julian century, heliocentric, referred to the mean ecliptic and
// equinox of J2000. Angles in degrees, semi-major axis in AU.
type elements struct {
	a, aDot   float64 // semi-major axis
	e, eDot   float64 // eccentricity
	i, iDot   float64 // inclination
	l, lDot   float64 // mean longitude
	lp, lpDot float64 // longitude of perihelion
	om, omDot float64 // longitude of ascending node
}

// Mean elements fit for 1800-2050 (JPL approximate-position tables).
var meanElements = [numPlanets]elements{
	Mercury:       {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749, 252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	Venus:         {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890, 181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	EarthMoonBary: {1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668, 100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0, 0},
	Mars:          {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131, -4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	Jupiter:       {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714, 34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	Saturn:        {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609, 49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	Uranus:        {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939, 313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	Neptune:       {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372, -55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	Pluto:         {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818, 238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

const deg = math.Pi / 180

// velocityStep is the half step, in days, for finite-difference
// velocities of the analytic bodies.
const velocityStep = 0.05

// PlanetHelio returns the heliocentric position of p in AU, equatorial
// J2000, and its velocity in AU/day.
func PlanetHelio(p Planet, jdTT float64) (pos, vel astro.Vec3, err error) {
	if p < 0 || p >= numPlanets {
		return astro.Vec3{}, astro.Vec3{}, fmt.Errorf("analytic: no mean elements for planet index %d", p)
	}
	pos = planetAt(p, jdTT)
	p0 := planetAt(p, jdTT-velocityStep)
	p1 := planetAt(p, jdTT+velocityStep)
	vel = p1.Sub(p0).Scale(1 / (2 * velocityStep))
	return pos, vel, nil
}

func planetAt(p Planet, jdTT float64) astro.Vec3 {
	t := base.J2000Century(jdTT)
	el := meanElements[p]

	a := el.a + el.aDot*t
	e := el.e + el.eDot*t
	i := (el.i + el.iDot*t) * deg
	l := (el.l + el.lDot*t) * deg
	lp := (el.lp + el.lpDot*t) * deg
	om := (el.om + el.omDot*t) * deg

	m := astro.NormalizeRad(l - lp)
	w := lp - om

	ea := solveKepler(m, e)
	sinE, cosE := math.Sin(ea), math.Cos(ea)
	// Position in the orbital plane, x toward perihelion.
	xp := a * (cosE - e)
	yp := a * math.Sqrt(1-e*e) * sinE

	// Rotate by argument of perihelion, inclination and node into
	// the ecliptic J2000 frame.
	v := astro.RotZ(-om).MulVec(astro.RotX(-i).MulVec(astro.RotZ(-w).MulVec(astro.Vec3{X: xp, Y: yp})))
	return astro.EclipticToEquatorial(v, astro.Eps2000)
}

// solveKepler finds the eccentric anomaly for mean anomaly m (radians)
// and eccentricity e by Newton iteration.
func solveKepler(m, e float64) float64 {
	ea := m + e*math.Sin(m)
	for iter := 0; iter < 30; iter++ {
		d := (ea - e*math.Sin(ea) - m) / (1 - e*math.Cos(ea))
		ea -= d
		if math.Abs(d) < 1e-13 {
			break
		}
	}
	return ea
}
