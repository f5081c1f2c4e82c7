package analytic

import (
	"math"

	"github.com/soniakeys/meeus/v3/moonposition"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

// Nominal geocentric distances assigned to the lunar points, km.
const (
	nodeDistKm   = 384400
	apogeeDistKm = 405500
)

// LunarNode returns the mean ascending node of the lunar orbit as a
// geocentric position in AU, equatorial J2000, plus its velocity.
// Latitude is zero by construction and the distance is nominal.
func LunarNode(jdTT float64) (pos, vel astro.Vec3) {
	pos = nodeAt(jdTT)
	p0 := nodeAt(jdTT - velocityStep)
	p1 := nodeAt(jdTT + velocityStep)
	vel = p1.Sub(p0).Scale(1 / (2 * velocityStep))
	return pos, vel
}

// LunarApogee returns the mean lunar apogee (the point opposite the
// mean perigee) as a geocentric position in AU, equatorial J2000.
func LunarApogee(jdTT float64) (pos, vel astro.Vec3) {
	pos = apogeeAt(jdTT)
	p0 := apogeeAt(jdTT - velocityStep)
	p1 := apogeeAt(jdTT + velocityStep)
	vel = p1.Sub(p0).Scale(1 / (2 * velocityStep))
	return pos, vel
}

func nodeAt(jdTT float64) astro.Vec3 {
	return pointAt(jdTT, moonposition.Node(jdTT).Rad(), nodeDistKm)
}

func apogeeAt(jdTT float64) astro.Vec3 {
	return pointAt(jdTT, moonposition.Perigee(jdTT).Rad()+math.Pi, apogeeDistKm)
}

func pointAt(jdTT, lonOfDate, distKm float64) astro.Vec3 {
	v := astro.Polar{Lon: lonOfDate, Lat: 0, R: distKm / auKm}.Vec()
	eq := astro.EclipticToEquatorial(v, astro.MeanObliquity(jdTT))
	return astro.PrecessionMatrix(jdTT).Transpose().MulVec(eq)
}
