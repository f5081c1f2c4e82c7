package analytic

import (
	"github.com/soniakeys/meeus/v3/moonposition"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

const auKm = 1.495978707e8

// MoonGeo returns the geocentric position of the Moon in AU, equatorial
// J2000, with velocity in AU/day, from the abridged ELP lunar theory.
func MoonGeo(jdTT float64) (pos, vel astro.Vec3) {
	pos = moonAt(jdTT)
	p0 := moonAt(jdTT - velocityStep)
	p1 := moonAt(jdTT + velocityStep)
	vel = p1.Sub(p0).Scale(1 / (2 * velocityStep))
	return pos, vel
}

func moonAt(jdTT float64) astro.Vec3 {
	lon, lat, distKm := moonposition.Position(jdTT)
	v := astro.Polar{Lon: lon.Rad(), Lat: lat.Rad(), R: distKm / auKm}.Vec()
	eq := astro.EclipticToEquatorial(v, astro.MeanObliquity(jdTT))
	return astro.PrecessionMatrix(jdTT).Transpose().MulVec(eq)
}
