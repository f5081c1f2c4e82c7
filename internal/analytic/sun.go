package analytic

import (
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/solar"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

// EarthHelio returns the heliocentric position of the Earth's center in
// AU, equatorial J2000, with velocity in AU/day. It is the negated
// geocentric solar position from the closed-form solar theory.
func EarthHelio(jdTT float64) (pos, vel astro.Vec3) {
	pos = earthAt(jdTT)
	p0 := earthAt(jdTT - velocityStep)
	p1 := earthAt(jdTT + velocityStep)
	vel = p1.Sub(p0).Scale(1 / (2 * velocityStep))
	return pos, vel
}

func earthAt(jdTT float64) astro.Vec3 {
	t := base.J2000Century(jdTT)
	lon, _ := solar.True(t)
	r := solar.Radius(t)

	// Geocentric Sun, ecliptic and mean equinox of date.
	sun := astro.Polar{Lon: lon.Rad(), Lat: 0, R: r}.Vec()
	eq := astro.EclipticToEquatorial(sun, astro.MeanObliquity(jdTT))
	j2000 := astro.PrecessionMatrix(jdTT).Transpose().MulVec(eq)
	return j2000.Scale(-1)
}
