package analytic

import (
	"math"
	"testing"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

func TestPlanetHelioRanges(t *testing.T) {
	tests := []struct {
		name     string
		p        Planet
		min, max float64 // heliocentric distance bounds in AU
	}{
		{"mercury", Mercury, 0.30, 0.47},
		{"venus", Venus, 0.71, 0.74},
		{"emb", EarthMoonBary, 0.98, 1.02},
		{"mars", Mars, 1.38, 1.67},
		{"jupiter", Jupiter, 4.9, 5.5},
		{"saturn", Saturn, 9.0, 10.1},
		{"uranus", Uranus, 18.3, 20.1},
		{"neptune", Neptune, 29.8, 30.4},
		{"pluto", Pluto, 29.6, 49.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, jd := range []float64{2451545.0, 2440587.5, 2469807.5} {
				pos, vel, err := PlanetHelio(tt.p, jd)
				if err != nil {
					t.Fatalf("PlanetHelio: %v", err)
				}
				r := pos.Norm()
				if r < tt.min || r > tt.max {
					t.Errorf("jd %v: distance %v AU outside [%v, %v]", jd, r, tt.min, tt.max)
				}
				// Speed should be near the circular value sqrt(GM/r),
				// with GM = k^2 in AU^3/day^2.
				circ := 0.01720209895 / math.Sqrt(r)
				v := vel.Norm()
				if v < circ*0.6 || v > circ*1.6 {
					t.Errorf("jd %v: speed %v AU/day, circular %v", jd, v, circ)
				}
			}
		})
	}
}

func TestPlanetHelioBadIndex(t *testing.T) {
	if _, _, err := PlanetHelio(numPlanets, 2451545.0); err == nil {
		t.Fatal("expected error for out-of-range planet index")
	}
}

func TestVelocityMatchesPositionDerivative(t *testing.T) {
	// The finite-difference velocity must predict the position a short
	// step ahead.
	const jd = 2455197.5
	pos, vel, err := PlanetHelio(Mars, jd)
	if err != nil {
		t.Fatal(err)
	}
	const h = 0.25
	ahead, _, err := PlanetHelio(Mars, jd+h)
	if err != nil {
		t.Fatal(err)
	}
	pred := pos.Add(vel.Scale(h))
	if diff := pred.Sub(ahead).Norm(); diff > 1e-6 {
		t.Errorf("linear prediction off by %v AU over %v days", diff, h)
	}
}

func TestEarthHelio(t *testing.T) {
	pos, vel := EarthHelio(2451545.0)
	r := pos.Norm()
	if r < 0.98 || r > 1.02 {
		t.Errorf("Earth heliocentric distance %v AU", r)
	}
	// Orbital speed about 0.0172 AU/day.
	if v := vel.Norm(); v < 0.016 || v > 0.019 {
		t.Errorf("Earth speed %v AU/day", v)
	}
	// Early January: Earth near perihelion, ecliptic longitude around
	// 100 degrees.
	ecl := astro.EquatorialToEcliptic(pos, astro.Eps2000).ToPolar()
	lonDeg := astro.NormalizeDeg(ecl.Lon * 180 / math.Pi)
	if lonDeg < 95 || lonDeg > 105 {
		t.Errorf("Earth ecliptic longitude %v deg, want ~100", lonDeg)
	}
}

func TestMoonGeo(t *testing.T) {
	for _, jd := range []float64{2451545.0, 2448724.5} {
		pos, vel := MoonGeo(jd)
		rKm := pos.Norm() * auKm
		if rKm < 356000 || rKm > 407000 {
			t.Errorf("jd %v: lunar distance %v km", jd, rKm)
		}
		// About 13 degrees of longitude per day translates to roughly
		// 0.00058 AU/day at the mean distance.
		if v := vel.Norm(); v < 4e-4 || v > 8e-4 {
			t.Errorf("jd %v: lunar speed %v AU/day", jd, v)
		}
	}
}

func TestMoonGeoAgainstReference(t *testing.T) {
	// 1992 April 12, 0h TT: geocentric λ = 133.162655 deg,
	// β = -3.229126 deg, Δ = 368409.7 km (standard worked example).
	const jd = 2448724.5
	pos, _ := MoonGeo(jd)

	// Undo the J2000 reduction to compare in the frame of date.
	eq := astro.PrecessionMatrix(jd).MulVec(pos)
	p := astro.EquatorialToEcliptic(eq, astro.MeanObliquity(jd)).ToPolar()

	lonDeg := astro.NormalizeDeg(p.Lon * 180 / math.Pi)
	latDeg := p.Lat * 180 / math.Pi
	if math.Abs(lonDeg-133.162655) > 0.01 {
		t.Errorf("λ = %v deg, want 133.162655", lonDeg)
	}
	if math.Abs(latDeg-(-3.229126)) > 0.01 {
		t.Errorf("β = %v deg, want -3.229126", latDeg)
	}
	if math.Abs(p.R*auKm-368409.7) > 50 {
		t.Errorf("Δ = %v km, want 368409.7", p.R*auKm)
	}
}

func TestLunarPoints(t *testing.T) {
	const jd = 2451545.0
	node, nvel := LunarNode(jd)
	if math.Abs(node.Norm()-nodeDistKm/auKm) > 1e-12 {
		t.Errorf("node distance %v AU, want nominal %v", node.Norm(), nodeDistKm/auKm)
	}
	// The node regresses about 0.053 deg/day; at the nominal distance
	// that is a small but nonzero velocity.
	if nvel.Norm() == 0 {
		t.Error("node velocity is zero")
	}

	// At J2000 the mean node sits near ecliptic longitude 125 deg.
	ecl := astro.EquatorialToEcliptic(astro.PrecessionMatrix(jd).MulVec(node), astro.MeanObliquity(jd)).ToPolar()
	lonDeg := astro.NormalizeDeg(ecl.Lon * 180 / math.Pi)
	if math.Abs(lonDeg-125.04) > 0.1 {
		t.Errorf("mean node longitude %v deg, want ~125.04", lonDeg)
	}
	if math.Abs(ecl.Lat) > 1e-9 {
		t.Errorf("mean node latitude %v rad, want 0", ecl.Lat)
	}

	apo, _ := LunarApogee(jd)
	aecl := astro.EquatorialToEcliptic(astro.PrecessionMatrix(jd).MulVec(apo), astro.MeanObliquity(jd)).ToPolar()
	alon := astro.NormalizeDeg(aecl.Lon * 180 / math.Pi)
	// Mean perigee at J2000 is near 83.35 deg, so the apogee is
	// opposite it.
	if math.Abs(alon-263.35) > 0.1 {
		t.Errorf("mean apogee longitude %v deg, want ~263.35", alon)
	}
}
