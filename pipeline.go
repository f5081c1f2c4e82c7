package ephemeris

import (
	"math"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

// Projection holds a computed position in all four representations at
// once. Polar components are longitude (or right ascension), latitude
// (or declination), distance, and their rates; angles are radians,
// distances AU, rates per day. Rates are zero unless velocity was
// requested.
type Projection struct {
	EclipticPolar   [6]float64
	EclipticXYZ     [6]float64
	EquatorialPolar [6]float64
	EquatorialXYZ   [6]float64
}

// Result is the outcome of one position computation. Value is the
// representation selected by the request flags, with angles in degrees
// unless radians were requested; All carries every representation in
// canonical units; Warnings is the tier-fallback trail, empty when the
// first tier served everything.
type Result struct {
	Value    [6]float64
	All      Projection
	Tier     Tier
	Warnings []string
}

// lightTimeIterations bounds the light-time fixed point; two rounds
// reach sub-microarcsecond convergence for solar-system distances.
const lightTimeIterations = 2

// fdStep is the half step, in days, for finite-difference corrections
// to velocity through deflection and aberration.
const fdStep = 0.05

// apparent runs the full correction chain for body at tjd (TT) and
// assembles the result. Flags must be sanitized.
func (c *Context) apparent(tjd float64, body Body, flags Flag) (Result, error) {
	wantSpeed := flags&FlagSpeed != 0
	// Velocity is also needed internally for light-time extrapolation
	// and the finite-difference corrections.
	speed := wantSpeed || flags&FlagTruePosition == 0

	target, err := c.resolveBary(tjd, body, speed)
	if err != nil {
		return Result{}, err
	}

	obsPos, obsVel, obsWarn, err := c.observerState(tjd, flags, speed)
	if err != nil {
		return Result{}, err
	}

	u := target.pos.Sub(obsPos)
	du := target.vel.Sub(obsVel)

	// Light time: back-date the body along its barycentric path until
	// the travel time converges. Binary tiers re-resolve at the
	// corrected time; the analytic tier extrapolates linearly.
	if flags&FlagTruePosition == 0 {
		cDay := c.clightAUDay()
		dt := u.Norm() / cDay
		for i := 0; i < lightTimeIterations; i++ {
			var tp, tv astro.Vec3
			if target.tier == TierAnalytic {
				tp = target.pos.Sub(target.vel.Scale(dt))
				tv = target.vel
			} else {
				back, err := c.resolveBary(tjd-dt, body, speed)
				if err != nil {
					return Result{}, err
				}
				tp, tv = back.pos, back.vel
			}
			u = tp.Sub(obsPos)
			du = tv.Sub(obsVel)
			dt = u.Norm() / cDay
		}
	}

	centered := flags&(FlagHeliocentric|FlagBarycentric) != 0
	if flags&FlagNoDeflection == 0 && body != Sun && !centered {
		sun, err := c.resolveBary(tjd, Sun, speed)
		if err != nil {
			return Result{}, err
		}
		u, du = c.deflect(u, du, obsPos.Sub(sun.pos), obsVel.Sub(sun.vel), wantSpeed)
	}
	if flags&FlagNoAberration == 0 && !centered {
		u, du = c.aberrate(u, du, obsVel, wantSpeed)
	}

	// Frame chain: stored vectors are ICRS. Rotate to the dynamical
	// J2000 frame unless ICRS output is wanted, then to the equinox of
	// date, then through nutation to the true equinox.
	epsUse := astro.Eps2000
	if flags&FlagICRS == 0 {
		b := astro.BiasMatrix()
		u = b.MulVec(u)
		du = b.MulVec(du)
	}
	if flags&FlagJ2000 == 0 {
		p := astro.PrecessionMatrix(tjd)
		u = p.MulVec(u)
		du = p.MulVec(du)
		eps, nut := c.frameAngles(tjd)
		epsUse = eps
		if flags&FlagNoNutation == 0 {
			n := nut.Matrix(eps)
			u = n.MulVec(u)
			du = n.MulVec(du)
			epsUse = eps + nut.Deps
		}
	}

	if !wantSpeed {
		du = astro.Vec3{}
	}

	proj := c.project(u, du, epsUse)
	if flags&FlagSidereal != 0 {
		if err := c.applySidereal(&proj, tjd, u, du, flags); err != nil {
			return Result{}, err
		}
	}

	res := Result{
		All:      proj,
		Tier:     target.tier,
		Warnings: mergeWarnings(target.warnings, obsWarn),
	}
	res.Value = selectValue(proj, flags)
	return res, nil
}

// observerState returns the barycentric position and velocity of the
// requested center: the barycenter itself, the Sun, the Earth's center
// or the topocentric site.
func (c *Context) observerState(tjd float64, flags Flag, speed bool) (pos, vel astro.Vec3, warn []string, err error) {
	switch {
	case flags&FlagBarycentric != 0:
		return astro.Vec3{}, astro.Vec3{}, nil, nil
	case flags&FlagHeliocentric != 0:
		sun, err := c.resolveBary(tjd, Sun, speed)
		if err != nil {
			return astro.Vec3{}, astro.Vec3{}, nil, err
		}
		return sun.pos, sun.vel, sun.warnings, nil
	}
	earth, err := c.resolveBary(tjd, Earth, speed)
	if err != nil {
		return astro.Vec3{}, astro.Vec3{}, nil, err
	}
	pos, vel, warn = earth.pos, earth.vel, earth.warnings
	if flags&FlagTopocentric != 0 {
		if c.obs == nil {
			return astro.Vec3{}, astro.Vec3{}, nil, invalidArg("topocentric request without an observer site")
		}
		jdUT := tjd - astro.DeltaTSeconds(tjd)/86400
		sp, sv := c.obs.GeocentricPosVel(jdUT, tjd, c.auM/1000)
		pos = pos.Add(sp)
		vel = vel.Add(sv)
	}
	return pos, vel, warn, nil
}

// deflect bends the light path in the Sun's gravitational field. e and
// de are the observer's heliocentric position and velocity; u is the
// observer-to-body vector after light time. Near the solar disk the
// deflecting mass is reduced by the tabulated enclosed-mass fraction of
// the grazed layer.
func (c *Context) deflect(u, du, e, de astro.Vec3, speed bool) (astro.Vec3, astro.Vec3) {
	out := c.deflectPoint(u, e)
	if speed {
		u2 := u.Sub(du.Scale(fdStep))
		e2 := e.Sub(de.Scale(fdStep))
		out2 := c.deflectPoint(u2, e2)
		du = out.Sub(out2).Scale(1 / fdStep)
	}
	return out, du
}

func (c *Context) deflectPoint(u, e astro.Vec3) astro.Vec3 {
	ru := u.Norm()
	re := e.Norm()
	if ru == 0 || re == 0 {
		return u
	}
	// Body position relative to the Sun along the received ray.
	q := u.Add(e)
	rq := q.Norm()
	if rq == 0 {
		return u
	}
	un, qn, en := u.Scale(1/ru), q.Scale(1/rq), e.Scale(1/re)
	uq := un.Dot(qn)
	ue := un.Dot(en)
	qe := qn.Dot(en)

	meff := 1.0
	if sina := math.Sqrt(1 - ue*ue); sina < c.sunRadAU/re {
		meff = enclosedMass(sina * re / c.sunRadAU)
	}
	g1 := 2 * c.helGrav * meff / (c.clightMS * c.clightMS) / c.auM / re
	g2 := 1 + qe
	return un.Add(en.Scale(g1 / g2 * uq).Sub(qn.Scale(g1 / g2 * ue))).Scale(ru)
}

// enclosedMass interpolates the fraction of solar mass whose deflection
// acts on a photon grazing the Sun at radius fraction r, from a standard
// solar density profile.
func enclosedMass(r float64) float64 {
	if r <= 0 {
		return 0
	}
	if r >= 1 {
		return 1
	}
	i := int(r / 0.05)
	f := r/0.05 - float64(i)
	return massTable[i] + f*(massTable[i+1]-massTable[i])
}

// massTable is the enclosed solar mass fraction at radius fractions
// 0.00, 0.05, ..., 1.00.
var massTable = [21]float64{
	0, 0.006, 0.042, 0.120, 0.220, 0.340, 0.460, 0.570, 0.670, 0.750,
	0.820, 0.870, 0.910, 0.940, 0.960, 0.975, 0.985, 0.992, 0.996,
	0.999, 1,
}

// aberrate applies annual aberration with the relativistic velocity
// addition formula. obsVel is in AU/day.
func (c *Context) aberrate(u, du, obsVel astro.Vec3, speed bool) (astro.Vec3, astro.Vec3) {
	out := c.aberratePoint(u, obsVel)
	if speed {
		u2 := u.Sub(du.Scale(fdStep))
		out2 := c.aberratePoint(u2, obsVel)
		du = out.Sub(out2).Scale(1 / fdStep)
	}
	return out, du
}

func (c *Context) aberratePoint(u, obsVel astro.Vec3) astro.Vec3 {
	ru := u.Norm()
	if ru == 0 {
		return u
	}
	// Observer velocity as a fraction of c.
	v := obsVel.Scale(c.auM / 86400 / c.clightMS)
	v2 := v.Dot(v)
	if v2 == 0 {
		return u
	}
	b1 := math.Sqrt(1 - v2)
	f1 := u.Dot(v) / ru
	f2 := 1 + f1/(1+b1)
	return u.Scale(b1).Add(v.Scale(f2 * ru)).Scale(1 / (1 + f1))
}

// project expresses one equatorial vector in all four representations,
// using eps as the obliquity of the target frame.
func (c *Context) project(u, du astro.Vec3, eps float64) Projection {
	var p Projection
	p.EquatorialXYZ = packXYZ(u, du)
	p.EquatorialPolar = toPolarVel(u, du)
	ecl := astro.EquatorialToEcliptic(u, eps)
	decl := astro.EquatorialToEcliptic(du, eps)
	p.EclipticXYZ = packXYZ(ecl, decl)
	p.EclipticPolar = toPolarVel(ecl, decl)
	return p
}

func packXYZ(p, v astro.Vec3) [6]float64 {
	return [6]float64{p.X, p.Y, p.Z, v.X, v.Y, v.Z}
}

// toPolarVel converts a cartesian state to polar coordinates with
// angular rates.
func toPolarVel(p, v astro.Vec3) [6]float64 {
	rxy2 := p.X*p.X + p.Y*p.Y
	rxy := math.Sqrt(rxy2)
	r := p.Norm()
	if r == 0 {
		return [6]float64{}
	}
	lon := astro.NormalizeRad(math.Atan2(p.Y, p.X))
	lat := math.Atan2(p.Z, rxy)

	var dlon, dlat, dr float64
	if v != (astro.Vec3{}) {
		dr = p.Dot(v) / r
		if rxy2 > 0 {
			dlon = (p.X*v.Y - p.Y*v.X) / rxy2
			dlat = (v.Z - dr*p.Z/r) / rxy
		}
	}
	return [6]float64{lon, lat, r, dlon, dlat, dr}
}

// selectValue picks the representation the flags asked for and converts
// angle units.
func selectValue(p Projection, flags Flag) [6]float64 {
	var out [6]float64
	switch {
	case flags&FlagEquatorial != 0 && flags&FlagCartesian != 0:
		out = p.EquatorialXYZ
	case flags&FlagEquatorial != 0:
		out = p.EquatorialPolar
	case flags&FlagCartesian != 0:
		out = p.EclipticXYZ
	default:
		out = p.EclipticPolar
	}
	if flags&FlagCartesian == 0 && flags&FlagRadians == 0 {
		const toDeg = 180 / math.Pi
		out[0] *= toDeg
		out[1] *= toDeg
		out[3] *= toDeg
		out[4] *= toDeg
	}
	return out
}
