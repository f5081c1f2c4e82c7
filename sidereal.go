package ephemeris

import (
	"fmt"
	"math"

	"github.com/litescript/ls-ephemeris/internal/astro"
)

// SidMode selects how the ayanamsa, the offset between the tropical and
// sidereal zero points of ecliptic longitude, is anchored.
type SidMode int

const (
	SidFaganBradley SidMode = iota
	SidLahiri
	SidDeLuce
	SidRaman
	SidKrishnamurti
	SidJ2000
	// SidUser takes the reference epoch and offset given to
	// SetSiderealMode verbatim.
	SidUser
)

// ParseSidMode resolves a sidereal mode name.
func ParseSidMode(s string) (SidMode, error) {
	switch s {
	case "fagan-bradley", "fagan_bradley", "fagan":
		return SidFaganBradley, nil
	case "lahiri":
		return SidLahiri, nil
	case "deluce", "de-luce":
		return SidDeLuce, nil
	case "raman":
		return SidRaman, nil
	case "krishnamurti", "kp":
		return SidKrishnamurti, nil
	case "j2000":
		return SidJ2000, nil
	}
	return 0, fmt.Errorf("unknown sidereal mode %q", s)
}

// SidOption modifies how sidereal longitudes are measured.
type SidOption uint32

const (
	// SidProjectEclT0 measures longitude on the ecliptic of the
	// reference epoch instead of the ecliptic of date.
	SidProjectEclT0 SidOption = 1 << iota

	// SidProjectInvariable measures longitude on the solar-system
	// invariable plane.
	SidProjectInvariable
)

// sidConfig is the active sidereal anchoring: reference epoch t0 as a
// Julian day and the ayanamsa at t0 in degrees.
type sidConfig struct {
	mode  SidMode
	opts  SidOption
	t0    float64
	ayan0 float64
}

// Reference epochs and offsets for the built-in modes.
var sidModes = map[SidMode]sidConfig{
	SidFaganBradley: {t0: 2433282.5, ayan0: 24.042044444},
	SidLahiri:       {t0: 2435553.5, ayan0: 23.250182778},
	SidDeLuce:       {t0: 2415020.0, ayan0: 26.516666667},
	SidRaman:        {t0: 2415020.0, ayan0: 21.011830556},
	SidKrishnamurti: {t0: 2435553.5, ayan0: 23.235869444},
	SidJ2000:        {t0: astro.J2000, ayan0: 0},
}

// Orientation of the solar-system invariable plane, J2000 ecliptic.
const (
	invariableNodeDeg = 107.58254462
	invariableInclDeg = 1.578693540
)

// Ayanamsa returns the ayanamsa at tjd (TT) in degrees for the
// configured sidereal mode. The vernal point of date is carried through
// precession into the reference-epoch frame; its longitude on the
// reference-epoch ecliptic, measured from the fixed zero point, gives
// the ayanamsa.
func (c *Context) Ayanamsa(tjd float64) float64 {
	cfg := c.sid
	if !c.sidSet {
		cfg = sidModes[SidFaganBradley]
	}

	const degRad = math.Pi / 180
	vernal := astro.Vec3{X: 1}
	j2000 := astro.PrecessionMatrix(tjd).Transpose().MulVec(vernal)
	eqT0 := astro.PrecessionMatrix(cfg.t0).MulVec(j2000)
	ecl := astro.EquatorialToEcliptic(eqT0, astro.MeanObliquity(cfg.t0)).ToPolar()
	return astro.NormalizeDeg(cfg.ayan0 - ecl.Lon/degRad)
}

// applySidereal rewrites the ecliptic half of a projection into the
// sidereal frame. Without projection options the ayanamsa is subtracted
// on the ecliptic of date; the projection options measure longitude on
// the reference-epoch ecliptic or the invariable plane instead.
// Equatorial components stay tropical.
func (c *Context) applySidereal(p *Projection, tjd float64, u, du astro.Vec3, flags Flag) error {
	ayan := c.Ayanamsa(tjd) * math.Pi / 180

	if c.sid.opts&(SidProjectEclT0|SidProjectInvariable) != 0 {
		// Bring the vector back to equatorial J2000 before projecting
		// onto the fixed reference plane.
		uj, duj := u, du
		if flags&FlagJ2000 == 0 {
			pt := astro.PrecessionMatrix(tjd).Transpose()
			uj = pt.MulVec(u)
			duj = pt.MulVec(du)
		}
		var pos, vel astro.Vec3
		if c.sid.opts&SidProjectInvariable != 0 {
			pos, vel = toInvariable(uj), toInvariable(duj)
		} else {
			t0 := c.sid.t0
			pm := astro.PrecessionMatrix(t0)
			pos = astro.EquatorialToEcliptic(pm.MulVec(uj), astro.MeanObliquity(t0))
			vel = astro.EquatorialToEcliptic(pm.MulVec(duj), astro.MeanObliquity(t0))
		}
		rot := astro.RotZ(ayan)
		pos, vel = rot.MulVec(pos), rot.MulVec(vel)
		p.EclipticXYZ = packXYZ(pos, vel)
		p.EclipticPolar = toPolarVel(pos, vel)
		return nil
	}

	rot := astro.RotZ(ayan)
	pos := rot.MulVec(astro.Vec3{X: p.EclipticXYZ[0], Y: p.EclipticXYZ[1], Z: p.EclipticXYZ[2]})
	vel := rot.MulVec(astro.Vec3{X: p.EclipticXYZ[3], Y: p.EclipticXYZ[4], Z: p.EclipticXYZ[5]})
	p.EclipticXYZ = packXYZ(pos, vel)
	p.EclipticPolar = toPolarVel(pos, vel)
	return nil
}

// toInvariable rotates an equatorial J2000 vector into the invariable
// plane frame, longitude counted from the ascending node on the J2000
// ecliptic.
func toInvariable(v astro.Vec3) astro.Vec3 {
	const degRad = math.Pi / 180
	ecl := astro.EquatorialToEcliptic(v, astro.Eps2000)
	return astro.RotX(invariableInclDeg * degRad).MulVec(astro.RotZ(invariableNodeDeg * degRad).MulVec(ecl))
}
