package sefile

import "math"

// Mean obliquity of the ecliptic at J2000, radians. The Moon's segments are
// stored in the ecliptic of epoch and need this extra rotation to reach the
// J2000 equator.
const eps2000 = 23.43929111111111 * math.Pi / 180

// MoonID is the body identifier whose orbital-plane parameters are resolved
// through a drifting node angle instead of directly.
const MoonID = 1

const daysPerMillennium = 365250.0

// negligible is the magnitude below which a rotated coefficient no longer
// contributes at double precision; it bounds the evaluation length.
const negligible = 1e-14

// rotateToEquatorial rotates segment coefficients stored in a precessing
// orbital-plane frame into equatorial J2000. Bodies carrying a reference
// ellipse get the perihelion-rotated ellipse term added first.
func rotateToEquatorial(m *BodyMeta, seg *Segment) {
	// Epoch offset in Julian millennia from the body's reference epoch,
	// taken at the segment midpoint.
	t := (seg.TStart + m.DSeg/2 - m.Telem) / daysPerMillennium

	var qav, pav float64
	if m.ID == MoonID {
		// The Moon's node precesses through a full turn; resolve the
		// equinoctial pair through the drift angle.
		dn := math.Mod(m.Prot+t*m.DProt, 2*math.Pi)
		q := m.Qrot + t*m.DQrot
		qav = q * math.Cos(dn)
		pav = q * math.Sin(dn)
	} else {
		qav = m.Qrot + t*m.DQrot
		pav = m.Prot + t*m.DProt
	}

	x := seg.Coeffs
	if m.Flags&FlagEllipse != 0 {
		omega := m.Peri + t*m.DPeri
		com, som := math.Cos(omega), math.Sin(omega)
		for i := 0; i < m.NCoeff; i++ {
			rx, ry := m.RefEllipseX[i], m.RefEllipseY[i]
			x[0][i] += com*rx - som*ry
			x[1][i] += com*ry + som*rx
		}
	}

	// Orthonormal triad built from the equinoctial parameters: orbit pole,
	// origin-of-longitude axis, and the in-plane orthogonal axis.
	cosih2 := 1.0 / (1.0 + qav*qav + pav*pav)
	uix := [3]float64{(1 + qav*qav - pav*pav) * cosih2, 2 * pav * qav * cosih2, -2 * pav * cosih2}
	uiy := [3]float64{2 * pav * qav * cosih2, (1 - qav*qav + pav*pav) * cosih2, 2 * qav * cosih2}
	uiz := [3]float64{2 * pav * cosih2, -2 * qav * cosih2, (1 - qav*qav - pav*pav) * cosih2}

	seg.NEval = 0
	cose, sine := math.Cos(eps2000), math.Sin(eps2000)
	for i := 0; i < m.NCoeff; i++ {
		xr := x[0][i]*uix[0] + x[1][i]*uiy[0] + x[2][i]*uiz[0]
		yr := x[0][i]*uix[1] + x[1][i]*uiy[1] + x[2][i]*uiz[1]
		zr := x[0][i]*uix[2] + x[1][i]*uiy[2] + x[2][i]*uiz[2]
		if math.Abs(xr)+math.Abs(yr)+math.Abs(zr) >= negligible {
			seg.NEval = i + 1
		}
		x[0][i] = xr
		if m.ID == MoonID {
			x[1][i] = cose*yr - sine*zr
			x[2][i] = sine*yr + cose*zr
		} else {
			x[1][i] = yr
			x[2][i] = zr
		}
	}
}
