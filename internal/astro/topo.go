package astro

import "math"

// Earth reference ellipsoid (WGS-84) and rotation rate.
const (
	EarthEquatorialRadiusKm = 6378.137
	earthFlattening         = 1 / 298.257223563
	earthRotRadPerDay       = 6.300387486754831 // sidereal rotation, rad/day
)

// Observer is a ground site in geodetic coordinates.
type Observer struct {
	LonDeg float64 // east positive
	LatDeg float64 // north positive
	AltM   float64 // meters above the ellipsoid
}

// GeocentricPosVel returns the observer's geocentric position (AU) and
// velocity (AU/day) in the mean equatorial J2000 frame at a Julian day of
// UT. The site vector is built on the true equator of date from apparent
// sidereal time, then carried back through nutation and precession.
func (o Observer) GeocentricPosVel(jdUT, jdTT float64, auKm float64) (Vec3, Vec3) {
	lat := o.LatDeg * math.Pi / 180

	// Geodetic to geocentric on the reference ellipsoid.
	f := earthFlattening
	c := 1 / math.Sqrt(math.Cos(lat)*math.Cos(lat)+(1-f)*(1-f)*math.Sin(lat)*math.Sin(lat))
	s := (1 - f) * (1 - f) * c
	altKm := o.AltM / 1000

	rhoCos := (EarthEquatorialRadiusKm*c + altKm) * math.Cos(lat)
	rhoSin := (EarthEquatorialRadiusKm*s + altKm) * math.Sin(lat)

	eps := MeanObliquity(jdTT)
	nut := NutationAngles(jdTT)
	lst := GASTRad(jdUT, nut, eps) + o.LonDeg*math.Pi/180

	// True-of-date position and the velocity from Earth rotation.
	pos := Vec3{
		X: rhoCos * math.Cos(lst) / auKm,
		Y: rhoCos * math.Sin(lst) / auKm,
		Z: rhoSin / auKm,
	}
	vel := Vec3{
		X: -pos.Y * earthRotRadPerDay,
		Y: pos.X * earthRotRadPerDay,
		Z: 0,
	}

	// Back to mean J2000: undo nutation, then precession.
	undo := PrecessionMatrix(jdTT).Transpose().Mul(nut.Matrix(eps).Transpose())
	return undo.MulVec(pos), undo.MulVec(vel)
}
