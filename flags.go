package ephemeris

// Flag is the bit set selecting frame, representation, units and
// correction suppression for a position request. The zero value asks for
// the apparent geocentric ecliptic position of date, polar, in degrees.
type Flag uint32

const (
	// FlagSpeed also computes velocity components.
	FlagSpeed Flag = 1 << iota

	// FlagHeliocentric centers the position on the Sun.
	FlagHeliocentric

	// FlagBarycentric centers the position on the solar-system
	// barycenter.
	FlagBarycentric

	// FlagTopocentric centers the position on the observer site set
	// with SetTopo.
	FlagTopocentric

	// FlagEquatorial selects the equatorial representation (right
	// ascension and declination) instead of ecliptic longitude and
	// latitude.
	FlagEquatorial

	// FlagCartesian selects rectangular coordinates instead of polar.
	FlagCartesian

	// FlagRadians returns angles in radians instead of degrees.
	FlagRadians

	// FlagJ2000 keeps the position in the J2000 equinox instead of
	// precessing to the equinox of date.
	FlagJ2000

	// FlagICRS keeps the position in the ICRS frame: implies J2000 and
	// suppresses the frame-bias rotation.
	FlagICRS

	// FlagNoNutation suppresses the nutation stage, yielding mean
	// equinox of date positions.
	FlagNoNutation

	// FlagNoAberration suppresses annual aberration.
	FlagNoAberration

	// FlagNoDeflection suppresses solar gravitational deflection.
	FlagNoDeflection

	// FlagTruePosition returns the geometric position: no light-time,
	// no aberration, no deflection.
	FlagTruePosition

	// FlagSidereal subtracts the configured ayanamsa from ecliptic
	// longitudes.
	FlagSidereal
)

// sanitize resolves conflicting or implied flag combinations the way the
// rest of the engine expects them.
func (f Flag) sanitize() Flag {
	if f&FlagTruePosition != 0 {
		f |= FlagNoAberration | FlagNoDeflection
	}
	if f&FlagICRS != 0 {
		f |= FlagJ2000
	}
	// Barycentric wins over heliocentric, both win over topocentric.
	if f&FlagBarycentric != 0 {
		f &^= FlagHeliocentric
	}
	if f&(FlagBarycentric|FlagHeliocentric) != 0 {
		f &^= FlagTopocentric
	}
	// No observer, no observer-velocity effects.
	if f&(FlagBarycentric|FlagHeliocentric) != 0 {
		f |= FlagNoAberration | FlagNoDeflection
	}
	if f&FlagSidereal != 0 {
		// Sidereal longitudes are counted from a fixed zero point, so
		// nutation of the equinox does not apply to them.
		f |= FlagNoNutation
	}
	return f
}
