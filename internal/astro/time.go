package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian day of the standard epoch 2000 January 1.5 TT.
const J2000 = 2451545.0

// DaysPerCentury is the length of a Julian century in days.
const DaysPerCentury = 36525.0

// JulianDay converts a civil time to a Julian day number.
func JulianDay(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JulianCentury returns Julian centuries elapsed since J2000 for a Julian
// day.
func JulianCentury(jd float64) float64 {
	return base.J2000Century(jd)
}

// DeltaTSeconds estimates TT−UT1 in seconds for a Julian day of UT. The
// polynomial pieces follow the Espenak/Meeus fits; outside the fitted span
// the long-term parabola takes over.
func DeltaTSeconds(jdUT float64) float64 {
	y := 2000.0 + (jdUT-J2000)/365.25

	switch {
	case y >= 2050:
		u := (y - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-y)
	case y >= 2005:
		t := y - 2000
		return 62.92 + 0.32217*t + 0.005589*t*t
	case y >= 1986:
		t := y - 2000
		return 63.86 + 0.3345*t - 0.060374*t*t +
			0.0017275*t*t*t + 0.000651814*t*t*t*t +
			0.00002373599*t*t*t*t*t
	default:
		u := (y - 1820) / 100
		return -20 + 32*u*u
	}
}

// UTToTT converts a Julian day in universal time to terrestrial time.
func UTToTT(jdUT float64) float64 {
	return jdUT + DeltaTSeconds(jdUT)/86400.0
}
