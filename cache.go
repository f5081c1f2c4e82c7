package ephemeris

import "github.com/litescript/ls-ephemeris/internal/astro"

// Tier identifies which ephemeris source produced a position.
type Tier int

const (
	TierNone Tier = iota
	TierPrimary
	TierSecondary
	TierAnalytic
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierAnalytic:
		return "analytic"
	default:
		return "none"
	}
}

// bodyState memoizes the last raw resolution of one body: barycentric
// equatorial J2000 position in AU and velocity in AU/day, plus the tier
// that produced it and whether velocity was actually computed.
type bodyState struct {
	tjd   float64
	tier  Tier
	speed bool
	pos   astro.Vec3
	vel   astro.Vec3

	warnings []string
}

// savedResult is one fully corrected position, reusable only for an
// exactly identical request.
type savedResult struct {
	tjd   float64
	flags Flag
	res   Result
}

// reusable reports whether the raw state can serve a request at tjd.
// A cached entry without velocity cannot serve a speed request; the
// reverse is fine.
func (s *bodyState) reusable(tjd float64, speed bool) bool {
	return s != nil && s.tjd == tjd && (!speed || s.speed)
}

// invalidateSaved drops every fully corrected result but keeps the raw
// barycentric states, which do not depend on the observer.
func (c *Context) invalidateSaved() {
	c.saved = make(map[Body]savedResult)
}
