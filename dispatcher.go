package ephemeris

import (
	"fmt"

	"github.com/litescript/ls-ephemeris/internal/analytic"
	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/sefile"
)

// Synthetic cache keys for file-level bodies that have no public number.
const (
	keySunBary Body = -1 - iota
	keyEMB
	keyMoonGeo
)

// analyticPlanet maps internal file numbers onto the mean-element table.
var analyticPlanet = map[int]analytic.Planet{
	fileMercury: analytic.Mercury,
	fileVenus:   analytic.Venus,
	fileMars:    analytic.Mars,
	fileJupiter: analytic.Jupiter,
	fileSaturn:  analytic.Saturn,
	fileUranus:  analytic.Uranus,
	fileNeptune: analytic.Neptune,
	filePluto:   analytic.Pluto,
}

// resolveBary resolves the barycentric equatorial J2000 state of a
// public body at tjd (TT), consulting the cache first. The Moon resolves
// through the geocentric lunar state plus the Earth; the Earth through
// the Earth-Moon barycenter minus the Moon's share.
func (c *Context) resolveBary(tjd float64, body Body, speed bool) (*bodyState, error) {
	if s := c.states[body]; s.reusable(tjd, speed) {
		return s, nil
	}

	var s *bodyState
	var err error
	switch {
	case body == Sun:
		s, err = c.resolveFile(tjd, fileSunBary, speed)
	case body == Earth:
		s, err = c.resolveEarth(tjd, speed)
	case body == Moon:
		var earth, moon *bodyState
		if earth, err = c.resolveEarth(tjd, speed); err == nil {
			if moon, err = c.resolveFile(tjd, fileMoon, speed); err == nil {
				s = &bodyState{
					tjd: tjd, tier: moon.tier, speed: speed,
					pos:      earth.pos.Add(moon.pos),
					vel:      earth.vel.Add(moon.vel),
					warnings: mergeWarnings(earth.warnings, moon.warnings),
				}
			}
		}
	case body == MeanNode || body == MeanApogee:
		s, err = c.resolvePoint(tjd, body, speed)
	case body.IsAsteroid():
		// Auxiliary files store minor planets under their public
		// number, clear of the internal planet numbering.
		s, err = c.resolveFile(tjd, int(body), speed)
	default:
		if fb := fileBody(body); fb >= 0 {
			s, err = c.resolveFile(tjd, fb, speed)
		} else {
			return nil, invalidArg("unsupported body %d", int(body))
		}
	}
	if err != nil {
		return nil, err
	}
	c.states[body] = s
	return s, nil
}

// resolveEarth derives the Earth's barycentric state from the Earth-Moon
// barycenter and the geocentric Moon.
func (c *Context) resolveEarth(tjd float64, speed bool) (*bodyState, error) {
	emb, err := c.resolveFile(tjd, fileEMB, speed)
	if err != nil {
		return nil, err
	}
	moon, err := c.resolveFile(tjd, fileMoon, speed)
	if err != nil {
		return nil, err
	}
	share := 1 / (c.emRatio + 1)
	return &bodyState{
		tjd: tjd, tier: emb.tier, speed: speed,
		pos:      emb.pos.Sub(moon.pos.Scale(share)),
		vel:      emb.vel.Sub(moon.vel.Scale(share)),
		warnings: mergeWarnings(emb.warnings, moon.warnings),
	}, nil
}

// mergeWarnings concatenates without aliasing either input's backing
// array, since warning slices live inside cached states.
func mergeWarnings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// resolvePoint computes the analytic lunar points, which are geocentric
// by construction.
func (c *Context) resolvePoint(tjd float64, body Body, speed bool) (*bodyState, error) {
	earth, err := c.resolveEarth(tjd, speed)
	if err != nil {
		return nil, err
	}
	var pos, vel astro.Vec3
	if body == MeanNode {
		pos, vel = analytic.LunarNode(tjd)
	} else {
		pos, vel = analytic.LunarApogee(tjd)
	}
	return &bodyState{
		tjd: tjd, tier: TierAnalytic, speed: speed,
		pos:      earth.pos.Add(pos),
		vel:      earth.vel.Add(vel),
		warnings: earth.warnings,
	}, nil
}

// resolveFile resolves an internal file body through the tier chain:
// primary files, then fallback files, then the analytic theory. A window
// or absence miss falls through with an accumulated warning; a corrupt
// file aborts the request and is quarantined, so later requests skip it
// until it is reloaded.
func (c *Context) resolveFile(tjd float64, fb int, speed bool) (*bodyState, error) {
	key := cacheKey(fb)
	if key != 0 {
		if s := c.states[key]; s.reusable(tjd, speed) {
			return s, nil
		}
	}

	var trail []string
	for _, tier := range []Tier{TierPrimary, TierSecondary} {
		set := c.primary
		if tier == TierSecondary {
			set = c.fallback
		}
		s, found, err := c.tryTier(set, tier, tjd, fb, speed)
		if err != nil {
			return nil, err
		}
		if found {
			s.warnings = append(trail, s.warnings...)
			if key != 0 {
				c.states[key] = s
			}
			return s, nil
		}
		if len(set) > 0 {
			trail = append(trail, fmt.Sprintf("%s: no file covers JD %.6f for file body %d", tier, tjd, fb))
		}
	}

	s, err := c.analyticState(tjd, fb, speed)
	if err != nil {
		return nil, &Error{Kind: KindNotAvailable,
			Msg: fmt.Sprintf("file body %d at JD %.6f", fb, tjd), Trail: trail, Err: err}
	}
	if len(trail) > 0 {
		c.logger.Warn("falling back to analytic series", "fileBody", fb, "tjd", tjd)
	}
	s.warnings = append(trail, s.warnings...)
	if key != 0 {
		c.states[key] = s
	}
	return s, nil
}

// tryTier searches one file set for a body whose window covers tjd,
// decodes (or reuses) the segment and evaluates it. Heliocentric bodies
// are shifted to barycentric using the same tier's Sun.
func (c *Context) tryTier(set []*fileRef, tier Tier, tjd float64, fb int, speed bool) (*bodyState, bool, error) {
	for _, f := range set {
		if f.quarantined {
			continue
		}
		m := f.header.Body(fb)
		if m == nil || tjd < m.TStart || tjd >= m.TEnd {
			continue
		}
		seg := f.segs[fb]
		if seg == nil || !seg.Covers(tjd) {
			var err error
			seg, err = sefile.LoadSegment(f.header, f.name, f.data, fb, tjd)
			if err != nil {
				if classify(err) == KindCorrupt {
					f.quarantined = true
					c.clearStates()
					return nil, false, &Error{Kind: KindCorrupt,
						Msg: fmt.Sprintf("segment for file body %d in %s", fb, f.name), Err: err}
				}
				continue
			}
			f.segs[fb] = seg
			c.decodes++
		}
		pos, vel := evalSegment(seg, tjd, speed)
		s := &bodyState{tjd: tjd, tier: tier, speed: speed, pos: pos, vel: vel}

		if m.Flags&(sefile.FlagHeliocentric|sefile.FlagEMBHeliocentric) != 0 && fb != fileSunBary {
			sun, err := c.resolveFile(tjd, fileSunBary, speed)
			if err != nil {
				return nil, false, err
			}
			s.pos = s.pos.Add(sun.pos)
			s.vel = s.vel.Add(sun.vel)
			s.warnings = sun.warnings
		}
		return s, true, nil
	}
	return nil, false, nil
}

// analyticState is the last tier. The analytic theory is
// heliocentric-native and defines the barycentric Sun as the origin,
// so barycentric and heliocentric coincide for its results.
func (c *Context) analyticState(tjd float64, fb int, speed bool) (*bodyState, error) {
	s := &bodyState{tjd: tjd, tier: TierAnalytic, speed: speed}
	switch fb {
	case fileSunBary:
		return s, nil
	case fileMoon:
		s.pos, s.vel = analytic.MoonGeo(tjd)
		return s, nil
	case fileEMB:
		epos, evel := analytic.EarthHelio(tjd)
		mpos, mvel := analytic.MoonGeo(tjd)
		share := 1 / (c.emRatio + 1)
		s.pos = epos.Add(mpos.Scale(share))
		s.vel = evel.Add(mvel.Scale(share))
		return s, nil
	}
	if p, ok := analyticPlanet[fb]; ok {
		var err error
		s.pos, s.vel, err = analytic.PlanetHelio(p, tjd)
		return s, err
	}
	return nil, fmt.Errorf("no analytic model for file body %d", fb)
}

func cacheKey(fb int) Body {
	switch fb {
	case fileSunBary:
		return keySunBary
	case fileEMB:
		return keyEMB
	case fileMoon:
		return keyMoonGeo
	default:
		return 0
	}
}
