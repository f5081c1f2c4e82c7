package ephemeris

import (
	"github.com/litescript/ls-ephemeris/internal/astro"
)

// ComputePosition computes the position of body at tjd, a Julian day in
// terrestrial time. The flags select center, frame, representation,
// units and correction suppression; the zero Flag value yields the
// apparent geocentric ecliptic position of date in degrees. Repeating a
// call with identical arguments is served from the cache and is
// guaranteed to return the identical result.
func (c *Context) ComputePosition(tjd float64, body Body, flags Flag) (Result, error) {
	flags = flags.sanitize()

	if body == Earth && flags&(FlagHeliocentric|FlagBarycentric) == 0 {
		return Result{}, invalidArg("geocentric position of the Earth itself")
	}

	if sr, ok := c.saved[body]; ok && sr.tjd == tjd && sr.flags == flags {
		return sr.res, nil
	}

	res, err := c.apparent(tjd, body, flags)
	if err != nil {
		return Result{}, err
	}
	for _, w := range res.Warnings {
		c.logger.Debug("tier fallback", "body", body.String(), "detail", w)
	}
	c.saved[body] = savedResult{tjd: tjd, flags: flags, res: res}
	return res, nil
}

// ComputePositionUT is ComputePosition for a universal-time Julian day,
// applying the built-in delta-T model.
func (c *Context) ComputePositionUT(tjdUT float64, body Body, flags Flag) (Result, error) {
	return c.ComputePosition(astro.UTToTT(tjdUT), body, flags)
}

// LoadFile registers an ephemeris buffer under name in the primary
// tier. The buffer must stay unmodified for the life of the context. A
// structurally invalid file is rejected as a whole: no partial metadata
// becomes visible.
func (c *Context) LoadFile(name string, data []byte) error {
	return c.addFile(&c.primary, name, data)
}

// LoadFallbackFile registers a buffer in the secondary tier, consulted
// only when no primary file can serve a request.
func (c *Context) LoadFallbackFile(name string, data []byte) error {
	return c.addFile(&c.fallback, name, data)
}

// SetSiderealMode selects the sidereal anchoring used when positions
// are requested with FlagSidereal. t0 and ayan0 (Julian day TT and
// degrees) are honored for SidUser and ignored for the built-in modes.
func (c *Context) SetSiderealMode(mode SidMode, opts SidOption, t0, ayan0 float64) {
	cfg, ok := sidModes[mode]
	if !ok {
		cfg = sidConfig{t0: t0, ayan0: ayan0}
	}
	cfg.mode = mode
	cfg.opts = opts
	c.sid = cfg
	c.sidSet = true
	c.invalidateSaved()
}

// SetTopo sets the observer site used by topocentric requests:
// geographic longitude and latitude in degrees (east and north
// positive) and altitude in meters. Any previously saved positions are
// dropped, since they were computed for another observer.
func (c *Context) SetTopo(lonDeg, latDeg, altM float64) {
	c.obs = &astro.Observer{LonDeg: lonDeg, LatDeg: latDeg, AltM: altM}
	c.invalidateSaved()
}

// FileInfo describes one open ephemeris file.
type FileInfo struct {
	Name      string
	Version   string
	SourceID  int32
	TStart    float64
	TEnd      float64
	BigEndian bool
	Bodies    []int
	Fallback  bool
}

// Files returns metadata for every open file, primary tier first.
func (c *Context) Files() []FileInfo {
	var out []FileInfo
	add := func(set []*fileRef, fallback bool) {
		for _, f := range set {
			fi := FileInfo{
				Name:      f.name,
				Version:   f.header.Version,
				SourceID:  f.header.SourceID,
				TStart:    f.header.TStart,
				TEnd:      f.header.TEnd,
				BigEndian: f.header.BigEndian,
				Fallback:  fallback,
			}
			for _, b := range f.header.Bodies {
				fi.Bodies = append(fi.Bodies, b.ID)
			}
			out = append(out, fi)
		}
	}
	add(c.primary, false)
	add(c.fallback, true)
	return out
}
