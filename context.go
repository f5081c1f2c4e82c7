// Package ephemeris computes positions and velocities of solar-system
// bodies from compact binary ephemeris files, falling back to a built-in
// analytic theory when file data is missing, and applies the full
// apparent-position correction chain (light time, deflection, aberration,
// frame bias, precession, nutation).
//
// A Context is single-threaded: callers driving one context from several
// goroutines must serialize access themselves.
package ephemeris

import (
	"fmt"
	"log/slog"

	"github.com/litescript/ls-ephemeris/internal/astro"
	"github.com/litescript/ls-ephemeris/internal/logging"
	"github.com/litescript/ls-ephemeris/internal/sefile"
)

// Default physical constants, used until a loaded file supplies its own.
const (
	defaultClightMS = 299792458.0
	defaultAUM      = 1.4959787066e11
	defaultHelGrav  = 1.32712440017987e20
	defaultEMRatio  = 81.30056907419062
	defaultSunRadAU = 4.6546878e-3 // solar radius in AU
)

// fileRef is one loaded ephemeris buffer with its parsed header and the
// most recently decoded segment per body. A corrupt segment decode sets
// quarantined; the file is then skipped until an explicit reload under
// the same name replaces the descriptor.
type fileRef struct {
	name        string
	data        []byte
	header      *sefile.Header
	segs        map[int]*sefile.Segment
	quarantined bool
}

// Context holds all session state: loaded files, per-body caches, the
// observer site and the sidereal configuration. There is no package
// level state; independent computations use independent contexts.
type Context struct {
	logger *slog.Logger

	primary  []*fileRef
	fallback []*fileRef

	// Physical constants, overridden by the first loaded primary file.
	clightMS float64
	auM      float64
	helGrav  float64
	emRatio  float64
	sunRadAU float64

	states map[Body]*bodyState
	saved  map[Body]savedResult

	// Obliquity and nutation memo for the last requested time.
	frameT   float64
	frameEps float64
	frameNut astro.Nutation
	frameOK  bool

	obs    *astro.Observer
	sid    sidConfig
	sidSet bool

	// decodes counts segment unpacks, for cache verification.
	decodes int
}

// New returns an empty context with default constants and a discard
// logger.
func New() *Context {
	return &Context{
		logger:   logging.Discard(),
		clightMS: defaultClightMS,
		auM:      defaultAUM,
		helGrav:  defaultHelGrav,
		emRatio:  defaultEMRatio,
		sunRadAU: defaultSunRadAU,
		states:   make(map[Body]*bodyState),
		saved:    make(map[Body]savedResult),
	}
}

// SetLogger directs the context's diagnostics to l.
func (c *Context) SetLogger(l *slog.Logger) {
	if l != nil {
		c.logger = l
	}
}

// clightAUDay returns the speed of light in AU per day.
func (c *Context) clightAUDay() float64 {
	return c.clightMS / c.auM * 86400
}

// frameAngles returns the mean obliquity and nutation for tjd, memoized
// for the common case of repeated calls at one instant.
func (c *Context) frameAngles(tjd float64) (eps float64, nut astro.Nutation) {
	if c.frameOK && c.frameT == tjd {
		return c.frameEps, c.frameNut
	}
	c.frameT = tjd
	c.frameEps = astro.MeanObliquity(tjd)
	c.frameNut = astro.NutationAngles(tjd)
	c.frameOK = true
	return c.frameEps, c.frameNut
}

// addFile parses and registers one buffer in the given tier set.
func (c *Context) addFile(set *[]*fileRef, name string, data []byte) error {
	h, err := sefile.ParseHeader(name, data)
	if err != nil {
		// A corrupt file invalidates everything resolved so far: some
		// of it may have come from a stale descriptor for this name.
		c.clearStates()
		return &Error{Kind: classify(err), Msg: fmt.Sprintf("load %s", name), Err: err}
	}
	// A reload under the same name replaces the old descriptor.
	for i, f := range *set {
		if f.name == name {
			(*set)[i] = &fileRef{name: name, data: data, header: h, segs: make(map[int]*sefile.Segment)}
			c.clearStates()
			c.adoptConstants(h)
			return nil
		}
	}
	*set = append(*set, &fileRef{name: name, data: data, header: h, segs: make(map[int]*sefile.Segment)})
	c.adoptConstants(h)
	c.logger.Debug("ephemeris file loaded",
		"name", name, "source", h.SourceID, "start", h.TStart, "end", h.TEnd)
	return nil
}

func (c *Context) adoptConstants(h *sefile.Header) {
	if h.Clight > 0 {
		c.clightMS = h.Clight
	}
	if h.AU > 0 {
		c.auM = h.AU
	}
	if h.HelGravConst > 0 {
		c.helGrav = h.HelGravConst
	}
	if h.EMRatio > 0 {
		c.emRatio = h.EMRatio
	}
	if h.SunRadius > 0 {
		c.sunRadAU = h.SunRadius
	}
}

func (c *Context) clearStates() {
	c.states = make(map[Body]*bodyState)
	c.saved = make(map[Body]savedResult)
	c.frameOK = false
}

// Decodes returns the number of segment decodes performed so far. It is
// an instrumentation counter: cache hits do not advance it.
func (c *Context) Decodes() int { return c.decodes }
