package sefile

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
	"strconv"
	"strings"

	"github.com/litescript/ls-ephemeris/internal/wire"
)

// BodyMeta describes where and how one body is stored inside a file.
type BodyMeta struct {
	ID          int
	IndexOffset uint32 // absolute offset of the segment index table
	Flags       uint8
	NCoeff      int     // Chebyshev coefficients per axis
	RMax        float64 // magnitude bound for coefficient quantization, AU
	TStart      float64 // first valid Julian day for this body
	TEnd        float64
	DSeg        float64 // segment duration in days
	NSeg        int

	// Linear models of the orbital-plane orientation, used when FlagRotate
	// is set. Telem is the reference epoch (JD); the angle pairs drift
	// linearly in Julian millennia from it.
	Telem    float64
	Prot     float64
	Qrot     float64
	DProt    float64
	DQrot    float64
	Peri     float64
	DPeri    float64
	reserved [3]float64 // unused slots kept for layout compatibility

	// Reference-ellipse coefficients, present when FlagEllipse is set.
	RefEllipseX []float64
	RefEllipseY []float64
}

// Elements holds the orbital-element preamble line of a single-body
// auxiliary file.
type Elements struct {
	Name     string
	HMag     float64 // absolute magnitude H
	Slope    float64 // slope parameter G
	Diameter float64 // km; derived from H when the line omits it
}

// Header is the parsed, validated preamble and metadata table of one
// ephemeris buffer.
type Header struct {
	Version   string
	FileName  string // declared inside the file; must match the load name
	SourceID  int32  // data-source identifier (DE number)
	TStart    float64
	TEnd      float64
	BigEndian bool
	Elements  *Elements // nil except for single-body auxiliary files

	// General physical constants stored in the file.
	Clight       float64 // speed of light, m/s
	AU           float64 // astronomical unit, m
	HelGravConst float64 // heliocentric gravitational constant
	EMRatio      float64 // Earth/Moon mass ratio
	SunRadius    float64 // radians at 1 AU

	Bodies []*BodyMeta

	byID map[int]*BodyMeta
}

// Body returns the metadata for a body id, or nil when the file does not
// carry it.
func (h *Header) Body(id int) *BodyMeta {
	return h.byID[id]
}

// Covers reports whether tjd lies inside the file validity window.
func (h *Header) Covers(tjd float64) bool {
	return tjd >= h.TStart && tjd <= h.TEnd
}

// defaultDiameter converts an absolute magnitude to a diameter in km
// assuming a standard albedo of 0.15.
func defaultDiameter(hmag float64) float64 {
	return 1329.0 / math.Sqrt(0.15) * math.Pow(10, -hmag/5)
}

// ParseHeader validates and decodes the header region of an ephemeris
// buffer. name is the name the buffer was loaded under; it must match the
// filename declared inside the file (ignoring case and any path prefix).
// A failed parse returns an error wrapping ErrCorrupt and nothing else:
// no partially filled Header escapes.
func ParseHeader(name string, data []byte) (*Header, error) {
	c := wire.NewCursor(data)
	h := &Header{byID: make(map[int]*BodyMeta)}

	var err error
	if h.Version, err = c.Line(); err != nil {
		return nil, corrupt(name, "version line: %v", err)
	}
	if h.FileName, err = c.Line(); err != nil {
		return nil, corrupt(name, "filename line: %v", err)
	}
	if !fileNameMatches(name, h.FileName) {
		return nil, corrupt(name, "declared filename %q does not match", h.FileName)
	}
	if _, err = c.Line(); err != nil { // copyright line, ignored
		return nil, corrupt(name, "copyright line: %v", err)
	}

	// Endianness probe. Single-body auxiliary files carry one extra
	// orbital-element text line before the magic; detect it by probing
	// first and falling back to a line read on mismatch.
	if err := probeEndianness(c); err != nil {
		elems, lerr := c.Line()
		if lerr != nil {
			return nil, corrupt(name, "endianness magic: %v", err)
		}
		h.Elements, err = parseElements(elems)
		if err != nil {
			return nil, corrupt(name, "orbital elements line: %v", err)
		}
		if err := probeEndianness(c); err != nil {
			return nil, corrupt(name, "endianness magic: %v", err)
		}
	}
	h.BigEndian = c.Order() == binary.BigEndian

	declared, err := c.Uint32()
	if err != nil {
		return nil, corrupt(name, "declared length: %v", err)
	}
	if int(declared) != len(data) {
		return nil, corrupt(name, "declared length %d but buffer has %d bytes", declared, len(data))
	}
	src, err := c.Int32()
	if err != nil {
		return nil, corrupt(name, "source identifier: %v", err)
	}
	h.SourceID = src
	if h.TStart, err = c.Float64(); err != nil {
		return nil, corrupt(name, "validity window: %v", err)
	}
	if h.TEnd, err = c.Float64(); err != nil {
		return nil, corrupt(name, "validity window: %v", err)
	}
	if h.TEnd <= h.TStart {
		return nil, corrupt(name, "validity window [%f, %f] is empty", h.TStart, h.TEnd)
	}

	// Body count above 256 signals 4-byte identifiers; the true count is
	// the remainder.
	count, err := c.Uint16()
	if err != nil {
		return nil, corrupt(name, "body count: %v", err)
	}
	idWidth := 2
	nbody := int(count)
	if nbody > 256 {
		idWidth = 4
		nbody %= 256
	}
	if nbody == 0 {
		return nil, corrupt(name, "file declares no bodies")
	}
	ids := make([]int, nbody)
	for i := range ids {
		if idWidth == 2 {
			v, err := c.Uint16()
			if err != nil {
				return nil, corrupt(name, "body identifier list: %v", err)
			}
			ids[i] = int(v)
		} else {
			v, err := c.Uint32()
			if err != nil {
				return nil, corrupt(name, "body identifier list: %v", err)
			}
			ids[i] = int(v)
		}
	}

	// The stored CRC-32 covers every byte before itself.
	crcPos := c.Tell()
	stored, err := c.Uint32()
	if err != nil {
		return nil, corrupt(name, "checksum: %v", err)
	}
	if got := crc32.ChecksumIEEE(data[:crcPos]); got != stored {
		return nil, corrupt(name, "checksum mismatch: stored %08x, computed %08x", stored, got)
	}

	consts, err := c.Float64s(5)
	if err != nil {
		return nil, corrupt(name, "physical constants: %v", err)
	}
	h.Clight, h.AU, h.HelGravConst, h.EMRatio, h.SunRadius =
		consts[0], consts[1], consts[2], consts[3], consts[4]

	for _, id := range ids {
		m, err := parseBodyMeta(c, id)
		if err != nil {
			return nil, corrupt(name, "body %d metadata: %v", id, err)
		}
		h.Bodies = append(h.Bodies, m)
		h.byID[id] = m
	}
	return h, nil
}

func parseBodyMeta(c *wire.Cursor, id int) (*BodyMeta, error) {
	m := &BodyMeta{ID: id}

	var err error
	if m.IndexOffset, err = c.Uint32(); err != nil {
		return nil, err
	}
	if m.Flags, err = c.Uint8(); err != nil {
		return nil, err
	}
	ncoe, err := c.Uint8()
	if err != nil {
		return nil, err
	}
	if ncoe == 0 {
		return nil, fmt.Errorf("zero coefficient count")
	}
	m.NCoeff = int(ncoe)

	raw, err := c.Int32()
	if err != nil {
		return nil, err
	}
	// Planetary satellites need the finer scale; their coefficients stay
	// within a much smaller radius bound.
	scale := 1000.0
	if id >= SatelliteIDLow && id <= SatelliteIDHigh {
		scale = 1000000.0
	}
	m.RMax = float64(raw) / scale

	window, err := c.Float64s(3)
	if err != nil {
		return nil, err
	}
	m.TStart, m.TEnd, m.DSeg = window[0], window[1], window[2]
	if m.DSeg <= 0 || m.TEnd <= m.TStart {
		return nil, fmt.Errorf("bad segment window [%f, %f] step %f", m.TStart, m.TEnd, m.DSeg)
	}
	m.NSeg = int((m.TEnd-m.TStart)/m.DSeg + 0.5)

	rot, err := c.Float64s(10)
	if err != nil {
		return nil, err
	}
	m.Telem, m.Prot, m.Qrot, m.DProt, m.DQrot, m.Peri, m.DPeri =
		rot[0], rot[1], rot[2], rot[3], rot[4], rot[5], rot[6]
	copy(m.reserved[:], rot[7:])

	if m.Flags&FlagEllipse != 0 {
		if m.RefEllipseX, err = c.Float64s(m.NCoeff); err != nil {
			return nil, err
		}
		if m.RefEllipseY, err = c.Float64s(m.NCoeff); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// probeEndianness reads the 4-byte magic at the cursor and fixes the cursor
// byte order from whichever interpretation matches. The cursor is left
// positioned after the magic on success, rewound on failure.
func probeEndianness(c *wire.Cursor) error {
	pos := c.Tell()
	c.SetOrder(binary.LittleEndian)
	v, err := c.Uint32()
	if err != nil {
		return err
	}
	if v == MagicEndian {
		return nil
	}
	if swap32(v) == MagicEndian {
		c.SetOrder(binary.BigEndian)
		return nil
	}
	_ = c.Seek(pos)
	return fmt.Errorf("magic %08x matches neither byte order", v)
}

func swap32(v uint32) uint32 {
	return v<<24 | (v&0xff00)<<8 | (v>>8)&0xff00 | v>>24
}

// parseElements decodes the orbital-element text line of a single-body
// auxiliary file: comma-separated name, absolute magnitude, slope parameter
// and optional diameter in km.
func parseElements(line string) (*Elements, error) {
	parts := strings.Split(line, ",")
	if len(parts) < 3 {
		return nil, fmt.Errorf("want at least name, magnitude, slope; got %q", line)
	}
	e := &Elements{Name: strings.TrimSpace(parts[0])}
	var err error
	if e.HMag, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64); err != nil {
		return nil, fmt.Errorf("absolute magnitude: %v", err)
	}
	if e.Slope, err = strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err != nil {
		return nil, fmt.Errorf("slope parameter: %v", err)
	}
	if len(parts) > 3 {
		if e.Diameter, err = strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err != nil {
			return nil, fmt.Errorf("diameter: %v", err)
		}
	}
	if e.Diameter == 0 {
		e.Diameter = defaultDiameter(e.HMag)
	}
	return e, nil
}

// fileNameMatches compares the declared and requested file names ignoring
// case and any directory prefix.
func fileNameMatches(requested, declared string) bool {
	return strings.EqualFold(baseName(requested), baseName(declared))
}

func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

func corrupt(name, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", name, ErrCorrupt, fmt.Sprintf(format, args...))
}
