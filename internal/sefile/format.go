// Package sefile decodes the compact binary ephemeris file format: a text
// preamble, an endianness-probe magic, a CRC-protected header with per-body
// metadata, and bit-packed Chebyshev coefficient segments.
package sefile

import "errors"

// MagicEndian is the 4-byte probe constant stored after the text preamble.
// The loader reads it once little-endian and once big-endian; whichever
// interpretation matches fixes the byte order for the rest of the file.
const MagicEndian uint32 = 0x616263

// Body metadata flag bits.
const (
	// FlagHeliocentric marks a body whose segments are stored heliocentric
	// rather than barycentric.
	FlagHeliocentric = 1 << iota

	// FlagRotate marks a body whose segments are stored in a precessing
	// orbital-plane frame and must be rotated back to equatorial J2000.
	FlagRotate

	// FlagEllipse marks a rotated body carrying reference-ellipse
	// coefficients that are added before rotation.
	FlagEllipse

	// FlagEMBHeliocentric marks a heliocentric body referred to the
	// Earth-moon barycenter rather than the Earth.
	FlagEMBHeliocentric
)

// Identifier ranges that change the rmax scale factor. Planetary satellites
// store rmax in millimeters times a thousand, everything else in meters
// times a thousand.
const (
	SatelliteIDLow  = 9500
	SatelliteIDHigh = 9599
)

// Sentinel errors. Corrupt means the file itself is bad and must not be
// retried; the other two are recoverable by falling back to another source.
var (
	ErrCorrupt    = errors.New("corrupt ephemeris file")
	ErrOutOfRange = errors.New("time outside ephemeris file range")
	ErrBodyAbsent = errors.New("body not present in ephemeris file")
)

// groupWidths is the tiered packing table: coefficient group index to the
// number of bytes (or fraction of a byte) per coefficient. Groups 0-3 store
// whole-byte values; group 4 stores two coefficients per byte, group 5 four.
var groupWidths = [6]int{4, 3, 2, 1, 0, 0}

// maxGroups is the group count for an extended (two header pairs) block;
// baseGroups for a plain one.
const (
	baseGroups = 4
	maxGroups  = 6
)

// maxGroupRun is the largest coefficient count one header nibble can encode.
const maxGroupRun = 15
