package sefile

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/litescript/ls-ephemeris/internal/wire"
)

// Segment holds the decoded Chebyshev coefficients for one body over one
// time sub-interval [TStart, TEnd). Coefficients are equatorial J2000 in AU
// after rotation. NEval is the number of leading coefficients that are
// numerically significant; trailing near-zero coefficients are skipped
// during evaluation.
type Segment struct {
	Body   int
	TStart float64
	TEnd   float64
	Coeffs [3][]float64
	NEval  int
}

// Covers reports whether tjd lies inside the segment interval.
func (s *Segment) Covers(tjd float64) bool {
	return tjd >= s.TStart && tjd < s.TEnd
}

// LoadSegment locates, unpacks and rotates the segment containing tjd for
// the given body. The file buffer and its parsed header must belong
// together.
func LoadSegment(h *Header, name string, data []byte, bodyID int, tjd float64) (*Segment, error) {
	m := h.Body(bodyID)
	if m == nil {
		return nil, fmt.Errorf("%s: body %d: %w", name, bodyID, ErrBodyAbsent)
	}
	if tjd < m.TStart || tjd >= m.TEnd {
		return nil, fmt.Errorf("%s: body %d at %f: %w [%f, %f]",
			name, bodyID, tjd, ErrOutOfRange, m.TStart, m.TEnd)
	}

	iseg := int(math.Floor((tjd - m.TStart) / m.DSeg))
	if iseg >= m.NSeg {
		iseg = m.NSeg - 1
	}
	seg := &Segment{
		Body:   bodyID,
		TStart: m.TStart + float64(iseg)*m.DSeg,
	}
	seg.TEnd = seg.TStart + m.DSeg

	c := wire.NewCursor(data)
	if h.BigEndian {
		c.SetOrder(binary.BigEndian)
	}
	if err := c.Seek(int(m.IndexOffset) + iseg*3); err != nil {
		return nil, corrupt(name, "segment index for body %d: %v", bodyID, err)
	}
	off, err := c.Uint24()
	if err != nil {
		return nil, corrupt(name, "segment index for body %d: %v", bodyID, err)
	}
	if err := c.Seek(int(off)); err != nil {
		return nil, corrupt(name, "segment %d of body %d at offset %d: %v", iseg, bodyID, off, err)
	}

	for axis := 0; axis < 3; axis++ {
		coeffs, err := decodeAxis(c, m)
		if err != nil {
			return nil, corrupt(name, "segment %d of body %d, axis %d: %v", iseg, bodyID, axis, err)
		}
		seg.Coeffs[axis] = coeffs
	}

	seg.NEval = significantLen(seg.Coeffs, m.NCoeff)
	if m.Flags&FlagRotate != 0 {
		rotateToEquatorial(m, seg)
	}
	return seg, nil
}

// significantLen returns the count of leading coefficients up to the last
// one that still contributes on any axis. Trailing near-zero coefficients
// are skipped during evaluation.
func significantLen(coeffs [3][]float64, ncoe int) int {
	for i := ncoe - 1; i >= 0; i-- {
		if math.Abs(coeffs[0][i])+math.Abs(coeffs[1][i])+math.Abs(coeffs[2][i]) >= negligible {
			return i + 1
		}
	}
	return 0
}

// decodeAxis unpacks one axis worth of tiered variable-width coefficients.
// The 2-byte header nibble-encodes four run-length groups; when the high
// bit of the first byte is set a second byte pair extends the scheme to
// six groups. Whole-byte groups store the magnitude shifted left by one
// with the sign in the low bit; sub-byte groups pack two or four such
// values per byte.
func decodeAxis(c *wire.Cursor, m *BodyMeta) ([]float64, error) {
	hdr, err := c.Bytes(2)
	if err != nil {
		return nil, err
	}
	ngroups := baseGroups
	if hdr[0]&0x80 != 0 {
		ext, err := c.Bytes(2)
		if err != nil {
			return nil, err
		}
		hdr[0] &= 0x7f
		hdr = append(hdr, ext...)
		ngroups = maxGroups
	}

	counts := make([]int, ngroups)
	total := 0
	for g := range counts {
		nib := hdr[g/2]
		if g%2 == 0 {
			counts[g] = int(nib >> 4)
		} else {
			counts[g] = int(nib & 0x0f)
		}
		total += counts[g]
	}
	if total > m.NCoeff {
		return nil, fmt.Errorf("packed %d coefficients but body declares %d", total, m.NCoeff)
	}

	quantum := m.RMax / 2 / 1e9
	coeffs := make([]float64, m.NCoeff)
	idx := 0
	for g, count := range counts {
		if count == 0 {
			continue
		}
		switch width := groupWidths[g]; width {
		case 4, 3, 2, 1:
			for i := 0; i < count; i++ {
				raw, err := readRaw(c, width)
				if err != nil {
					return nil, err
				}
				coeffs[idx] = unquantize(raw, quantum)
				idx++
			}
		default:
			// Packed sub-byte groups: group 4 holds two 4-bit values per
			// byte, group 5 four 2-bit values.
			per, bits := 2, 4
			if g == 5 {
				per, bits = 4, 2
			}
			nbytes := (count + per - 1) / per
			packed, err := c.Bytes(nbytes)
			if err != nil {
				return nil, err
			}
			mask := uint32(1)<<bits - 1
			for i := 0; i < count; i++ {
				shift := uint(bits * (per - 1 - i%per))
				raw := (uint32(packed[i/per]) >> shift) & mask
				coeffs[idx] = unquantize(raw, quantum)
				idx++
			}
		}
	}
	return coeffs, nil
}

func readRaw(c *wire.Cursor, width int) (uint32, error) {
	switch width {
	case 4:
		return c.Uint32()
	case 3:
		return c.Uint24()
	case 2:
		v, err := c.Uint16()
		return uint32(v), err
	default:
		v, err := c.Uint8()
		return uint32(v), err
	}
}

// unquantize turns a packed value back into a coefficient: the low bit is
// the sign flag, the rest the magnitude in units of rmax/2 * 1e-9.
func unquantize(raw uint32, quantum float64) float64 {
	v := float64(raw>>1) * quantum
	if raw&1 != 0 {
		return -v
	}
	return v
}
