package sefile

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"math"
)

// Builder assembles a complete ephemeris file in memory, mirroring the
// decoder byte for byte. Tests use it to produce fixtures with known
// trajectories; it is also the reference implementation for the tiered
// packing round trip.
type Builder struct {
	FileName  string
	Version   string
	Copyright string
	// ElementsLine, when set, is written as the extra preamble line of a
	// single-body auxiliary file.
	ElementsLine string
	SourceID     int32
	TStart       float64
	TEnd         float64
	BigEndian    bool

	Clight       float64
	AU           float64
	HelGravConst float64
	EMRatio      float64
	SunRadius    float64

	bodies []builderBody
}

type builderBody struct {
	meta BodyMeta
	segs [][3][]float64
}

// NewBuilder returns a builder with standard physical constants and a
// validity window that must be set by the caller alongside the bodies.
func NewBuilder(fileName string) *Builder {
	return &Builder{
		FileName:     fileName,
		Version:      "SE1.00",
		Copyright:    "test ephemeris data",
		SourceID:     441,
		Clight:       2.99792458e8,
		AU:           1.495978707e11,
		HelGravConst: 1.32712440017987e20,
		EMRatio:      81.300569,
		SunRadius:    959.63 / 3600 * math.Pi / 180,
	}
}

// AddBody registers a body with its per-segment raw coefficients. The
// coefficients are quantized against meta.RMax exactly as the decoder
// expects; segments must cover [meta.TStart, meta.TEnd) in steps of
// meta.DSeg.
func (b *Builder) AddBody(meta BodyMeta, segs [][3][]float64) {
	meta.NSeg = len(segs)
	b.bodies = append(b.bodies, builderBody{meta: meta, segs: segs})
}

// Build assembles and returns the file bytes.
func (b *Builder) Build() ([]byte, error) {
	order := binary.ByteOrder(binary.LittleEndian)
	if b.BigEndian {
		order = binary.BigEndian
	}

	// Encode all segment blocks up front so index tables can carry final
	// offsets on the single forward pass.
	type encodedBody struct {
		blocks [][]byte
	}
	encoded := make([]encodedBody, len(b.bodies))
	for i, body := range b.bodies {
		for s, seg := range body.segs {
			var block []byte
			for axis := 0; axis < 3; axis++ {
				ax, err := encodeAxis(seg[axis], body.meta.RMax, body.meta.NCoeff, order)
				if err != nil {
					return nil, fmt.Errorf("body %d segment %d axis %d: %w", body.meta.ID, s, axis, err)
				}
				block = append(block, ax...)
			}
			encoded[i].blocks = append(encoded[i].blocks, block)
		}
	}

	wideIDs := false
	for _, body := range b.bodies {
		if body.meta.ID > 0xffff {
			wideIDs = true
		}
	}
	idWidth := 2
	if wideIDs {
		idWidth = 4
	}

	preamble := b.Version + "\n" + b.FileName + "\n" + b.Copyright + "\n"
	if b.ElementsLine != "" {
		preamble += b.ElementsLine + "\n"
	}

	headerSize := len(preamble) + 4 + 4 + 4 + 16 // magic, length, source, window
	headerSize += 2 + len(b.bodies)*idWidth      // body count and ids
	headerSize += 4 + 5*8                        // crc and constants
	for _, body := range b.bodies {
		headerSize += bodyMetaSize(&body.meta)
	}

	indexStart := headerSize
	segDataStart := indexStart
	for _, body := range b.bodies {
		segDataStart += len(body.segs) * 3
	}

	// Assign index table positions and absolute segment offsets.
	indexOffsets := make([]uint32, len(b.bodies))
	pos := indexStart
	for i, body := range b.bodies {
		indexOffsets[i] = uint32(pos)
		pos += len(body.segs) * 3
	}
	segOffsets := make([][]uint32, len(b.bodies))
	pos = segDataStart
	for i := range b.bodies {
		for _, block := range encoded[i].blocks {
			segOffsets[i] = append(segOffsets[i], uint32(pos))
			pos += len(block)
		}
	}
	totalSize := pos
	if totalSize >= 1<<24 {
		return nil, fmt.Errorf("file of %d bytes exceeds the 3-byte segment offset range", totalSize)
	}

	out := make([]byte, 0, totalSize)
	out = append(out, preamble...)
	out = appendUint32(out, order, MagicEndian)
	out = appendUint32(out, order, uint32(totalSize))
	out = appendUint32(out, order, uint32(b.SourceID))
	out = appendFloat64(out, order, b.TStart)
	out = appendFloat64(out, order, b.TEnd)

	count := len(b.bodies)
	if wideIDs {
		count += 256
	}
	out = appendUint16(out, order, uint16(count))
	for _, body := range b.bodies {
		if wideIDs {
			out = appendUint32(out, order, uint32(body.meta.ID))
		} else {
			out = appendUint16(out, order, uint16(body.meta.ID))
		}
	}

	out = appendUint32(out, order, crc32.ChecksumIEEE(out))

	for _, v := range []float64{b.Clight, b.AU, b.HelGravConst, b.EMRatio, b.SunRadius} {
		out = appendFloat64(out, order, v)
	}

	for i, body := range b.bodies {
		m := &body.meta
		out = appendUint32(out, order, indexOffsets[i])
		out = append(out, m.Flags, uint8(m.NCoeff))
		scale := 1000.0
		if m.ID >= SatelliteIDLow && m.ID <= SatelliteIDHigh {
			scale = 1000000.0
		}
		out = appendUint32(out, order, uint32(int32(math.Round(m.RMax*scale))))
		for _, v := range []float64{m.TStart, m.TEnd, m.DSeg,
			m.Telem, m.Prot, m.Qrot, m.DProt, m.DQrot, m.Peri, m.DPeri, 0, 0, 0} {
			out = appendFloat64(out, order, v)
		}
		if m.Flags&FlagEllipse != 0 {
			for _, v := range m.RefEllipseX {
				out = appendFloat64(out, order, v)
			}
			for _, v := range m.RefEllipseY {
				out = appendFloat64(out, order, v)
			}
		}
	}

	for i := range b.bodies {
		for _, off := range segOffsets[i] {
			out = appendUint24(out, order, off)
		}
	}
	for i := range b.bodies {
		for _, block := range encoded[i].blocks {
			out = append(out, block...)
		}
	}

	if len(out) != totalSize {
		return nil, fmt.Errorf("layout error: wrote %d bytes, computed %d", len(out), totalSize)
	}
	return out, nil
}

func bodyMetaSize(m *BodyMeta) int {
	size := 4 + 1 + 1 + 4 + 13*8
	if m.Flags&FlagEllipse != 0 {
		size += 2 * m.NCoeff * 8
	}
	return size
}

// encodeAxis packs one axis of coefficients with the tiered scheme. Widths
// are forced non-increasing along the series so the run-length groups stay
// in their fixed order; trailing zero coefficients are dropped.
func encodeAxis(coeffs []float64, rmax float64, ncoe int, order binary.ByteOrder) ([]byte, error) {
	if len(coeffs) > ncoe {
		return nil, fmt.Errorf("%d coefficients exceed declared count %d", len(coeffs), ncoe)
	}
	quantum := rmax / 2 / 1e9

	raws := make([]uint32, len(coeffs))
	for i, v := range coeffs {
		q := math.Round(math.Abs(v) / quantum)
		if q > float64(math.MaxUint32>>1) {
			return nil, fmt.Errorf("coefficient %g exceeds rmax bound %g", v, rmax)
		}
		raw := uint32(q) << 1
		if v < 0 && raw != 0 {
			raw |= 1
		}
		raws[i] = raw
	}
	for len(raws) > 0 && raws[len(raws)-1] == 0 {
		raws = raws[:len(raws)-1]
	}

	groups := make([]int, len(raws))
	for i, raw := range raws {
		groups[i] = groupFor(raw)
	}
	// A later coefficient needing a wider group pulls every earlier one at
	// least as wide.
	for i := len(groups) - 2; i >= 0; i-- {
		if groups[i+1] < groups[i] {
			groups[i] = groups[i+1]
		}
	}

	counts := make([]int, maxGroups)
	for _, g := range groups {
		counts[g]++
	}
	for g, n := range counts {
		if n > maxGroupRun {
			return nil, fmt.Errorf("group %d run of %d exceeds the nibble limit %d", g, n, maxGroupRun)
		}
	}

	extended := counts[4] > 0 || counts[5] > 0
	nhdr := baseGroups
	if extended {
		nhdr = maxGroups
	}
	hdr := make([]byte, 2)
	if extended {
		hdr = make([]byte, 4)
	}
	for g := 0; g < nhdr; g++ {
		if g%2 == 0 {
			hdr[g/2] |= uint8(counts[g]) << 4
		} else {
			hdr[g/2] |= uint8(counts[g])
		}
	}
	if extended {
		hdr[0] |= 0x80
	}

	out := hdr
	idx := 0
	for g := 0; g < nhdr; g++ {
		count := counts[g]
		if count == 0 {
			continue
		}
		switch width := groupWidths[g]; width {
		case 4:
			for i := 0; i < count; i++ {
				out = appendUint32(out, order, raws[idx])
				idx++
			}
		case 3:
			for i := 0; i < count; i++ {
				out = appendUint24(out, order, raws[idx])
				idx++
			}
		case 2:
			for i := 0; i < count; i++ {
				out = appendUint16(out, order, uint16(raws[idx]))
				idx++
			}
		case 1:
			for i := 0; i < count; i++ {
				out = append(out, uint8(raws[idx]))
				idx++
			}
		default:
			per, bits := 2, 4
			if g == 5 {
				per, bits = 4, 2
			}
			nbytes := (count + per - 1) / per
			packed := make([]byte, nbytes)
			for i := 0; i < count; i++ {
				shift := uint(bits * (per - 1 - i%per))
				packed[i/per] |= uint8(raws[idx]) << shift
				idx++
			}
			out = append(out, packed...)
		}
	}
	return out, nil
}

// groupFor picks the narrowest packing group that can hold a raw value.
func groupFor(raw uint32) int {
	switch {
	case raw < 1<<2:
		return 5
	case raw < 1<<4:
		return 4
	case raw < 1<<8:
		return 3
	case raw < 1<<16:
		return 2
	case raw < 1<<24:
		return 1
	default:
		return 0
	}
}

func appendUint16(b []byte, order binary.ByteOrder, v uint16) []byte {
	var tmp [2]byte
	order.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint32(b []byte, order binary.ByteOrder, v uint32) []byte {
	var tmp [4]byte
	order.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint24(b []byte, order binary.ByteOrder, v uint32) []byte {
	if order == binary.LittleEndian {
		return append(b, byte(v), byte(v>>8), byte(v>>16))
	}
	return append(b, byte(v>>16), byte(v>>8), byte(v))
}

func appendFloat64(b []byte, order binary.ByteOrder, v float64) []byte {
	var tmp [8]byte
	order.PutUint64(tmp[:], math.Float64bits(v))
	return append(b, tmp[:]...)
}
