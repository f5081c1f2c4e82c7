package sefile

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/litescript/ls-ephemeris/internal/wire"
)

func testMeta(id int) BodyMeta {
	return BodyMeta{
		ID:     id,
		NCoeff: 8,
		RMax:   12.0,
		TStart: 2451545.0,
		TEnd:   2451645.0,
		DSeg:   50.0,
	}
}

// circularCoeffs returns Chebyshev coefficients approximating uniform
// circular motion of radius r over one segment: cos on x, sin on y, a small
// constant tilt on z. Only the leading terms matter for continuity checks.
func circularCoeffs(r, phase float64) [3][]float64 {
	return [3][]float64{
		{r * math.Cos(phase), -r * math.Sin(phase) * 0.5, -r * math.Cos(phase) * 0.12, r * 0.002},
		{r * math.Sin(phase), r * math.Cos(phase) * 0.5, -r * math.Sin(phase) * 0.12, r * 0.001},
		{r * 0.01, r * 0.0004, 0, 0},
	}
}

func buildTestFile(t *testing.T, bigEndian bool) (string, []byte) {
	t.Helper()
	b := NewBuilder("sepl_test.se1")
	b.TStart = 2451545.0
	b.TEnd = 2451645.0
	b.BigEndian = bigEndian
	b.AddBody(testMeta(2), [][3][]float64{
		circularCoeffs(0.723, 0),
		circularCoeffs(0.723, 1.1),
	})
	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	return "sepl_test.se1", data
}

func TestRoundTripPackingGroups(t *testing.T) {
	const rmax = 2.0
	quantum := rmax / 2 / 1e9

	tests := []struct {
		name   string
		coeffs []float64
	}{
		{"four byte group", []float64{0.9, -0.85, 0.4}},
		{"three byte group", []float64{quantum * 300000, -quantum * 65536}},
		{"two byte group", []float64{quantum * 30000, -quantum * 256}},
		{"one byte group", []float64{quantum * 100, -quantum * 17}},
		{"half byte group", []float64{quantum * 7, -quantum * 6, quantum * 4}},
		{"quarter byte group", []float64{quantum, -quantum, quantum, quantum}},
		{"mixed tiers", []float64{0.5, -0.01, quantum * 40000, quantum * 120, -quantum * 5, quantum}},
		{"trailing zeros dropped", []float64{0.25, quantum * 10, 0, 0, 0, 0}},
		{"all zero", []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
				packed, err := encodeAxis(tt.coeffs, rmax, 8, order)
				if err != nil {
					t.Fatalf("encodeAxis() error: %v", err)
				}

				c := wire.NewCursor(packed)
				c.SetOrder(order)
				m := &BodyMeta{NCoeff: 8, RMax: rmax}
				got, err := decodeAxis(c, m)
				if err != nil {
					t.Fatalf("decodeAxis() error: %v", err)
				}
				if c.Tell() != len(packed) {
					t.Errorf("decode consumed %d of %d bytes", c.Tell(), len(packed))
				}

				for i, want := range tt.coeffs {
					if diff := math.Abs(got[i] - want); diff > quantum/2+1e-18 {
						t.Errorf("%v coeff[%d] = %v, want %v (off by %v > quantum/2)",
							order, i, got[i], want, diff)
					}
				}
			}
		})
	}
}

func TestRoundTripQuantizationBound(t *testing.T) {
	const rmax = 10.0
	quantum := rmax / 2 / 1e9

	coeffs := []float64{4.9999, -3.14159265, 0.000123456, -quantum * 1.4}
	packed, err := encodeAxis(coeffs, rmax, 8, binary.LittleEndian)
	if err != nil {
		t.Fatalf("encodeAxis() error: %v", err)
	}
	c := wire.NewCursor(packed)
	got, err := decodeAxis(c, &BodyMeta{NCoeff: 8, RMax: rmax})
	if err != nil {
		t.Fatalf("decodeAxis() error: %v", err)
	}
	for i, want := range coeffs {
		if math.Abs(got[i]-want) > quantum/2*(1+1e-9) {
			t.Errorf("coeff[%d] error %v exceeds quantization step", i, got[i]-want)
		}
	}
}

func TestEncodeAxisRejectsOverflow(t *testing.T) {
	if _, err := encodeAxis([]float64{100.0}, 2.0, 8, binary.LittleEndian); err == nil {
		t.Error("coefficient above the rmax bound should fail to encode")
	}
}

func TestParseHeader(t *testing.T) {
	name, data := buildTestFile(t, false)

	h, err := ParseHeader(name, data)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}
	if h.SourceID != 441 {
		t.Errorf("SourceID = %d, want 441", h.SourceID)
	}
	if h.TStart != 2451545.0 || h.TEnd != 2451645.0 {
		t.Errorf("window = [%f, %f], want [2451545, 2451645]", h.TStart, h.TEnd)
	}
	if len(h.Bodies) != 1 || h.Body(2) == nil {
		t.Fatalf("Bodies = %v, want exactly body 2", h.Bodies)
	}
	m := h.Body(2)
	if m.NCoeff != 8 || m.NSeg != 2 || m.DSeg != 50.0 {
		t.Errorf("BodyMeta = %+v", m)
	}
	if h.EMRatio < 81.3 || h.EMRatio > 81.31 {
		t.Errorf("EMRatio = %f", h.EMRatio)
	}
	if !h.Covers(2451600) || h.Covers(2451646) {
		t.Error("Covers() window check failed")
	}
}

func TestParseHeaderCaseInsensitiveName(t *testing.T) {
	name, data := buildTestFile(t, false)
	if _, err := ParseHeader("ephe/"+name, data); err != nil {
		t.Errorf("path prefix should be ignored: %v", err)
	}
	if _, err := ParseHeader("SEPL_TEST.SE1", data); err != nil {
		t.Errorf("case should be ignored: %v", err)
	}
	if _, err := ParseHeader("other.se1", data); err == nil {
		t.Error("mismatched name should fail")
	}
}

func TestParseHeaderCorruption(t *testing.T) {
	name, clean := buildTestFile(t, false)
	h, err := ParseHeader(name, clean)
	if err != nil {
		t.Fatalf("clean file should parse: %v", err)
	}
	// Offsets inside the fixed-width region after the three text lines.
	preamble := 0
	for i, n := 0, 0; i < len(clean); i++ {
		if clean[i] == '\n' {
			n++
			if n == 3 {
				preamble = i + 1
				break
			}
		}
	}

	tests := []struct {
		name   string
		mutate func([]byte)
	}{
		{"flipped magic byte", func(d []byte) { d[preamble] ^= 0xff }},
		{"declared length off by one", func(d []byte) { d[preamble+4]++ }},
		{"flipped crc byte", func(d []byte) {
			// CRC sits after window (16), count (2) and one 2-byte id,
			// relative to the end of magic/length/source.
			crcPos := preamble + 12 + 16 + 2 + 2
			d[crcPos] ^= 0x01
		}},
		{"flipped body id byte", func(d []byte) { d[preamble+12+16+2] ^= 0x01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := append([]byte(nil), clean...)
			tt.mutate(data)
			got, err := ParseHeader(name, data)
			if !errors.Is(err, ErrCorrupt) {
				t.Fatalf("ParseHeader() = %v, %v, want ErrCorrupt", got, err)
			}
			if got != nil {
				t.Error("no partially initialized header may escape a failed parse")
			}
		})
	}
	_ = h
}

func TestEndiannessEquivalence(t *testing.T) {
	name, little := buildTestFile(t, false)
	_, big := buildTestFile(t, true)

	hl, err := ParseHeader(name, little)
	if err != nil {
		t.Fatalf("little-endian parse: %v", err)
	}
	hb, err := ParseHeader(name, big)
	if err != nil {
		t.Fatalf("big-endian parse: %v", err)
	}
	if hl.BigEndian || !hb.BigEndian {
		t.Fatalf("endianness flags: little=%v big=%v", hl.BigEndian, hb.BigEndian)
	}

	sl, err := LoadSegment(hl, name, little, 2, 2451560.0)
	if err != nil {
		t.Fatalf("little-endian segment: %v", err)
	}
	sb, err := LoadSegment(hb, name, big, 2, 2451560.0)
	if err != nil {
		t.Fatalf("big-endian segment: %v", err)
	}
	for axis := 0; axis < 3; axis++ {
		for i := range sl.Coeffs[axis] {
			if sl.Coeffs[axis][i] != sb.Coeffs[axis][i] {
				t.Errorf("axis %d coeff %d: little %v != big %v",
					axis, i, sl.Coeffs[axis][i], sb.Coeffs[axis][i])
			}
		}
	}
}

func TestLoadSegmentSelection(t *testing.T) {
	name, data := buildTestFile(t, false)
	h, err := ParseHeader(name, data)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}

	s0, err := LoadSegment(h, name, data, 2, 2451545.0)
	if err != nil {
		t.Fatalf("first segment: %v", err)
	}
	if s0.TStart != 2451545.0 || s0.TEnd != 2451595.0 {
		t.Errorf("segment 0 interval = [%f, %f)", s0.TStart, s0.TEnd)
	}
	if !s0.Covers(2451545.0) || s0.Covers(2451595.0) {
		t.Error("segment 0 Covers() wrong at boundaries")
	}

	s1, err := LoadSegment(h, name, data, 2, 2451600.0)
	if err != nil {
		t.Fatalf("second segment: %v", err)
	}
	if s1.TStart != 2451595.0 {
		t.Errorf("segment 1 start = %f, want 2451595", s1.TStart)
	}

	if _, err := LoadSegment(h, name, data, 2, 2451645.0); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("time at window end should be out of range, got %v", err)
	}
	if _, err := LoadSegment(h, name, data, 5, 2451560.0); !errors.Is(err, ErrBodyAbsent) {
		t.Errorf("unknown body should be absent, got %v", err)
	}
}

func TestElementsLine(t *testing.T) {
	b := NewBuilder("ast433.se1")
	b.TStart = 2451545.0
	b.TEnd = 2451745.0
	b.ElementsLine = "433 Eros, 10.31, 0.46"
	meta := testMeta(10433)
	meta.TEnd = 2451745.0
	b.AddBody(meta, [][3][]float64{
		circularCoeffs(1.458, 0), circularCoeffs(1.458, 0.4),
		circularCoeffs(1.458, 0.8), circularCoeffs(1.458, 1.2),
	})
	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	h, err := ParseHeader("ast433.se1", data)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}
	if h.Elements == nil {
		t.Fatal("Elements not parsed")
	}
	if h.Elements.Name != "433 Eros" || h.Elements.HMag != 10.31 {
		t.Errorf("Elements = %+v", h.Elements)
	}
	wantD := 1329.0 / math.Sqrt(0.15) * math.Pow(10, -10.31/5)
	if math.Abs(h.Elements.Diameter-wantD) > 1e-9 {
		t.Errorf("default diameter = %f, want %f", h.Elements.Diameter, wantD)
	}
	if h.Body(10433) == nil {
		t.Error("asteroid body missing")
	}
}

func TestWideBodyIdentifiers(t *testing.T) {
	b := NewBuilder("ast136199.se1")
	b.TStart = 2451545.0
	b.TEnd = 2451645.0
	meta := testMeta(146199) // above the 16-bit range
	b.AddBody(meta, [][3][]float64{
		circularCoeffs(9.5, 0), circularCoeffs(9.5, 0.02),
	})
	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	h, err := ParseHeader("ast136199.se1", data)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}
	if h.Body(146199) == nil {
		t.Error("wide-id body missing after parse")
	}
}

// rotationSegment wraps raw coefficients in a segment padded to the
// declared count, covering the body's first sub-interval.
func rotationSegment(m *BodyMeta, coeffs [3][]float64) *Segment {
	seg := &Segment{Body: m.ID, TStart: m.TStart, TEnd: m.TStart + m.DSeg}
	for axis := 0; axis < 3; axis++ {
		seg.Coeffs[axis] = append([]float64(nil), coeffs[axis]...)
		for len(seg.Coeffs[axis]) < m.NCoeff {
			seg.Coeffs[axis] = append(seg.Coeffs[axis], 0)
		}
	}
	return seg
}

func matMul(a, b [3][3]float64) [3][3]float64 {
	var out [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				out[i][j] += a[i][k] * b[k][j]
			}
		}
	}
	return out
}

// planeMatrix builds the orbital-plane rotation as an explicit
// node-inclination-node composition, independent of the equinoctial
// triad the decoder uses.
func planeMatrix(pav, qav float64) [3][3]float64 {
	incl := 2 * math.Atan(math.Hypot(pav, qav))
	node := math.Atan2(pav, qav)
	rz := func(a float64) [3][3]float64 {
		s, c := math.Sin(a), math.Cos(a)
		return [3][3]float64{{c, -s, 0}, {s, c, 0}, {0, 0, 1}}
	}
	si, ci := math.Sin(incl), math.Cos(incl)
	rx := [3][3]float64{{1, 0, 0}, {0, ci, -si}, {0, si, ci}}
	return matMul(matMul(rz(node), rx), rz(-node))
}

func TestRotateToEquatorialIdentity(t *testing.T) {
	// With zero equinoctial parameters the triad is the identity; the
	// segment must come back unchanged for a non-Moon body.
	meta := testMeta(2)
	meta.Flags = FlagRotate
	meta.Telem = meta.TStart
	want := circularCoeffs(0.7, 0.3)
	seg := rotationSegment(&meta, want)
	rotateToEquatorial(&meta, seg)

	for axis := 0; axis < 3; axis++ {
		for i, v := range want[axis] {
			if math.Abs(seg.Coeffs[axis][i]-v) > 1e-15 {
				t.Errorf("identity rotation changed coeff[%d][%d]: %v != %v",
					axis, i, seg.Coeffs[axis][i], v)
			}
		}
	}
	if seg.NEval == 0 {
		t.Error("NEval should cover significant coefficients")
	}
}

func TestRotateToEquatorialInclinedPlane(t *testing.T) {
	meta := testMeta(2)
	meta.Flags = FlagRotate
	meta.Telem = meta.TStart
	meta.Prot, meta.Qrot = 0.031, -0.044
	meta.DProt, meta.DQrot = 0.8, -1.3 // radians per millennium

	want := circularCoeffs(0.7, 0.3)
	seg := rotationSegment(&meta, want)
	rotateToEquatorial(&meta, seg)

	// The parameters drift linearly to the segment midpoint before the
	// plane is built.
	tm := meta.DSeg / 2 / daysPerMillennium
	rot := planeMatrix(meta.Prot+tm*meta.DProt, meta.Qrot+tm*meta.DQrot)
	for i := 0; i < meta.NCoeff; i++ {
		var v [3]float64
		for axis := 0; axis < 3; axis++ {
			if i < len(want[axis]) {
				v[axis] = want[axis][i]
			}
		}
		for axis := 0; axis < 3; axis++ {
			exp := rot[axis][0]*v[0] + rot[axis][1]*v[1] + rot[axis][2]*v[2]
			if math.Abs(seg.Coeffs[axis][i]-exp) > 1e-12 {
				t.Errorf("coeff[%d][%d] = %v, want %v", axis, i, seg.Coeffs[axis][i], exp)
			}
		}
	}
	if seg.NEval != 4 {
		t.Errorf("NEval = %d, want 4", seg.NEval)
	}
}

func TestRotateToEquatorialMoon(t *testing.T) {
	const (
		dn0, nodeRate = 1.9, -240.0 // drifting node angle
		q0, qRate     = 0.0449, 0.002
	)
	want := circularCoeffs(0.0025, 1.2)

	moonMeta := testMeta(MoonID)
	moonMeta.Flags = FlagRotate
	moonMeta.Telem = moonMeta.TStart
	moonMeta.Prot, moonMeta.DProt = dn0, nodeRate
	moonMeta.Qrot, moonMeta.DQrot = q0, qRate
	moonSeg := rotationSegment(&moonMeta, want)
	rotateToEquatorial(&moonMeta, moonSeg)

	// A non-Moon body given the already resolved equinoctial pair spans
	// the same plane; the Moon result must differ from it by exactly the
	// ecliptic to equator tilt.
	tm := moonMeta.DSeg / 2 / daysPerMillennium
	dn := math.Mod(dn0+tm*nodeRate, 2*math.Pi)
	q := q0 + tm*qRate
	flatMeta := testMeta(2)
	flatMeta.Flags = FlagRotate
	flatMeta.Telem = flatMeta.TStart + flatMeta.DSeg/2
	flatMeta.Qrot = q * math.Cos(dn)
	flatMeta.Prot = q * math.Sin(dn)
	flatSeg := rotationSegment(&flatMeta, want)
	rotateToEquatorial(&flatMeta, flatSeg)

	ce, se := math.Cos(eps2000), math.Sin(eps2000)
	for i := 0; i < moonMeta.NCoeff; i++ {
		x, y, z := flatSeg.Coeffs[0][i], flatSeg.Coeffs[1][i], flatSeg.Coeffs[2][i]
		exp := [3]float64{x, ce*y - se*z, se*y + ce*z}
		for axis := 0; axis < 3; axis++ {
			if math.Abs(moonSeg.Coeffs[axis][i]-exp[axis]) > 1e-15 {
				t.Errorf("coeff[%d][%d] = %v, want %v", axis, i, moonSeg.Coeffs[axis][i], exp[axis])
			}
		}
	}
	if math.Abs(moonSeg.Coeffs[1][0]-flatSeg.Coeffs[1][0]) < 1e-6 {
		t.Error("ecliptic to equator tilt left the y axis unchanged")
	}
}

func TestReferenceEllipseDecode(t *testing.T) {
	const name = "semo_test.se1"
	b := NewBuilder(name)
	b.TStart, b.TEnd = 2451545.0, 2451595.0

	meta := testMeta(2)
	meta.TEnd = meta.TStart + meta.DSeg
	meta.Flags = FlagRotate | FlagEllipse
	// Anchor the element epoch at the segment midpoint so the perihelion
	// angle is exactly Peri.
	meta.Telem = meta.TStart + meta.DSeg/2
	meta.Peri = 0.7
	meta.DPeri = 3.2
	rx := []float64{0.04, -0.01, 0.003, 0, 0, 0, 0, 0}
	ry := []float64{-0.02, 0.015, 0.001, 0, 0, 0, 0, 0}
	meta.RefEllipseX, meta.RefEllipseY = rx, ry

	raw := circularCoeffs(0.9, 0.2)
	b.AddBody(meta, [][3][]float64{raw})
	data, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	h, err := ParseHeader(name, data)
	if err != nil {
		t.Fatalf("ParseHeader() error: %v", err)
	}
	seg, err := LoadSegment(h, name, data, 2, 2451560.0)
	if err != nil {
		t.Fatalf("LoadSegment() error: %v", err)
	}

	quantum := meta.RMax / 2 / 1e9
	com, som := math.Cos(meta.Peri), math.Sin(meta.Peri)
	for i := 0; i < meta.NCoeff; i++ {
		var v [3]float64
		for axis := 0; axis < 3; axis++ {
			if i < len(raw[axis]) {
				v[axis] = raw[axis][i]
			}
		}
		exp := [3]float64{
			v[0] + com*rx[i] - som*ry[i],
			v[1] + com*ry[i] + som*rx[i],
			v[2],
		}
		for axis := 0; axis < 3; axis++ {
			if math.Abs(seg.Coeffs[axis][i]-exp[axis]) > quantum/2+1e-15 {
				t.Errorf("coeff[%d][%d] = %v, want %v", axis, i, seg.Coeffs[axis][i], exp[axis])
			}
		}
	}
	if seg.NEval == 0 {
		t.Error("NEval should cover significant coefficients")
	}
}
