package astro

import (
	"math"
	"testing"
)

func TestVec3Norm(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want float64
	}{
		{"zero", Vec3{0, 0, 0}, 0},
		{"unit x", Vec3{1, 0, 0}, 1},
		{"3-4-5", Vec3{3, 4, 0}, 5},
		{"negative", Vec3{-3, -4, 0}, 5},
		{"3D", Vec3{1, 2, 2}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.Norm()
			if math.Abs(got-tt.want) > 1e-10 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3CrossDot(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	if math.Abs(z.Z-1) > 1e-15 || z.X != 0 || z.Y != 0 {
		t.Errorf("x cross y = %v, want (0,0,1)", z)
	}
	if d := x.Dot(y); d != 0 {
		t.Errorf("x dot y = %v, want 0", d)
	}
	if d := z.Dot(z); math.Abs(d-1) > 1e-15 {
		t.Errorf("z dot z = %v, want 1", d)
	}
}

func TestPolarRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
	}{
		{"x axis", Vec3{1.5, 0, 0}},
		{"oblique", Vec3{0.3, -0.4, 0.2}},
		{"near pole", Vec3{1e-6, 1e-6, 2}},
		{"third quadrant", Vec3{-1, -1, -0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.v.ToPolar().Vec()
			if got.Sub(tt.v).Norm() > 1e-12 {
				t.Errorf("round trip %v -> %v", tt.v, got)
			}
		})
	}
}

func TestRotationInverses(t *testing.T) {
	v := Vec3{0.3, -0.7, 0.64}
	for _, a := range []float64{0.1, -1.2, 3.0} {
		if got := RotX(-a).MulVec(RotX(a).MulVec(v)); got.Sub(v).Norm() > 1e-14 {
			t.Errorf("RotX inverse at %v drifted by %v", a, got.Sub(v).Norm())
		}
		if got := RotZ(a).Transpose().MulVec(RotZ(a).MulVec(v)); got.Sub(v).Norm() > 1e-14 {
			t.Errorf("RotZ transpose at %v drifted by %v", a, got.Sub(v).Norm())
		}
	}
}

func TestMeanObliquityJ2000(t *testing.T) {
	got := MeanObliquity(J2000)
	want := 23.43929111111111 * math.Pi / 180
	if math.Abs(got-want) > 1e-8 {
		t.Errorf("MeanObliquity(J2000) = %v, want %v", got, want)
	}
}

func TestNutationAngles1987(t *testing.T) {
	// 1987 April 10, 0h TT (standard worked example): Δψ = -3.788",
	// Δε = +9.443".
	n := NutationAngles(2446895.5)
	if math.Abs(n.Dpsi/Arcsec-(-3.788)) > 0.01 {
		t.Errorf("Δψ = %v arcsec, want -3.788", n.Dpsi/Arcsec)
	}
	if math.Abs(n.Deps/Arcsec-9.443) > 0.01 {
		t.Errorf("Δε = %v arcsec, want 9.443", n.Deps/Arcsec)
	}
}

func TestPrecessionMatrix(t *testing.T) {
	// At the J2000 epoch precession is the identity.
	p := PrecessionMatrix(J2000)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if math.Abs(p[i][j]-want) > 1e-12 {
				t.Errorf("P(J2000)[%d][%d] = %v, want %v", i, j, p[i][j], want)
			}
		}
	}

	// One century out the pole tips by θ ≈ 2004.31 arcsec.
	p = PrecessionMatrix(J2000 + DaysPerCentury)
	pole := p.MulVec(Vec3{0, 0, 1})
	theta := math.Acos(pole.Dot(Vec3{0, 0, 1}))
	if math.Abs(theta/Arcsec-2004.3109) > 1.0 {
		t.Errorf("pole displacement = %v arcsec, want ~2004.31", theta/Arcsec)
	}

	// Rotation matrices stay orthonormal.
	r := p.Mul(p.Transpose())
	if math.Abs(r[0][0]-1) > 1e-12 || math.Abs(r[0][1]) > 1e-12 {
		t.Errorf("P * P^T not identity: %v", r)
	}
}

func TestBiasMatrixSmall(t *testing.T) {
	b := BiasMatrix()
	v := b.MulVec(Vec3{1, 0, 0})
	// The frame bias is tens of milliarcseconds; it must be tiny but
	// nonzero.
	off := math.Acos(v.Dot(Vec3{1, 0, 0}))
	if off == 0 || off/Arcsec > 0.1 {
		t.Errorf("bias rotation of x axis = %v arcsec", off/Arcsec)
	}
}

func TestGMST1987(t *testing.T) {
	// 1987 April 10, 0h UT: GMST = 13h 10m 46.3668s = 197.693195 deg.
	got := GMSTDeg(2446895.5)
	if math.Abs(got-197.693195) > 1e-4 {
		t.Errorf("GMSTDeg = %v, want 197.693195", got)
	}
}

func TestEclipticEquatorialRoundTrip(t *testing.T) {
	eps := MeanObliquity(J2000)
	v := Vec3{0.9, 0.3, 0.1}
	got := EquatorialToEcliptic(EclipticToEquatorial(v, eps), eps)
	if got.Sub(v).Norm() > 1e-14 {
		t.Errorf("round trip drifted by %v", got.Sub(v).Norm())
	}

	// A vector in the ecliptic plane at longitude 90 degrees acquires
	// declination equal to the obliquity.
	eq := EclipticToEquatorial(Vec3{0, 1, 0}, eps)
	dec := math.Asin(eq.Z)
	if math.Abs(dec-eps) > 1e-12 {
		t.Errorf("declination = %v, want obliquity %v", dec, eps)
	}
}

func TestDeltaTPlausible(t *testing.T) {
	tests := []struct {
		name     string
		jd       float64
		min, max float64
	}{
		{"2010", J2000 + 10*365.25, 60, 70},
		{"2000", J2000, 55, 70},
		{"1900", J2000 - 100*365.25, -10, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeltaTSeconds(tt.jd)
			if got < tt.min || got > tt.max {
				t.Errorf("DeltaTSeconds = %v, want within [%v, %v]", got, tt.min, tt.max)
			}
		})
	}
}

func TestObserverGeocentric(t *testing.T) {
	const auKm = 1.495978707e8
	obs := Observer{LonDeg: 0, LatDeg: 0, AltM: 0}
	pos, vel := obs.GeocentricPosVel(J2000, J2000, auKm)

	wantR := EarthEquatorialRadiusKm / auKm
	if math.Abs(pos.Norm()-wantR) > wantR*1e-6 {
		t.Errorf("equatorial site radius = %v AU, want %v", pos.Norm(), wantR)
	}
	// Rotation speed at the equator is about 0.46 km/s.
	wantV := wantR * earthRotRadPerDay
	if math.Abs(vel.Norm()-wantV) > wantV*1e-3 {
		t.Errorf("site speed = %v AU/day, want %v", vel.Norm(), wantV)
	}

	// A pole site barely moves.
	pole := Observer{LatDeg: 90}
	_, pvel := pole.GeocentricPosVel(J2000, J2000, auKm)
	if pvel.Norm() > wantV*0.01 {
		t.Errorf("polar site speed = %v AU/day, want ~0", pvel.Norm())
	}
}
