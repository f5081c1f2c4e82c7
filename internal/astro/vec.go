// Package astro provides the reference-frame and time machinery behind the
// apparent-position pipeline: vectors, rotation matrices, obliquity,
// precession, nutation, frame bias and sidereal time.
package astro

import "math"

// Vec3 represents a 3D vector in any reference frame.
type Vec3 struct {
	X, Y, Z float64
}

// Norm returns the magnitude of the vector.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Normalized returns a unit vector in the same direction.
func (v Vec3) Normalized() Vec3 {
	n := v.Norm()
	if n == 0 {
		return Vec3{}
	}
	return Vec3{X: v.X / n, Y: v.Y / n, Z: v.Z / n}
}

// Scale returns the vector scaled by a factor.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Add returns the sum of two vectors.
func (v Vec3) Add(u Vec3) Vec3 {
	return Vec3{X: v.X + u.X, Y: v.Y + u.Y, Z: v.Z + u.Z}
}

// Sub returns the difference of two vectors.
func (v Vec3) Sub(u Vec3) Vec3 {
	return Vec3{X: v.X - u.X, Y: v.Y - u.Y, Z: v.Z - u.Z}
}

// Dot returns the scalar product.
func (v Vec3) Dot(u Vec3) float64 {
	return v.X*u.X + v.Y*u.Y + v.Z*u.Z
}

// Cross returns the vector product.
func (v Vec3) Cross(u Vec3) Vec3 {
	return Vec3{
		X: v.Y*u.Z - v.Z*u.Y,
		Y: v.Z*u.X - v.X*u.Z,
		Z: v.X*u.Y - v.Y*u.X,
	}
}

// Polar holds spherical coordinates: longitude and latitude in radians and
// the radial distance in the length unit of the source vector.
type Polar struct {
	Lon float64
	Lat float64
	R   float64
}

// ToPolar converts a cartesian vector to spherical coordinates. The zero
// vector maps to the zero Polar.
func (v Vec3) ToPolar() Polar {
	r := v.Norm()
	if r == 0 {
		return Polar{}
	}
	lon := math.Atan2(v.Y, v.X)
	if lon < 0 {
		lon += 2 * math.Pi
	}
	return Polar{
		Lon: lon,
		Lat: math.Asin(v.Z / r),
		R:   r,
	}
}

// Vec returns the cartesian form of spherical coordinates.
func (p Polar) Vec() Vec3 {
	cl := math.Cos(p.Lat)
	return Vec3{
		X: p.R * cl * math.Cos(p.Lon),
		Y: p.R * cl * math.Sin(p.Lon),
		Z: p.R * math.Sin(p.Lat),
	}
}

// Mat3 is a 3x3 rotation matrix in row-major order.
type Mat3 [3][3]float64

// Identity3 is the identity rotation.
var Identity3 = Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// MulVec applies the rotation to a vector.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Mul composes two rotations, applying the argument first.
func (m Mat3) Mul(o Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j]
		}
	}
	return r
}

// Transpose returns the inverse of a rotation matrix.
func (m Mat3) Transpose() Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// RotX returns the rotation by angle a (radians) about the X axis.
func RotX(a float64) Mat3 {
	s, c := math.Sincos(a)
	return Mat3{{1, 0, 0}, {0, c, s}, {0, -s, c}}
}

// RotY returns the rotation by angle a about the Y axis.
func RotY(a float64) Mat3 {
	s, c := math.Sincos(a)
	return Mat3{{c, 0, -s}, {0, 1, 0}, {s, 0, c}}
}

// RotZ returns the rotation by angle a about the Z axis.
func RotZ(a float64) Mat3 {
	s, c := math.Sincos(a)
	return Mat3{{c, s, 0}, {-s, c, 0}, {0, 0, 1}}
}
