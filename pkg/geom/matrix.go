package geom

import (
	"math"

	"github.com/gogpu/gg"
)

// Matrix is a 4x4 affine transform in row-major order acting on column
// vectors. The bottom row is always (0, 0, 0, 1) for matrices built by this
// package.
type Matrix [4][4]float64

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translation returns a transform that moves points by d.
func Translation(d Vec3) Matrix {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = d.X, d.Y, d.Z
	return m
}

// Scaling returns a transform that scales each axis about the origin.
func Scaling(s Vec3) Matrix {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = s.X, s.Y, s.Z
	return m
}

// Mul returns m * o: the transform that applies o and then m.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[i][k] * o[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// Apply transforms the point p.
func (m Matrix) Apply(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// ApplyVector transforms the displacement v, ignoring translation.
func (m Matrix) ApplyVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// TranslationPart returns the translation column of m.
func (m Matrix) TranslationPart() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}

// IsIdentity reports whether m is exactly the identity.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}

// UniformScale returns the planar scale factor of m, the geometric mean of
// the X and Y axis scales. Radii and stroke widths use it.
func (m Matrix) UniformScale() float64 {
	x := m.ApplyVector(Vec3{X: 1}).Length()
	y := m.ApplyVector(Vec3{Y: 1}).Length()
	if x == 0 || y == 0 {
		return 0
	}
	return math.Sqrt(x * y)
}

// Affine projects m onto the XY plane as a gogpu/gg matrix.
func (m Matrix) Affine() gg.Matrix {
	return gg.Matrix{
		A: m[0][0], B: m[0][1], C: m[0][3],
		D: m[1][0], E: m[1][1], F: m[1][3],
	}
}
