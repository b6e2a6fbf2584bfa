package geom

import "math"

// ScaleToFit maps src into a target area of the given size, keeping its
// aspect ratio. The uniform scale is the smallest target/extent ratio over
// the axes where both are positive; with no such axis the scale is 1. The
// source center lands on target*0.5, the center of the target area.
func ScaleToFit(src Bounds, target Vec3) Matrix {
	d := src.Delta()
	s := math.Inf(1)
	for _, a := range [3][2]float64{{d.X, target.X}, {d.Y, target.Y}, {d.Z, target.Z}} {
		if a[0] > 0 && a[1] > 0 {
			s = math.Min(s, a[1]/a[0])
		}
	}
	if math.IsInf(s, 1) {
		s = 1
	}
	toCenter := TranslateToCenter(src)
	return Translation(target.Mul(0.5)).Mul(Scaling(V3(s, s, s))).Mul(toCenter)
}

// TranslateToOrigin moves b.Min to (0,0,0).
func TranslateToOrigin(b Bounds) Matrix {
	return Translation(b.Min.Neg())
}

// TranslateToCenter moves b.Center() to (0,0,0).
func TranslateToCenter(b Bounds) Matrix {
	return Translation(b.Center().Neg())
}

// RotateZ rotates about the Z axis by degrees, clockwise positive. The X and
// Y rotations are zero.
func RotateZ(degrees float64) Matrix {
	return rotation(0, 0, -degrees*math.Pi/180)
}

// rotation composes rotations about X, then Y, then Z (radians).
func rotation(rx, ry, rz float64) Matrix {
	cx, sx := math.Cos(rx), math.Sin(rx)
	cy, sy := math.Cos(ry), math.Sin(ry)
	cz, sz := math.Cos(rz), math.Sin(rz)

	x := Matrix{{1, 0, 0, 0}, {0, cx, -sx, 0}, {0, sx, cx, 0}, {0, 0, 0, 1}}
	y := Matrix{{cy, 0, sy, 0}, {0, 1, 0, 0}, {-sy, 0, cy, 0}, {0, 0, 0, 1}}
	z := Matrix{{cz, -sz, 0, 0}, {sz, cz, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	return z.Mul(y).Mul(x)
}
