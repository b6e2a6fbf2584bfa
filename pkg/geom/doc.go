// Package geom provides the vector, bounding-box, and matrix primitives used
// to place drawings on a canvas.
//
// # Overview
//
// All placement math in cadlayout reduces to four transforms:
//
//   - [ScaleToFit]: map a source [Bounds] onto a target area
//   - [TranslateToOrigin]: move a bounds' minimum corner to (0,0,0)
//   - [TranslateToCenter]: move a bounds' center to (0,0,0)
//   - [RotateZ]: rotate about the Z axis, clockwise positive
//
// Transforms are [Matrix] values (4x4, column vectors). They compose with
// [Matrix.Mul], where a.Mul(b) applies b first and then a:
//
//	toOrigin := geom.TranslateToOrigin(b)
//	m := geom.RotateZ(30).Mul(toOrigin) // relocate, then rotate
//	p := m.Apply(b.Min)
//
// # 2D Rendering
//
// Rasterization is two dimensional. [Matrix.Affine] drops the Z row and
// column, producing the 2x3 affine matrix the renderer hands to gogpu/gg.
package geom
