package geom

import "math"

// Bounds is an axis-aligned box. The zero value is a degenerate box at the
// origin; use [EmptyBounds] to start an accumulation.
type Bounds struct {
	Min, Max Vec3
}

// EmptyBounds returns a bounds that contains nothing. Extending it with the
// first point yields a zero-size box at that point.
func EmptyBounds() Bounds {
	inf := math.Inf(1)
	return Bounds{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// NewBounds returns the box spanned by two opposite corners in any order.
func NewBounds(a, b Vec3) Bounds {
	return EmptyBounds().Extend(a).Extend(b)
}

// IsEmpty reports whether b contains no points.
func (b Bounds) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the smallest box containing b and p.
func (b Bounds) Extend(p Vec3) Bounds {
	return Bounds{
		Min: Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing b and o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.IsEmpty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Center returns the midpoint of b.
func (b Bounds) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Delta returns the size of b along each axis. An empty box has zero size.
func (b Bounds) Delta() Vec3 {
	if b.IsEmpty() {
		return Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// FitsWithin reports whether b's extent is no larger than o's on every axis.
// Only sizes are compared, not positions.
func (b Bounds) FitsWithin(o Bounds) bool {
	d, od := b.Delta(), o.Delta()
	return d.X <= od.X && d.Y <= od.Y && d.Z <= od.Z
}

// Corners returns the eight corners of b.
func (b Bounds) Corners() [8]Vec3 {
	lo, hi := b.Min, b.Max
	return [8]Vec3{
		{lo.X, lo.Y, lo.Z}, {hi.X, lo.Y, lo.Z}, {lo.X, hi.Y, lo.Z}, {hi.X, hi.Y, lo.Z},
		{lo.X, lo.Y, hi.Z}, {hi.X, lo.Y, hi.Z}, {lo.X, hi.Y, hi.Z}, {hi.X, hi.Y, hi.Z},
	}
}

// Transform returns the bounds of b's corners after m is applied.
func (b Bounds) Transform(m Matrix) Bounds {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBounds()
	for _, c := range b.Corners() {
		out = out.Extend(m.Apply(c))
	}
	return out
}
