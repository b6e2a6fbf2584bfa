package layout

import (
	"math"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/geom"
	"github.com/matzehuels/cadlayout/pkg/shape"
)

// ShapeEntities converts a drawable shape into drawing entities in canvas
// coordinates. It returns nil for shapes that are not drawable.
func ShapeEntities(s *shape.Shape) []drawing.Entity {
	if !s.IsDrawable() {
		return nil
	}
	c, _ := s.Center()
	center := c.Vec3()

	var out []drawing.Entity
	switch g := s.Geometry().(type) {
	case shape.Circle:
		out = []drawing.Entity{drawing.NewCircle(center, g.Radius)}
	case shape.Rectangle:
		out = []drawing.Entity{rectangle(center, g.Length, g.Height)}
	case shape.RoundedRectangle:
		out = roundedOutline(center, g.Length, g.Height, g.Radius)
	case shape.Slot:
		out = roundedOutline(center, g.Length, g.Height, g.Radius)
	}
	for _, e := range out {
		e.Head().Layer = LayerShapes
	}
	return out
}

func rectangle(center geom.Vec3, length, height float64) *drawing.Polyline {
	hl, hh := length/2, height/2
	return &drawing.Polyline{
		Vertices: []geom.Vec3{
			center.Add(geom.V3(-hl, -hh, 0)),
			center.Add(geom.V3(hl, -hh, 0)),
			center.Add(geom.V3(hl, hh, 0)),
			center.Add(geom.V3(-hl, hh, 0)),
		},
		Closed: true,
	}
}

// roundedOutline builds a rectangle with circular corners from four edges and
// four quarter arcs. Edges that collapse to a point are left out, so a slot
// has only its two long sides.
func roundedOutline(center geom.Vec3, length, height, radius float64) []drawing.Entity {
	hl, hh := length/2, height/2
	r := math.Min(radius, math.Min(hl, hh))
	ix, iy := hl-r, hh-r

	corners := [4]struct {
		dx, dy, start float64
	}{
		{ix, iy, 0},
		{-ix, iy, 90},
		{-ix, -iy, 180},
		{ix, -iy, 270},
	}
	edges := [4][2]geom.Vec3{
		{geom.V3(-ix, -hh, 0), geom.V3(ix, -hh, 0)},
		{geom.V3(hl, -iy, 0), geom.V3(hl, iy, 0)},
		{geom.V3(ix, hh, 0), geom.V3(-ix, hh, 0)},
		{geom.V3(-hl, iy, 0), geom.V3(-hl, -iy, 0)},
	}

	out := make([]drawing.Entity, 0, 8)
	for _, e := range edges {
		if e[0].ApproxEqual(e[1], 1e-12) {
			continue
		}
		out = append(out, &drawing.Line{Start: center.Add(e[0]), End: center.Add(e[1])})
	}
	for _, c := range corners {
		out = append(out, drawing.NewArc(center.Add(geom.V3(c.dx, c.dy, 0)), r, c.start, c.start+90))
	}
	return out
}

// Container returns a rectangle spanning the canvas.
func Container(width, height float64) drawing.Entity {
	p := rectangle(geom.V3(width/2, height/2, 0), width, height)
	p.Layer = LayerContainer
	return p
}
