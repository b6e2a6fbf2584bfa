package shape

import (
	"errors"

	"github.com/matzehuels/cadlayout/pkg/geom"
	"github.com/matzehuels/cadlayout/pkg/observable"
)

// ErrNotApplicable is returned by setters for fields the current geometry
// variant does not have, such as the height of a circle.
var ErrNotApplicable = errors.New("field not applicable to shape kind")

// Field names reported in a Change.
const (
	FieldCoordinates = "Coordinates"
	FieldGeometry    = "Geometry"
	FieldLength      = "Length"
	FieldHeight      = "Height"
	FieldRadius      = "Radius"
)

// Change describes a mutation of a shape.
type Change struct {
	Shape *Shape
	Field string
}

// Shape is a procedural entity authored in canvas coordinates.
type Shape struct {
	name     string
	center   *geom.Vec2
	geometry Geometry
	dirty    bool
	changes  observable.Subject[Change]
}

// New creates a shape without coordinates.
func New(name string, g Geometry) *Shape {
	return &Shape{name: name, geometry: g}
}

// Name returns the shape's label.
func (s *Shape) Name() string { return s.name }

// Geometry returns the current sizing.
func (s *Shape) Geometry() Geometry { return s.geometry }

// Kind returns the geometry variant.
func (s *Shape) Kind() Kind { return s.geometry.Kind() }

// Center returns the center and whether it has been set.
func (s *Shape) Center() (geom.Vec2, bool) {
	if s.center == nil {
		return geom.Vec2{}, false
	}
	return *s.center, true
}

// HasCoordinates reports whether the center has been set.
func (s *Shape) HasCoordinates() bool { return s.center != nil }

// Subscribe registers fn for change notifications.
func (s *Shape) Subscribe(fn func(Change)) observable.Subscription {
	return s.changes.Subscribe(fn)
}

// Unsubscribe removes a listener registered with Subscribe.
func (s *Shape) Unsubscribe(id observable.Subscription) {
	s.changes.Unsubscribe(id)
}

// HasUnsavedChanges reports whether the shape changed since MarkSaved.
func (s *Shape) HasUnsavedChanges() bool { return s.dirty }

// MarkSaved clears the unsaved-changes flag.
func (s *Shape) MarkSaved() { s.dirty = false }

func (s *Shape) changed(field string) {
	s.dirty = true
	s.changes.Notify(Change{Shape: s, Field: field})
}

// SetCoordinates sets both center coordinates at once.
func (s *Shape) SetCoordinates(x, y float64) {
	s.center = &geom.Vec2{X: x, Y: y}
	s.changed(FieldCoordinates)
}

// ClearCoordinates removes the center.
func (s *Shape) ClearCoordinates() {
	s.center = nil
	s.changed(FieldCoordinates)
}

// SetGeometry replaces the variant and its sizing.
func (s *Shape) SetGeometry(g Geometry) {
	s.geometry = g
	s.changed(FieldGeometry)
}

// SetLength sets the X extent. Circles have no length.
func (s *Shape) SetLength(v float64) error {
	switch g := s.geometry.(type) {
	case Rectangle:
		g.Length = v
		s.geometry = g
	case RoundedRectangle:
		g.Length = v
		s.geometry = g
	case Slot:
		g.Length = v
		s.geometry = g
	default:
		return ErrNotApplicable
	}
	s.changed(FieldLength)
	return nil
}

// SetHeight sets the Y extent. On a Slot the radius follows as height/2.
func (s *Shape) SetHeight(v float64) error {
	switch g := s.geometry.(type) {
	case Rectangle:
		g.Height = v
		s.geometry = g
	case RoundedRectangle:
		g.Height = v
		s.geometry = g
	case Slot:
		g.Height = v
		g.Radius = v / 2
		s.geometry = g
	default:
		return ErrNotApplicable
	}
	s.changed(FieldHeight)
	return nil
}

// SetRadius sets the circle radius or the corner radius. Rectangles have no
// radius.
func (s *Shape) SetRadius(v float64) error {
	switch g := s.geometry.(type) {
	case Circle:
		g.Radius = v
		s.geometry = g
	case RoundedRectangle:
		g.Radius = v
		s.geometry = g
	case Slot:
		g.Radius = v
		s.geometry = g
	default:
		return ErrNotApplicable
	}
	s.changed(FieldRadius)
	return nil
}

// IsSized reports whether the geometry has a valid positive size.
func (s *Shape) IsSized() bool { return s.geometry != nil && s.geometry.IsSized() }

// IsDrawable reports whether the shape has coordinates and a valid size.
func (s *Shape) IsDrawable() bool { return s.HasCoordinates() && s.IsSized() }

// Bottom returns the lowest Y of the shape, if the center is set.
func (s *Shape) Bottom() (float64, bool) {
	c, ok := s.Center()
	if !ok || s.geometry == nil {
		return 0, false
	}
	_, hy := s.geometry.halfExtent()
	return c.Y - hy, true
}

// Left returns the lowest X of the shape, if the center is set.
func (s *Shape) Left() (float64, bool) {
	c, ok := s.Center()
	if !ok || s.geometry == nil {
		return 0, false
	}
	hx, _ := s.geometry.halfExtent()
	return c.X - hx, true
}

// Bounds returns the shape's footprint in the Z=0 plane. It is empty unless
// the shape is drawable.
func (s *Shape) Bounds() geom.Bounds {
	if !s.IsDrawable() {
		return geom.EmptyBounds()
	}
	c, _ := s.Center()
	hx, hy := s.geometry.halfExtent()
	return geom.NewBounds(geom.V3(c.X-hx, c.Y-hy, 0), geom.V3(c.X+hx, c.Y+hy, 0))
}
