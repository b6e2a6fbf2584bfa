package drawing

import (
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/cadlayout/pkg/geom"
)

// Kind identifies an entity type. Values follow DXF entity names.
type Kind string

const (
	KindLine      Kind = "LINE"
	KindPolyline  Kind = "LWPOLYLINE"
	KindPoint     Kind = "POINT"
	KindCircle    Kind = "CIRCLE"
	KindArc       Kind = "ARC"
	KindText      Kind = "TEXT"
	KindMText     Kind = "MTEXT"
	KindDimension Kind = "DIMENSION"
	KindRegion    Kind = "REGION"
)

// Kinds lists every entity kind the model supports.
var Kinds = []Kind{
	KindLine, KindPolyline, KindPoint, KindCircle, KindArc,
	KindText, KindMText, KindDimension, KindRegion,
}

// ParseKind accepts a kind name in any case.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind: %q", s)
}

// Header carries the fields every entity has.
type Header struct {
	Handle string
	Layer  string
	// Color is an optional color name understood by the renderer.
	Color string
}

// Head returns h. It lets entity types satisfy Entity by embedding Header.
func (h *Header) Head() *Header { return h }

// Entity is a drawable element of a model.
type Entity interface {
	Head() *Header
	Kind() Kind
	// Bounds returns the entity's extent. Entities without geometry of
	// their own return an empty bounds.
	Bounds() geom.Bounds
	// Transform applies m to the entity in place.
	Transform(m geom.Matrix)
	// Copy returns a deep copy with the same handle.
	Copy() Entity
}

// Referrer is implemented by entities that point at other entities.
type Referrer interface {
	References() []string
	SetReferences(handles []string)
}

// Line is a straight segment.
type Line struct {
	Header
	Start, End geom.Vec3
}

func (*Line) Kind() Kind { return KindLine }
func (l *Line) Bounds() geom.Bounds {
	return geom.NewBounds(l.Start, l.End)
}
func (l *Line) Transform(m geom.Matrix) {
	l.Start, l.End = m.Apply(l.Start), m.Apply(l.End)
}
func (l *Line) Copy() Entity { c := *l; return &c }

// Polyline is a sequence of straight segments.
type Polyline struct {
	Header
	Vertices []geom.Vec3
	Closed   bool
}

func (*Polyline) Kind() Kind { return KindPolyline }
func (p *Polyline) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, v := range p.Vertices {
		b = b.Extend(v)
	}
	return b
}
func (p *Polyline) Transform(m geom.Matrix) {
	for i, v := range p.Vertices {
		p.Vertices[i] = m.Apply(v)
	}
}
func (p *Polyline) Copy() Entity {
	c := *p
	c.Vertices = append([]geom.Vec3(nil), p.Vertices...)
	return &c
}

// Point is a single location.
type Point struct {
	Header
	Position geom.Vec3
}

func (*Point) Kind() Kind { return KindPoint }
func (p *Point) Bounds() geom.Bounds {
	return geom.NewBounds(p.Position, p.Position)
}
func (p *Point) Transform(m geom.Matrix) { p.Position = m.Apply(p.Position) }
func (p *Point) Copy() Entity            { c := *p; return &c }

// Conic is a center plus conjugate axes: the curve is
// Center + U*cos(t) + V*sin(t).
type Conic struct {
	Center geom.Vec3
	U, V   geom.Vec3
}

// At returns the point at parameter t (radians).
func (c Conic) At(t float64) geom.Vec3 {
	return c.Center.Add(c.U.Mul(math.Cos(t))).Add(c.V.Mul(math.Sin(t)))
}

func (c *Conic) transform(m geom.Matrix) {
	c.Center = m.Apply(c.Center)
	c.U = m.ApplyVector(c.U)
	c.V = m.ApplyVector(c.V)
}

// Radius returns the radius if the conic is a circle, else the mean of the
// conjugate semi-axis lengths.
func (c Conic) Radius() float64 {
	return (c.U.Length() + c.V.Length()) / 2
}

// fullBounds returns the exact bounds of the closed curve.
func (c Conic) fullBounds() geom.Bounds {
	e := geom.Vec3{
		X: math.Hypot(c.U.X, c.V.X),
		Y: math.Hypot(c.U.Y, c.V.Y),
		Z: math.Hypot(c.U.Z, c.V.Z),
	}
	return geom.NewBounds(c.Center.Sub(e), c.Center.Add(e))
}

// Circle is a closed conic. A circle that went through a non-uniform scale
// is an ellipse.
type Circle struct {
	Header
	Conic
}

// NewCircle returns a circle in the XY plane.
func NewCircle(center geom.Vec3, radius float64) *Circle {
	return &Circle{Conic: Conic{
		Center: center,
		U:      geom.Vec3{X: radius},
		V:      geom.Vec3{Y: radius},
	}}
}

func (*Circle) Kind() Kind                { return KindCircle }
func (c *Circle) Bounds() geom.Bounds     { return c.fullBounds() }
func (c *Circle) Transform(m geom.Matrix) { c.transform(m) }
func (c *Circle) Copy() Entity            { d := *c; return &d }

// Arc is an open conic from Start to End (radians, counter-clockwise in the
// conic's own parameter space).
type Arc struct {
	Header
	Conic
	Start, End float64
}

// NewArc returns an arc in the XY plane with angles in degrees.
func NewArc(center geom.Vec3, radius, startDeg, endDeg float64) *Arc {
	return &Arc{
		Conic: Conic{
			Center: center,
			U:      geom.Vec3{X: radius},
			V:      geom.Vec3{Y: radius},
		},
		Start: startDeg * math.Pi / 180,
		End:   endDeg * math.Pi / 180,
	}
}

// Sweep returns the parameter span in (0, 2π].
func (a *Arc) Sweep() float64 {
	s := math.Mod(a.End-a.Start, 2*math.Pi)
	if s <= 0 {
		s += 2 * math.Pi
	}
	return s
}

func (*Arc) Kind() Kind { return KindArc }
func (a *Arc) Bounds() geom.Bounds {
	const steps = 64
	b := geom.EmptyBounds()
	sweep := a.Sweep()
	for i := 0; i <= steps; i++ {
		b = b.Extend(a.At(a.Start + sweep*float64(i)/steps))
	}
	return b
}
func (a *Arc) Transform(m geom.Matrix) { a.transform(m) }
func (a *Arc) Copy() Entity            { d := *a; return &d }

// Attribute is a tagged text value attached to a Text entity.
type Attribute struct {
	Tag      string
	Value    string
	Position geom.Vec3
	Height   float64
}

// Text is a single or multi line annotation.
type Text struct {
	Header
	Position   geom.Vec3
	Height     float64
	Rotation   float64 // degrees, counter-clockwise
	Value      string
	Multiline  bool
	Attributes []Attribute
}

func (t *Text) Kind() Kind {
	if t.Multiline {
		return KindMText
	}
	return KindText
}

func (t *Text) Bounds() geom.Bounds {
	// Glyph metrics are unknown here; approximate with the insertion point
	// and one text height above it.
	b := geom.NewBounds(t.Position, t.Position.Add(geom.Vec3{Y: t.Height}))
	for _, a := range t.Attributes {
		b = b.Extend(a.Position)
	}
	return b
}
func (t *Text) Transform(m geom.Matrix) {
	s := m.UniformScale()
	t.Position = m.Apply(t.Position)
	t.Height *= s
	dir := m.ApplyVector(geom.Vec3{X: math.Cos(t.Rotation * math.Pi / 180), Y: math.Sin(t.Rotation * math.Pi / 180)})
	if dir.X != 0 || dir.Y != 0 {
		t.Rotation = math.Atan2(dir.Y, dir.X) * 180 / math.Pi
	}
	for i := range t.Attributes {
		t.Attributes[i].Position = m.Apply(t.Attributes[i].Position)
		t.Attributes[i].Height *= s
	}
}
func (t *Text) Copy() Entity {
	c := *t
	c.Attributes = append([]Attribute(nil), t.Attributes...)
	return &c
}

// Dimension is a linear measurement annotation between two points.
type Dimension struct {
	Header
	Start, End  geom.Vec3
	TextPoint   geom.Vec3
	Measurement float64
}

func (*Dimension) Kind() Kind { return KindDimension }
func (d *Dimension) Bounds() geom.Bounds {
	return geom.NewBounds(d.Start, d.End).Extend(d.TextPoint)
}
func (d *Dimension) Transform(m geom.Matrix) {
	d.Start, d.End, d.TextPoint = m.Apply(d.Start), m.Apply(d.End), m.Apply(d.TextPoint)
}
func (d *Dimension) Copy() Entity { c := *d; return &c }

// Region is an area bounded by other entities of the same model.
type Region struct {
	Header
	Boundary []string
}

func (*Region) Kind() Kind                 { return KindRegion }
func (*Region) Bounds() geom.Bounds        { return geom.EmptyBounds() }
func (*Region) Transform(geom.Matrix)      {}
func (r *Region) References() []string     { return r.Boundary }
func (r *Region) SetReferences(h []string) { r.Boundary = h }
func (r *Region) Copy() Entity {
	c := *r
	c.Boundary = append([]string(nil), r.Boundary...)
	return &c
}

// Ensure entity types implement Entity.
var (
	_ Entity   = (*Line)(nil)
	_ Entity   = (*Polyline)(nil)
	_ Entity   = (*Point)(nil)
	_ Entity   = (*Circle)(nil)
	_ Entity   = (*Arc)(nil)
	_ Entity   = (*Text)(nil)
	_ Entity   = (*Dimension)(nil)
	_ Entity   = (*Region)(nil)
	_ Referrer = (*Region)(nil)
)
