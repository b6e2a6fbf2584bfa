// Package yamldoc reads and writes drawings in a small YAML document format.
//
// The format mirrors the drawing model one to one and is meant for test
// fixtures and hand-authored drawings:
//
//	name: bracket
//	layers:
//	  - name: Outline
//	    color: steelblue
//	entities:
//	  - type: line
//	    handle: L1
//	    layer: Outline
//	    start: [0, 0]
//	    end: [100, 0]
//	  - type: circle
//	    center: [50, 25]
//	    radius: 10
//	  - type: region
//	    boundary: [L1]
//
// Coordinates are [x, y] or [x, y, z]; angles are in degrees. Circles and
// arcs that went through a non-uniform scale are written with axis_u and
// axis_v instead of radius; their angles are then conic parameters rather
// than directions.
package yamldoc

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/geom"
)

// Document is the YAML representation of a drawing.
type Document struct {
	Name     string   `yaml:"name,omitempty"`
	Layers   []Layer  `yaml:"layers,omitempty"`
	Entities []Entity `yaml:"entities"`
}

// Layer is a layer table entry.
type Layer struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color,omitempty"`
}

// Entity is the union of all entity fields; Type selects which apply.
type Entity struct {
	Type   string `yaml:"type"`
	Handle string `yaml:"handle,omitempty"`
	Layer  string `yaml:"layer,omitempty"`
	Color  string `yaml:"color,omitempty"`

	Start    Coord   `yaml:"start,omitempty"`
	End      Coord   `yaml:"end,omitempty"`
	Center   Coord   `yaml:"center,omitempty"`
	Position Coord   `yaml:"position,omitempty"`
	Vertices []Coord `yaml:"vertices,omitempty"`
	Closed   bool    `yaml:"closed,omitempty"`

	Radius     float64 `yaml:"radius,omitempty"`
	AxisU      Coord   `yaml:"axis_u,omitempty"`
	AxisV      Coord   `yaml:"axis_v,omitempty"`
	StartAngle float64 `yaml:"start_angle,omitempty"`
	EndAngle   float64 `yaml:"end_angle,omitempty"`

	Value      string      `yaml:"value,omitempty"`
	Height     float64     `yaml:"height,omitempty"`
	Rotation   float64     `yaml:"rotation,omitempty"`
	Attributes []Attribute `yaml:"attributes,omitempty"`

	TextPoint   Coord   `yaml:"text_point,omitempty"`
	Measurement float64 `yaml:"measurement,omitempty"`

	Boundary []string `yaml:"boundary,omitempty"`
}

// Attribute is a tagged text value.
type Attribute struct {
	Tag      string  `yaml:"tag"`
	Value    string  `yaml:"value"`
	Position Coord   `yaml:"position,omitempty"`
	Height   float64 `yaml:"height,omitempty"`
}

// Coord is a 2D or 3D coordinate.
type Coord []float64

func (c Coord) vec() (geom.Vec3, error) {
	switch len(c) {
	case 0:
		return geom.Vec3{}, nil
	case 2:
		return geom.V3(c[0], c[1], 0), nil
	case 3:
		return geom.V3(c[0], c[1], c[2]), nil
	}
	return geom.Vec3{}, fmt.Errorf("coordinate needs 2 or 3 values, got %d", len(c))
}

func coord(v geom.Vec3) Coord {
	if v.Z == 0 {
		return Coord{v.X, v.Y}
	}
	return Coord{v.X, v.Y, v.Z}
}

// Sniff reports whether data looks like a drawing document.
func Sniff(data []byte) bool {
	return bytes.Contains(data, []byte("entities:"))
}

// Decode parses a document into a model.
func Decode(data []byte) (*drawing.Model, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("yamldoc: %w", err)
	}
	return doc.Model()
}

// Model converts the document.
func (d *Document) Model() (*drawing.Model, error) {
	m := drawing.NewModel(d.Name)
	for _, l := range d.Layers {
		m.Layers = append(m.Layers, drawing.Layer{Name: l.Name, Color: l.Color})
	}
	for i, e := range d.Entities {
		ent, err := e.entity()
		if err != nil {
			return nil, fmt.Errorf("yamldoc: entity %d (%s): %w", i, e.Type, err)
		}
		m.Add(ent)
	}
	return m, nil
}

func (e Entity) entity() (drawing.Entity, error) {
	var errs []error
	vec := func(c Coord) geom.Vec3 {
		v, err := c.vec()
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	head := drawing.Header{Handle: e.Handle, Layer: e.Layer, Color: e.Color}

	var out drawing.Entity
	switch strings.ToLower(e.Type) {
	case "line":
		out = &drawing.Line{Header: head, Start: vec(e.Start), End: vec(e.End)}
	case "point":
		out = &drawing.Point{Header: head, Position: vec(e.Position)}
	case "circle":
		c := drawing.NewCircle(vec(e.Center), e.Radius)
		if e.elliptical() {
			c.U, c.V = vec(e.AxisU), vec(e.AxisV)
		}
		c.Header = head
		out = c
	case "arc":
		a := drawing.NewArc(vec(e.Center), e.Radius, e.StartAngle, e.EndAngle)
		if e.elliptical() {
			a.U, a.V = vec(e.AxisU), vec(e.AxisV)
		}
		a.Header = head
		out = a
	case "polyline", "lwpolyline":
		p := &drawing.Polyline{Header: head, Closed: e.Closed}
		for _, c := range e.Vertices {
			p.Vertices = append(p.Vertices, vec(c))
		}
		out = p
	case "text", "mtext":
		t := &drawing.Text{
			Header:    head,
			Position:  vec(e.Position),
			Height:    e.Height,
			Rotation:  e.Rotation,
			Value:     e.Value,
			Multiline: strings.EqualFold(e.Type, "mtext"),
		}
		for _, a := range e.Attributes {
			t.Attributes = append(t.Attributes, drawing.Attribute{
				Tag: a.Tag, Value: a.Value, Position: vec(a.Position), Height: a.Height,
			})
		}
		out = t
	case "dimension":
		out = &drawing.Dimension{
			Header: head, Start: vec(e.Start), End: vec(e.End),
			TextPoint: vec(e.TextPoint), Measurement: e.Measurement,
		}
	case "region":
		out = &drawing.Region{Header: head, Boundary: append([]string(nil), e.Boundary...)}
	default:
		return nil, fmt.Errorf("unknown entity type %q", e.Type)
	}
	if len(errs) > 0 {
		return nil, errs[0]
	}
	return out, nil
}

func (e Entity) elliptical() bool {
	return len(e.AxisU) > 0 || len(e.AxisV) > 0
}

// Encode writes m as a YAML document.
func Encode(m *drawing.Model) ([]byte, error) {
	doc := Document{Name: m.Name}
	for _, l := range m.Layers {
		doc.Layers = append(doc.Layers, Layer{Name: l.Name, Color: l.Color})
	}
	for _, ent := range m.Entities {
		e, err := fromEntity(ent)
		if err != nil {
			return nil, err
		}
		doc.Entities = append(doc.Entities, e)
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("yamldoc: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yamldoc: %w", err)
	}
	return buf.Bytes(), nil
}

func fromEntity(ent drawing.Entity) (Entity, error) {
	h := ent.Head()
	e := Entity{Handle: h.Handle, Layer: h.Layer, Color: h.Color}
	switch v := ent.(type) {
	case *drawing.Line:
		e.Type, e.Start, e.End = "line", coord(v.Start), coord(v.End)
	case *drawing.Point:
		e.Type, e.Position = "point", coord(v.Position)
	case *drawing.Circle:
		e.Type, e.Center = "circle", coord(v.Center)
		if isCircular(v.Conic) {
			e.Radius = v.Radius()
		} else {
			e.AxisU, e.AxisV = coord(v.U), coord(v.V)
		}
	case *drawing.Arc:
		e.Type, e.Center = "arc", coord(v.Center)
		if isCircular(v.Conic) {
			rot := math.Atan2(v.U.Y, v.U.X)
			e.Radius = v.Radius()
			e.StartAngle = (v.Start + rot) * 180 / math.Pi
			e.EndAngle = (v.End + rot) * 180 / math.Pi
		} else {
			e.AxisU, e.AxisV = coord(v.U), coord(v.V)
			e.StartAngle = v.Start * 180 / math.Pi
			e.EndAngle = v.End * 180 / math.Pi
		}
	case *drawing.Polyline:
		e.Type, e.Closed = "polyline", v.Closed
		for _, p := range v.Vertices {
			e.Vertices = append(e.Vertices, coord(p))
		}
	case *drawing.Text:
		e.Type = "text"
		if v.Multiline {
			e.Type = "mtext"
		}
		e.Position, e.Height, e.Rotation, e.Value = coord(v.Position), v.Height, v.Rotation, v.Value
		for _, a := range v.Attributes {
			e.Attributes = append(e.Attributes, Attribute{Tag: a.Tag, Value: a.Value, Position: coord(a.Position), Height: a.Height})
		}
	case *drawing.Dimension:
		e.Type, e.Start, e.End, e.TextPoint, e.Measurement = "dimension", coord(v.Start), coord(v.End), coord(v.TextPoint), v.Measurement
	case *drawing.Region:
		e.Type, e.Boundary = "region", append([]string(nil), v.Boundary...)
	default:
		return e, fmt.Errorf("yamldoc: unsupported entity kind %s", ent.Kind())
	}
	return e, nil
}

// isCircular reports whether the conjugate axes are perpendicular, of equal
// length, and counter-clockwise.
func isCircular(c drawing.Conic) bool {
	const eps = 1e-9
	lu, lv := c.U.Length(), c.V.Length()
	dot := c.U.X*c.V.X + c.U.Y*c.V.Y + c.U.Z*c.V.Z
	cross := c.U.X*c.V.Y - c.U.Y*c.V.X
	return math.Abs(lu-lv) <= eps*math.Max(1, lu) && math.Abs(dot) <= eps*math.Max(1, lu*lv) && cross > 0
}
