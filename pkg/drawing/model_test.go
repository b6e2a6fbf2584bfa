package drawing

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cadlayout/pkg/geom"
)

func sampleModel() *Model {
	m := NewModel("sample")
	m.Layers = []Layer{{Name: "0"}, {Name: "AM_5"}, {Name: "Outline", Color: "steelblue"}}
	m.Add(&Line{Header: Header{Handle: "L1", Layer: "Outline"}, Start: geom.V3(0, 0, 0), End: geom.V3(10, 0, 0)})
	m.Add(&Line{Header: Header{Handle: "L2", Layer: "AM_5"}, Start: geom.V3(0, 0, 0), End: geom.V3(0, 50, 0)})
	m.Add(&Dimension{Header: Header{Handle: "D1", Layer: "0"}, Start: geom.V3(0, 0, 0), End: geom.V3(10, 0, 0), Measurement: 10})
	m.Add(&Region{Header: Header{Handle: "R1", Layer: "0"}, Boundary: []string{"L1", "L2", "D1", "missing"}})
	return m
}

func TestCloneExcludesLayersAndKinds(t *testing.T) {
	m := sampleModel()
	c := m.Clone(DefaultFilter())

	var kinds []Kind
	for _, e := range c.Entities {
		kinds = append(kinds, e.Kind())
		if e.Head().Layer == "AM_5" {
			t.Errorf("entity on excluded layer survived: %+v", e)
		}
	}
	if diff := cmp.Diff([]Kind{KindLine, KindRegion}, kinds); diff != "" {
		t.Errorf("clone kinds mismatch (-want +got):\n%s", diff)
	}
	if m.Len() != 4 {
		t.Errorf("source model modified: %d entities", m.Len())
	}
}

func TestCloneResolvesReferences(t *testing.T) {
	m := sampleModel()
	c := m.Clone(DefaultFilter())

	line := c.Entities[0]
	region := c.Entities[1].(*Region)
	if line.Head().Handle == "L1" {
		t.Fatal("clone should assign new handles")
	}
	if diff := cmp.Diff([]string{line.Head().Handle}, region.Boundary); diff != "" {
		t.Errorf("region boundary mismatch (-want +got):\n%s", diff)
	}
	if _, ok := c.Lookup(region.Boundary[0]); !ok {
		t.Error("resolved reference should point at a cloned entity")
	}
}

func TestCloneWithUnusedExclusions(t *testing.T) {
	m := NewModel("plain")
	m.Add(NewCircle(geom.V3(0, 0, 0), 5))
	c := m.Clone(Filter{ExcludeKinds: []Kind{KindDimension}, ExcludeLayers: []string{"NOPE"}})
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	empty := NewModel("empty").Clone(DefaultFilter())
	if empty.Len() != 0 {
		t.Errorf("empty clone Len = %d", empty.Len())
	}
}

func TestCloneIsDeep(t *testing.T) {
	m := NewModel("deep")
	m.Add(&Polyline{Vertices: []geom.Vec3{geom.V3(0, 0, 0), geom.V3(1, 1, 0)}})
	c := m.Clone(Filter{})
	c.Transform(geom.Translation(geom.V3(5, 5, 0)))
	if got := m.Entities[0].(*Polyline).Vertices[0]; got != (geom.Vec3{}) {
		t.Errorf("transforming the clone changed the source: %+v", got)
	}
}

func TestCircleScaledToEllipse(t *testing.T) {
	c := NewCircle(geom.V3(1, 1, 0), 1)
	c.Transform(geom.Scaling(geom.V3(4, 2, 1)))
	b := c.Bounds()
	want := geom.NewBounds(geom.V3(0, 0, 0), geom.V3(8, 4, 0))
	if !b.Min.ApproxEqual(want.Min, 1e-9) || !b.Max.ApproxEqual(want.Max, 1e-9) {
		t.Errorf("ellipse bounds = %+v, want %+v", b, want)
	}
}

func TestArcBounds(t *testing.T) {
	a := NewArc(geom.V3(0, 0, 0), 10, 0, 90)
	b := a.Bounds()
	if !b.Min.ApproxEqual(geom.V3(0, 0, 0), 1e-9) || !b.Max.ApproxEqual(geom.V3(10, 10, 0), 1e-9) {
		t.Errorf("quarter arc bounds = %+v", b)
	}
	if s := NewArc(geom.Vec3{}, 1, 270, 90).Sweep(); math.Abs(s-math.Pi) > 1e-12 {
		t.Errorf("wrapping sweep = %v, want pi", s)
	}
}

func TestTextTransformAttributes(t *testing.T) {
	txt := &Text{
		Position:   geom.V3(1, 1, 0),
		Height:     2,
		Attributes: []Attribute{{Tag: "PART", Value: "A1", Position: geom.V3(2, 2, 0), Height: 1}},
	}
	txt.Transform(geom.Scaling(geom.V3(3, 3, 1)))
	if txt.Position != geom.V3(3, 3, 0) || txt.Height != 6 {
		t.Errorf("text = %+v", txt)
	}
	if a := txt.Attributes[0]; a.Position != geom.V3(6, 6, 0) || a.Height != 3 {
		t.Errorf("attribute = %+v", a)
	}
}

func TestModelBounds(t *testing.T) {
	m := NewModel("b")
	if !m.Bounds().IsEmpty() {
		t.Error("empty model should have empty bounds")
	}
	m.Add(&Line{Start: geom.V3(-1, 2, 0), End: geom.V3(4, 7, 0)})
	m.Add(NewCircle(geom.V3(10, 10, 0), 1))
	m.Add(&Region{})
	want := geom.NewBounds(geom.V3(-1, 2, 0), geom.V3(11, 11, 0))
	if got := m.Bounds(); got != want {
		t.Errorf("Bounds = %+v, want %+v", got, want)
	}
}

func TestDefaultFilterKeepsSingleLineText(t *testing.T) {
	f := DefaultFilter()
	tests := []struct {
		e    Entity
		drop bool
	}{
		{&Text{Value: "PART-7"}, false},
		{&Text{Value: "notes", Multiline: true}, true},
		{&Dimension{}, true},
		{&Line{Header: Header{Layer: "am_7"}}, true},
		{&Line{Header: Header{Layer: "Outline"}}, false},
	}
	for _, tt := range tests {
		if got := f.Excludes(tt.e); got != tt.drop {
			t.Errorf("Excludes(%s on %q) = %v, want %v", tt.e.Kind(), tt.e.Head().Layer, got, tt.drop)
		}
	}
}
