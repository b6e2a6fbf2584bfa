package shape

import (
	"errors"
	"math"
	"testing"
)

func TestIsSized(t *testing.T) {
	tests := []struct {
		name string
		g    Geometry
		want bool
	}{
		{"circle", Circle{Radius: 10}, true},
		{"circle zero radius", Circle{}, false},
		{"circle negative radius", Circle{Radius: -1}, false},
		{"rectangle", Rectangle{Length: 10, Height: 5}, true},
		{"rectangle zero height", Rectangle{Length: 10}, false},
		{"rounded rectangle", RoundedRectangle{Length: 10, Height: 5, Radius: 1}, true},
		{"rounded rectangle min radius", RoundedRectangle{Length: 10, Height: 5, Radius: MinCornerRadius}, true},
		{"rounded rectangle small radius", RoundedRectangle{Length: 10, Height: 5, Radius: 0.005}, false},
		{"slot", NewSlot(20, 6), true},
		{"slot within tolerance", Slot{Length: 20, Height: 6, Radius: 3 + 5e-5}, true},
		{"slot off tolerance", Slot{Length: 20, Height: 6, Radius: 3.01}, false},
		{"slot zero length", NewSlot(0, 6), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.IsSized(); got != tt.want {
				t.Errorf("IsSized() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDrawable(t *testing.T) {
	geoms := []Geometry{
		Circle{Radius: 10},
		Circle{},
		Rectangle{Length: 4, Height: 2},
		RoundedRectangle{Length: 4, Height: 2},
		NewSlot(8, 2),
		Slot{Length: 8, Height: 2, Radius: 2},
	}
	for _, g := range geoms {
		for _, placed := range []bool{false, true} {
			s := New("s", g)
			if placed {
				s.SetCoordinates(1, 2)
			}
			want := placed && g.IsSized()
			if got := s.IsDrawable(); got != want {
				t.Errorf("%s placed=%v: IsDrawable() = %v, want %v", g.Kind(), placed, got, want)
			}
		}
	}
}

func TestSlotSetHeightKeepsRadius(t *testing.T) {
	s := New("slot", NewSlot(30, 4))
	for _, h := range []float64{1, 2.5, 7.3333, 100, 0.0002} {
		if err := s.SetHeight(h); err != nil {
			t.Fatalf("SetHeight(%v): %v", h, err)
		}
		g := s.Geometry().(Slot)
		if math.Abs(g.Radius-h/2) > SlotTolerance {
			t.Errorf("after SetHeight(%v) radius = %v, want %v", h, g.Radius, h/2)
		}
	}
}

func TestSetHeightOnOtherKinds(t *testing.T) {
	r := New("rr", RoundedRectangle{Length: 10, Height: 4, Radius: 1})
	if err := r.SetHeight(8); err != nil {
		t.Fatal(err)
	}
	if g := r.Geometry().(RoundedRectangle); g.Radius != 1 || g.Height != 8 {
		t.Errorf("rounded rectangle height must not touch radius: %+v", g)
	}

	c := New("c", Circle{Radius: 1})
	if err := c.SetHeight(3); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("circle SetHeight error = %v, want ErrNotApplicable", err)
	}
	if err := c.SetLength(3); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("circle SetLength error = %v, want ErrNotApplicable", err)
	}
	if err := New("r", Rectangle{}).SetRadius(1); !errors.Is(err, ErrNotApplicable) {
		t.Errorf("rectangle SetRadius error = %v, want ErrNotApplicable", err)
	}
}

func TestRadiusIsHalfHeight(t *testing.T) {
	tests := []struct {
		height, radius float64
		want           bool
	}{
		{10, 5, true},
		{10, 5.00009, true},
		{10, 4.99991, true},
		{10, 5.001, false},
		{0, 0, false},
		{-10, -5, false},
		{10, 0, false},
		{0, 5, false},
	}
	for _, tt := range tests {
		if got := RadiusIsHalfHeight(tt.height, tt.radius); got != tt.want {
			t.Errorf("RadiusIsHalfHeight(%v, %v) = %v, want %v", tt.height, tt.radius, got, tt.want)
		}
	}
}

func TestBottomLeft(t *testing.T) {
	s := New("c", Circle{Radius: 10})
	if _, ok := s.Bottom(); ok {
		t.Error("Bottom should be absent without coordinates")
	}
	if _, ok := s.Left(); ok {
		t.Error("Left should be absent without coordinates")
	}
	s.SetCoordinates(50, 40)
	if b, _ := s.Bottom(); b != 30 {
		t.Errorf("circle Bottom = %v, want 30", b)
	}
	if l, _ := s.Left(); l != 40 {
		t.Errorf("circle Left = %v, want 40", l)
	}

	r := New("r", Rectangle{Length: 20, Height: 6})
	r.SetCoordinates(10, 10)
	if b, _ := r.Bottom(); b != 7 {
		t.Errorf("rectangle Bottom = %v, want 7", b)
	}
	if l, _ := r.Left(); l != 0 {
		t.Errorf("rectangle Left = %v, want 0", l)
	}
}

func TestChangeNotification(t *testing.T) {
	s := New("c", Circle{Radius: 1})
	var fields []string
	s.Subscribe(func(c Change) {
		if c.Shape != s {
			t.Error("change should reference the shape")
		}
		fields = append(fields, c.Field)
	})

	s.SetCoordinates(1, 1)
	_ = s.SetRadius(2)
	_ = s.SetHeight(2) // not applicable, no notification

	if len(fields) != 2 || fields[0] != FieldCoordinates || fields[1] != FieldRadius {
		t.Errorf("fields = %v", fields)
	}
	if !s.HasUnsavedChanges() {
		t.Error("shape should be dirty")
	}
	s.MarkSaved()
	if s.HasUnsavedChanges() {
		t.Error("MarkSaved should clear the flag")
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindCircle, KindRectangle, KindRoundedRectangle, KindSlot} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("hexagon"); err == nil {
		t.Error("ParseKind should reject unknown kinds")
	}
}
