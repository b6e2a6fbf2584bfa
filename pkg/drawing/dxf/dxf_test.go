package dxf

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/geom"
)

// doc joins group code / value pairs into DXF text.
func doc(pairs ...string) []byte {
	return []byte(strings.Join(pairs, "\n") + "\n")
}

var sample = doc(
	"0", "SECTION", "2", "HEADER", "0", "ENDSEC",
	"0", "SECTION", "2", "TABLES",
	"0", "TABLE", "2", "LAYER",
	"0", "LAYER", "2", "Outline", "70", "0", "62", "5",
	"0", "LAYER", "2", "Defpoints", "70", "0", "62", "7",
	"0", "ENDTAB",
	"0", "ENDSEC",
	"0", "SECTION", "2", "ENTITIES",
	"0", "LINE", "5", "1A", "8", "Outline", "10", "0.0", "20", "0.0", "30", "0.0", "11", "100.0", "21", "50.0", "31", "0.0",
	"0", "CIRCLE", "5", "1B", "8", "Outline", "10", "50", "20", "25", "30", "0", "40", "10",
	"0", "ARC", "5", "1C", "8", "0", "10", "0", "20", "0", "30", "0", "40", "5", "50", "0", "51", "90",
	"0", "LWPOLYLINE", "5", "1D", "8", "0", "90", "3", "70", "1", "10", "0", "20", "0", "10", "10", "20", "0", "10", "10", "20", "10",
	"0", "TEXT", "5", "1E", "8", "0", "10", "1", "20", "2", "30", "0", "40", "2.5", "1", "Part A",
	"0", "DIMENSION", "5", "1F", "8", "Defpoints", "11", "50", "21", "60", "13", "0", "23", "0", "14", "100", "24", "0", "42", "100",
	"0", "INSERT", "5", "20", "8", "0", "2", "BOLT",
	"0", "ENDSEC",
	"0", "EOF",
)

func TestDecode(t *testing.T) {
	res, err := Decode("sample", sample)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := res.Model

	var kinds []drawing.Kind
	for _, e := range m.Entities {
		kinds = append(kinds, e.Kind())
	}
	want := []drawing.Kind{
		drawing.KindLine, drawing.KindCircle, drawing.KindArc, drawing.KindPolyline,
		drawing.KindText, drawing.KindDimension,
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	if res.Skipped["INSERT"] != 1 {
		t.Errorf("Skipped = %v, want INSERT:1", res.Skipped)
	}

	if diff := cmp.Diff([]drawing.Layer{{Name: "Outline", Color: "blue"}, {Name: "Defpoints", Color: "black"}}, m.Layers); diff != "" {
		t.Errorf("layers mismatch (-want +got):\n%s", diff)
	}

	line := m.Entities[0].(*drawing.Line)
	if line.Handle != "1A" || line.Layer != "Outline" || line.End != geom.V3(100, 50, 0) {
		t.Errorf("line = %+v", line)
	}
	poly := m.Entities[3].(*drawing.Polyline)
	if !poly.Closed || len(poly.Vertices) != 3 || poly.Vertices[2] != geom.V3(10, 10, 0) {
		t.Errorf("polyline = %+v", poly)
	}
	text := m.Entities[4].(*drawing.Text)
	if text.Value != "Part A" || text.Height != 2.5 {
		t.Errorf("text = %+v", text)
	}
	dim := m.Entities[5].(*drawing.Dimension)
	if dim.End != geom.V3(100, 0, 0) || dim.Measurement != 100 {
		t.Errorf("dimension = %+v", dim)
	}

	b := m.Bounds()
	if b.Min != geom.V3(0, 0, 0) || b.Max.X != 100 || b.Max.Y != 60 {
		t.Errorf("bounds = %+v", b)
	}
}

func TestDecodeUndeclaredLayerAndMText(t *testing.T) {
	data := doc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "CIRCLE", "5", "2A", "8", "AM_5", "62", "1", "10", "5", "20", "5", "30", "0", "40", "2",
		"0", "MTEXT", "5", "2B", "8", "AM_7", "10", "0", "20", "8", "40", "1.5", "3", "Drill ", "1", "4x M6",
		"0", "3DFACE", "8", "0", "10", "0", "20", "0", "30", "0", "11", "4", "21", "0", "31", "0",
		"12", "4", "22", "4", "32", "0", "13", "0", "23", "4", "33", "0",
		"0", "SPLINE", "8", "0",
		"0", "ENDSEC",
		"0", "EOF",
	)
	res, err := Decode("plate", data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	m := res.Model
	if m.Len() != 3 {
		t.Fatalf("entities = %d, want 3", m.Len())
	}

	c := m.Entities[0].(*drawing.Circle)
	if c.Layer != "AM_5" || c.Color != "red" || c.Handle != "2A" {
		t.Errorf("circle header = %+v", c.Header)
	}
	text := m.Entities[1].(*drawing.Text)
	if !text.Multiline || text.Value != "Drill 4x M6" || text.Layer != "AM_7" {
		t.Errorf("mtext = %+v", text)
	}
	if text.Kind() != drawing.KindMText {
		t.Errorf("mtext kind = %v", text.Kind())
	}
	face := m.Entities[2].(*drawing.Polyline)
	if !face.Closed || len(face.Vertices) != 4 || face.Vertices[2] != geom.V3(4, 4, 0) {
		t.Errorf("3dface = %+v", face)
	}
	if res.Skipped["SPLINE"] != 1 {
		t.Errorf("Skipped = %v, want SPLINE:1", res.Skipped)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrNotDXF},
		{"yaml", []byte("entities: []\n"), ErrNotDXF},
		{"binary", []byte(binarySentinel + "\r\n\x1a\x00"), ErrBinary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.name, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Decode error = %v, want %v", err, tt.want)
			}
		})
	}

	bad := doc("0", "SECTION", "2", "ENTITIES", "0", "LINE", "10", "abc", "0", "ENDSEC")
	if _, err := Decode("bad", bad); err == nil {
		t.Error("invalid number should fail")
	}
	badCode := doc("0", "SECTION", "x", "ENTITIES")
	if _, err := Decode("bad", badCode); err == nil {
		t.Error("invalid group code should fail")
	}
}

func TestACIColor(t *testing.T) {
	if got := ACIColor(-1); got != "red" {
		t.Errorf("ACIColor(-1) = %q", got)
	}
	if got := ACIColor(250); got != "black" {
		t.Errorf("ACIColor(250) = %q", got)
	}
}
