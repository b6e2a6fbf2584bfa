package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/matzehuels/cadlayout/pkg/geom"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		data string
		want Format
	}{
		{"0\nSECTION\n2\nENTITIES\n0\nENDSEC\n0\nEOF\n", FormatDXF},
		{"entities:\n  - type: point\n    position: [1, 2]\n", FormatYAML},
		{"%PDF-1.7", ""},
	}
	for _, tt := range tests {
		if got := Detect([]byte(tt.data)); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.data, got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	eng := New(nil)
	ctx := context.Background()

	m, err := eng.Parse(ctx, []byte("entities:\n  - type: line\n    start: [0, 0]\n    end: [4, 3]\n"))
	if err != nil {
		t.Fatalf("Parse yaml: %v", err)
	}
	if b := eng.Bounds(m); b.Max != geom.V3(4, 3, 0) {
		t.Errorf("Bounds = %+v", b)
	}
	eng.Transform(m, geom.Translation(geom.V3(1, 1, 0)))
	if b := eng.Bounds(m); b.Min != geom.V3(1, 1, 0) {
		t.Errorf("Bounds after Transform = %+v", b)
	}

	dxfDoc := "0\nSECTION\n2\nENTITIES\n0\nPOINT\n10\n1\n20\n2\n0\nSOLID\n0\nENDSEC\n0\nEOF\n"
	m, err = eng.Parse(ctx, []byte(dxfDoc))
	if err != nil {
		t.Fatalf("Parse dxf: %v", err)
	}
	if m.Len() != 1 {
		t.Errorf("dxf entities = %d, want 1", m.Len())
	}

	if _, err := eng.Parse(ctx, []byte("garbage")); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Parse garbage error = %v, want ErrUnknownFormat", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := eng.Parse(cancelled, []byte(dxfDoc)); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse with cancelled context error = %v", err)
	}
}
