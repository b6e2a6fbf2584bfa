package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/colornames"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/geom"
	"github.com/matzehuels/cadlayout/pkg/layout"
	"github.com/matzehuels/cadlayout/pkg/shape"
)

func circleScene(t *testing.T) *layout.Scene {
	t.Helper()
	set := shape.NewSet()
	c := shape.New("hole", shape.Circle{Radius: 20})
	c.SetCoordinates(50, 50)
	set.Add(c)

	scene, err := layout.New(nil, set).Layout(context.Background(), layout.Options{Width: 200, Height: 100})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}
	return scene
}

func isWhite(c color.Color) bool {
	r, g, b, _ := c.RGBA()
	return r == 0xffff && g == 0xffff && b == 0xffff
}

// inked reports whether any pixel in the square around (x, y) is not white.
func inked(img image.Image, x, y int) bool {
	for dy := -2; dy <= 2; dy++ {
		for dx := -2; dx <= 2; dx++ {
			if !isWhite(img.At(x+dx, y+dy)) {
				return true
			}
		}
	}
	return false
}

func TestRasterizeCircle(t *testing.T) {
	img, err := Rasterize(circleScene(t), Options{})
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 200 || b.Dy() != 100 {
		t.Fatalf("image size = %v, want 200x100", b)
	}
	if !inked(img, 70, 50) {
		t.Error("no stroke on the circle's rightmost point")
	}
	if inked(img, 50, 50) {
		t.Error("circle center should stay background")
	}
	if inked(img, 150, 20) {
		t.Error("empty canvas area should stay background")
	}
}

func TestRasterizeBackground(t *testing.T) {
	img, err := Rasterize(circleScene(t), Options{Background: colornames.Black})
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if r, g, b, _ := img.At(150, 20).RGBA(); r != 0 || g != 0 || b != 0 {
		t.Errorf("background pixel = %v, want black", img.At(150, 20))
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(circleScene(t), Options{})
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("output is not a PNG: % x", data[:8])
	}
}

func TestRasterizeRejectsEmptyCanvas(t *testing.T) {
	if _, err := Rasterize(&layout.Scene{Model: drawing.NewModel("empty"), View: geom.Identity()}, Options{}); err == nil {
		t.Error("zero-size canvas should fail")
	}
}

func TestColorPrecedence(t *testing.T) {
	p := &painter{palette: map[string]color.Color{"holes": colornames.Red}}
	tests := []struct {
		name   string
		header drawing.Header
		want   color.Color
	}{
		{"entity color", drawing.Header{Layer: "holes", Color: "Green"}, colornames.Green},
		{"layer palette", drawing.Header{Layer: "HOLES"}, colornames.Red},
		{"fallback", drawing.Header{Layer: "other"}, ShapeColor},
		{"unknown color name", drawing.Header{Layer: "other", Color: "no-such-color"}, ShapeColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.color(&tt.header, ShapeColor); got != tt.want {
				t.Errorf("color = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlatten(t *testing.T) {
	c := drawing.NewCircle(geom.V3(0, 0, 0), 1).Conic
	pts := flatten(c, 0, 2*3.141592653589793, 4)
	if len(pts) != 5 {
		t.Fatalf("points = %d, want 5", len(pts))
	}
	if !pts[0].ApproxEqual(pts[4], 1e-9) {
		t.Errorf("full conic should close: %v vs %v", pts[0], pts[4])
	}
	if !pts[1].ApproxEqual(geom.V3(0, 1, 0), 1e-9) {
		t.Errorf("quarter point = %v", pts[1])
	}
}
