package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/shape"
)

const sample = `
draw_container = true
show_original_only_if_fits = true
rotation = 90
columns = 8
exclude_layers = ["HATCH"]
exclude_kinds = ["dimension"]

[cache]
ttl = "1h"

[[shape]]
name = "hole"
kind = "circle"
x = 50
y = 50
radius = 10

[[shape]]
name = "keyway"
kind = "slot"
x = 200
y = 80
length = 40
height = 10
`

func TestDecode(t *testing.T) {
	cfg := Default()
	if err := Decode([]byte(sample), &cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !cfg.DrawContainer || !cfg.ShowOriginalOnlyIfFits || cfg.Rotation != 90 || cfg.Columns != 8 {
		t.Errorf("flags not decoded: %+v", cfg)
	}
	if cfg.Width != Default().Width {
		t.Errorf("width = %v, want default kept", cfg.Width)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}

	f, err := cfg.Filter()
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	want := drawing.Filter{ExcludeKinds: []drawing.Kind{drawing.KindDimension}, ExcludeLayers: []string{"HATCH"}}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("filter (-want +got):\n%s", diff)
	}

	set, err := cfg.ShapeSet()
	if err != nil {
		t.Fatalf("ShapeSet: %v", err)
	}
	if len(set.Drawable()) != 2 {
		t.Fatalf("drawable shapes = %d, want 2", len(set.Drawable()))
	}
	slot := set.Shapes()[1]
	if g := slot.Geometry().(shape.Slot); g.Radius != 5 {
		t.Errorf("slot radius = %v, want 5", g.Radius)
	}
	if set.HasUnsavedChanges() {
		t.Error("a freshly loaded set should not be dirty")
	}

	opts := cfg.LayoutOptions(loader.FileSource("part.dxf"))
	if !opts.DrawContainer || opts.Columns != 8 || opts.Source.Path != "part.dxf" {
		t.Errorf("layout options = %+v", opts)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		code cerrors.Code
	}{
		{"syntax", "rotation = ", cerrors.ErrCodeInvalidFormat},
		{"unknown key", "rotaton = 90", cerrors.ErrCodeInvalidOption},
		{"source kind", `source_kind = "url"`, cerrors.ErrCodeInvalidOption},
		{"entity kind", `exclude_kinds = ["SPLINE"]`, cerrors.ErrCodeInvalidOption},
		{"circle with length", "[[shape]]\nkind = \"circle\"\nradius = 1\nlength = 2", cerrors.ErrCodeInvalidOption},
		{"slot radius", "[[shape]]\nkind = \"slot\"\nlength = 10\nheight = 4\nradius = 3", cerrors.ErrCodeInvalidOption},
		{"half coordinates", "[[shape]]\nkind = \"circle\"\nradius = 1\nx = 2", cerrors.ErrCodeInvalidOption},
		{"shape kind", "[[shape]]\nkind = \"hexagon\"", cerrors.ErrCodeInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			err := Decode([]byte(tt.doc), &cfg)
			if !cerrors.Is(err, tt.code) {
				t.Errorf("Decode error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.toml")
	if err := os.WriteFile(path, []byte("columns = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Columns != 7 {
		t.Errorf("columns = %d", cfg.Columns)
	}

	_, err = Load(filepath.Join(dir, "missing.toml"))
	if !cerrors.Is(err, cerrors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: err = %v", err)
	}
}

func TestLoadDefaultPathOptional(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load without a file: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
}

func TestDefaultFilterMatchesDrawing(t *testing.T) {
	cfg := Default()
	f, err := cfg.Filter()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(drawing.DefaultFilter(), f); diff != "" {
		t.Errorf("default filter (-want +got):\n%s", diff)
	}
	want := drawing.Filter{
		ExcludeKinds:  []drawing.Kind{drawing.KindDimension, drawing.KindMText},
		ExcludeLayers: []string{"AM_5", "AM_7"},
	}
	if diff := cmp.Diff(want, f); diff != "" {
		t.Errorf("default exclusions (-want +got):\n%s", diff)
	}
	if !strings.EqualFold(cfg.SourceKind, "file") {
		t.Errorf("source kind = %q", cfg.SourceKind)
	}
}
