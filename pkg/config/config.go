// Package config loads cadlayout.toml.
//
// Every field has a default, so a missing file is not an error when the
// default path is used. Command-line flags override file values; the CLI
// applies them after [Load].
//
//	draw_container = true
//	rotation = 90
//	exclude_layers = ["AM_5", "AM_7", "HATCH"]
//
//	[[shape]]
//	name = "hole"
//	kind = "circle"
//	x = 50
//	y = 50
//	radius = 10
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/layout"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/shape"
)

// DefaultPath is the file Load reads when no path is given.
const DefaultPath = "cadlayout.toml"

// Config is the file format.
type Config struct {
	DrawContainer          bool    `toml:"draw_container"`
	ShowOriginalOnlyIfFits bool    `toml:"show_original_only_if_fits"`
	AutoDismissDialog      bool    `toml:"auto_dismiss_dialog"`
	SourceKind             string  `toml:"source_kind"`
	Rotation               float64 `toml:"rotation"`
	Columns                int     `toml:"columns"`
	Width                  float64 `toml:"width"`
	Height                 float64 `toml:"height"`
	DotsPerUnit            float64 `toml:"dots_per_unit"`
	Reveal                 bool    `toml:"reveal"`
	Font                   string  `toml:"font"`

	ExcludeLayers []string `toml:"exclude_layers"`
	ExcludeKinds  []string `toml:"exclude_kinds"`

	Cache  Cache   `toml:"cache"`
	Shapes []Shape `toml:"shape"`
}

// Cache selects the artifact cache backend.
type Cache struct {
	// Dir is the file cache directory. Empty means the user cache dir.
	Dir string `toml:"dir"`
	// RedisURL switches to a Redis backend when set.
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
	Disabled bool     `toml:"disabled"`
}

// Duration is a time.Duration written as a string such as "24h".
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Shape declares a procedural shape. Sizing fields that do not apply to
// Kind must be left out.
type Shape struct {
	Name   string   `toml:"name"`
	Kind   string   `toml:"kind"`
	X      *float64 `toml:"x"`
	Y      *float64 `toml:"y"`
	Radius float64  `toml:"radius"`
	Length float64  `toml:"length"`
	Height float64  `toml:"height"`
}

// Default returns the configuration used without a file.
func Default() Config {
	return Config{
		SourceKind:    string(loader.SourceFile),
		Columns:       layout.DefaultColumns,
		Width:         layout.DefaultWidth,
		Height:        layout.DefaultHeight,
		DotsPerUnit:   layout.DefaultDotsPerUnit,
		ExcludeLayers: append([]string(nil), drawing.DefaultExcludedLayers...),
		ExcludeKinds:  kindNames(drawing.DefaultExcludedKinds),
		Cache:         Cache{TTL: Duration{7 * 24 * time.Hour}},
	}
}

// Load reads path over the defaults. An empty path reads DefaultPath and
// tolerates its absence.
func Load(path string) (Config, error) {
	cfg := Default()
	optional := path == ""
	if optional {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if optional {
			return cfg, nil
		}
		return cfg, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "config %s not found", path)
	}
	if err != nil {
		return cfg, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	if err := Decode(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Decode parses TOML into cfg, keeping the fields the document leaves out.
// Unknown keys are rejected.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cerrors.New(cerrors.ErrCodeInvalidOption, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Validate checks values that layout options do not cover.
func (c *Config) Validate() error {
	if _, err := loader.ParseSourceKind(c.SourceKind); err != nil {
		return err
	}
	if _, err := c.Filter(); err != nil {
		return err
	}
	if _, err := c.ShapeSet(); err != nil {
		return err
	}
	return nil
}

// Filter returns the loader's exclusion filter.
func (c *Config) Filter() (drawing.Filter, error) {
	f := drawing.Filter{ExcludeLayers: append([]string(nil), c.ExcludeLayers...)}
	for _, name := range c.ExcludeKinds {
		k, err := drawing.ParseKind(name)
		if err != nil {
			return f, cerrors.Wrap(cerrors.ErrCodeInvalidOption, err, "exclude_kinds")
		}
		f.ExcludeKinds = append(f.ExcludeKinds, k)
	}
	for _, l := range f.ExcludeLayers {
		if err := cerrors.ValidateLayerName(l); err != nil {
			return f, err
		}
	}
	return f, nil
}

// LayoutOptions returns the layout options for src.
func (c *Config) LayoutOptions(src loader.Source) layout.Options {
	return layout.Options{
		Width:                  c.Width,
		Height:                 c.Height,
		Columns:                c.Columns,
		DrawContainer:          c.DrawContainer,
		ShowOriginalOnlyIfFits: c.ShowOriginalOnlyIfFits,
		Rotation:               c.Rotation,
		DotsPerUnit:            c.DotsPerUnit,
		Source:                 src,
	}
}

// ShapeSet builds the declared shapes.
func (c *Config) ShapeSet() (*shape.Set, error) {
	set := shape.NewSet()
	for i, sc := range c.Shapes {
		s, err := sc.build()
		if err != nil {
			return nil, cerrors.Wrap(cerrors.ErrCodeInvalidOption, err, "shape %d (%s)", i, sc.Name)
		}
		set.Add(s)
	}
	set.MarkSaved()
	return set, nil
}

func (sc Shape) build() (*shape.Shape, error) {
	kind, err := shape.ParseKind(sc.Kind)
	if err != nil {
		return nil, err
	}

	var g shape.Geometry
	switch kind {
	case shape.KindCircle:
		if sc.Length != 0 || sc.Height != 0 {
			return nil, errors.New("a circle has no length or height")
		}
		g = shape.Circle{Radius: sc.Radius}
	case shape.KindRectangle:
		if sc.Radius != 0 {
			return nil, errors.New("a rectangle has no radius")
		}
		g = shape.Rectangle{Length: sc.Length, Height: sc.Height}
	case shape.KindRoundedRectangle:
		g = shape.RoundedRectangle{Length: sc.Length, Height: sc.Height, Radius: sc.Radius}
	case shape.KindSlot:
		if sc.Radius != 0 && !shape.RadiusIsHalfHeight(sc.Height, sc.Radius) {
			return nil, errors.New("a slot's radius must be half its height")
		}
		g = shape.NewSlot(sc.Length, sc.Height)
	}

	s := shape.New(sc.Name, g)
	if sc.X != nil && sc.Y != nil {
		s.SetCoordinates(*sc.X, *sc.Y)
	} else if sc.X != nil || sc.Y != nil {
		return nil, errors.New("x and y must be set together")
	}
	return s, nil
}

func kindNames(kinds []drawing.Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
