// Package pipeline provides the load → layout → render pipeline shared by
// the CLI and the HTTP server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse the source drawing through a [drawing.Engine], filter it
//     and relocate it to the origin
//  2. Layout: Compose the procedural shapes and the track copies into a
//     [layout.Scene]
//  3. Render: Rasterize the scene to PNG, or export it as a YAML drawing
//
// Rendered artifacts are cached under a key derived from the source bytes
// and every option that changes the output.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, engine.New(logger), logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Layout:  layout.Options{Source: loader.FileSource("part.dxf")},
//	    Formats: []string{pipeline.FormatPNG},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cadlayout/pkg/cache"
	"github.com/matzehuels/cadlayout/pkg/config"
	"github.com/matzehuels/cadlayout/pkg/drawing"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/layout"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/render"
	"github.com/matzehuels/cadlayout/pkg/shape"
)

// =============================================================================
// Default Values
// =============================================================================

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatYAML = "yaml"
)

// DefaultFormat is rendered when no format is requested.
const DefaultFormat = FormatPNG

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatYAML: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline run.
type Options struct {
	// Layout controls the scene. Layout.Source names the drawing.
	Layout layout.Options

	// Filter drops entities before insertion. The zero value keeps
	// everything; use drawing.DefaultFilter for the usual exclusions.
	Filter drawing.Filter

	// Shapes are drawn with the source. Nil draws none.
	Shapes *shape.Set

	// Strict makes a source that cannot be loaded an error. Otherwise the
	// scene is rendered without insertions.
	Strict bool

	// Refresh bypasses cached artifacts.
	Refresh bool

	Formats []string
	Render  render.Options

	// Acknowledger runs after each successful parse.
	Acknowledger loader.Acknowledger

	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Scene is the assembled scene. It is nil when every artifact came
	// from the cache.
	Scene *layout.Scene

	// SourceHash is the content hash of the source drawing, empty when
	// there is no source.
	SourceHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Entities   int
	Placements int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache use.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cerrors.New(cerrors.ErrCodeInvalidOption, "invalid format: %q (must be one of: png, yaml)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// FromConfig builds options for src from a loaded configuration.
func FromConfig(cfg *config.Config, src loader.Source) (Options, error) {
	filter, err := cfg.Filter()
	if err != nil {
		return Options{}, err
	}
	shapes, err := cfg.ShapeSet()
	if err != nil {
		return Options{}, err
	}
	return Options{
		Layout: cfg.LayoutOptions(src),
		Filter: filter,
		Shapes: shapes,
		Render: render.Options{FontPath: cfg.Font},
	}, nil
}

// ValidateAndSetDefaults applies defaults and checks every option. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.Layout.SetDefaults()
	if err := o.Layout.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Strict && o.Layout.Source.IsZero() {
		return cerrors.New(cerrors.ErrCodeInvalidInput, "a source drawing is required")
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	kinds := make([]string, len(o.Filter.ExcludeKinds))
	for i, k := range o.Filter.ExcludeKinds {
		kinds[i] = string(k)
	}
	layers := make([]string, len(o.Filter.ExcludeLayers))
	for i, l := range o.Filter.ExcludeLayers {
		layers[i] = strings.ToUpper(l)
	}
	slices.Sort(kinds)
	slices.Sort(layers)

	return cache.ArtifactKeyOpts{
		Format:                 format,
		Width:                  o.Layout.Width,
		Height:                 o.Layout.Height,
		Columns:                o.Layout.Columns,
		Rotation:               o.Layout.Rotation,
		DotsPerUnit:            o.Layout.DotsPerUnit,
		DrawContainer:          o.Layout.DrawContainer,
		ShowOriginalOnlyIfFits: o.Layout.ShowOriginalOnlyIfFits,
		ExcludeKinds:           kinds,
		ExcludeLayers:          layers,
		ShapesHash:             ShapesHash(o.Shapes),
		FontPath:               o.Render.FontPath,
		FontSize:               o.Render.FontSize,
	}
}

type shapeKey struct {
	Name     string         `json:"name"`
	Kind     string         `json:"kind"`
	Center   []float64      `json:"center,omitempty"`
	Geometry shape.Geometry `json:"geometry"`
}

// ShapesHash hashes the drawable shapes of set. Shapes that are not drawn
// do not change the output and are left out.
func ShapesHash(set *shape.Set) string {
	if set == nil {
		return ""
	}
	drawable := set.Drawable()
	if len(drawable) == 0 {
		return ""
	}
	keys := make([]shapeKey, len(drawable))
	for i, s := range drawable {
		c, _ := s.Center()
		keys[i] = shapeKey{
			Name:     s.Name(),
			Kind:     s.Kind().String(),
			Center:   []float64{c.X, c.Y},
			Geometry: s.Geometry(),
		}
	}
	data, err := json.Marshal(keys)
	if err != nil {
		panic(fmt.Sprintf("pipeline: hash shapes: %v", err))
	}
	return cache.Hash(data)
}
