// Package layout assembles the scene for one redraw.
//
// A scene is built from scratch every time: an optional canvas container,
// the drawable procedural shapes as authored, and copies of the loaded
// drawing. The drawing is inserted once at its original size and once per
// track, scaled to fit a target area that gets shorter with every track.
//
//	o := layout.New(loader.New(engine.New(logger)), shapes)
//	scene, err := o.Layout(ctx, layout.Options{Source: loader.FileSource(path)})
//
// Finally the scene is recentered around the origin and given a view
// transform that maps it onto the canvas with Y pointing down.
package layout

import (
	"context"
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cadlayout/pkg/geom"
	"github.com/matzehuels/cadlayout/pkg/loader"
	"github.com/matzehuels/cadlayout/pkg/shape"
)

// Orchestrator builds scenes from a shape set and a drawing loader.
type Orchestrator struct {
	loader *loader.Loader
	shapes *shape.Set
	logger *log.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// New returns an orchestrator. shapes may be nil.
func New(l *loader.Loader, shapes *shape.Set, opts ...Option) *Orchestrator {
	if shapes == nil {
		shapes = shape.NewSet()
	}
	o := &Orchestrator{
		loader: l,
		shapes: shapes,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Shapes returns the shape set the orchestrator draws.
func (o *Orchestrator) Shapes() *shape.Set { return o.shapes }

// Layout builds a new scene. It fails only for invalid options: a drawing
// that cannot be loaded leaves the scene without insertions.
func (o *Orchestrator) Layout(ctx context.Context, opts Options) (*Scene, error) {
	var block *loader.Block
	if !opts.Source.IsZero() && o.loader != nil {
		block = o.loader.LoadBlock(ctx, opts.Source, opts.Rotation)
		if block == nil {
			o.logger.Info("no drawing inserted", "source", opts.Source.Name())
		}
	}
	return o.Compose(opts, block)
}

// Compose builds a new scene around an already loaded block. A nil block
// inserts nothing.
func (o *Orchestrator) Compose(opts Options, block *loader.Block) (*Scene, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	name := "scene"
	if !opts.Source.IsZero() {
		name = opts.Source.Name()
	}
	scene := newScene(name, opts.Width, opts.Height)

	if opts.DrawContainer {
		scene.Model.Add(Container(opts.Width, opts.Height))
		scene.Nominal = scene.Model.Bounds()
	}
	for _, s := range o.shapes.Drawable() {
		for _, e := range ShapeEntities(s) {
			scene.Model.Add(e)
		}
	}

	if block != nil {
		o.insert(scene, block, opts)
	}

	scene.recenter(opts.DotsPerUnit)

	o.logger.Debug("scene assembled",
		"entities", scene.Model.Len(),
		"placements", len(scene.Placements),
		"resolution", scene.ResolutionScale)
	return scene, nil
}

func (o *Orchestrator) insert(scene *Scene, block *loader.Block, opts Options) {
	if !opts.ShowOriginalOnlyIfFits || block.Bounds.FitsWithin(scene.Nominal) {
		scene.Placements = append(scene.Placements, Placement{
			Track:     OriginalTrack,
			Model:     block.Instance(),
			Transform: geom.Identity(),
		})
	} else {
		o.logger.Debug("original drawing does not fit the canvas",
			"size", block.Bounds.Delta(), "canvas", scene.Nominal.Delta())
	}

	for _, track := range Tracks {
		scene.Placements = append(scene.Placements, trackPlacement(block, track, opts))
	}
}

// trackPlacement scales a copy of block into the target area of track and
// positions it in that track's column.
func trackPlacement(block *loader.Block, track int, opts Options) Placement {
	tw := opts.TrackWidth()
	area := TrackArea(track, tw, opts.Height)

	t := geom.ScaleToFit(block.Bounds, area)
	m := block.Instance()
	m.Transform(t)

	return Placement{
		Track:     track,
		Model:     m,
		Transform: t,
		Insertion: InsertionPoint(track, tw, opts.Height, area),
	}
}

// TrackArea returns the target area for track: one track wide and half the
// canvas high at the first track, shrinking in proportion for later ones.
func TrackArea(track int, trackWidth, canvasHeight float64) geom.Vec3 {
	first := float64(Tracks[0])
	return geom.V3(trackWidth, canvasHeight*0.5*first/float64(track), 0)
}

// InsertionPoint returns the lower-left insertion of a copy scaled into area.
// The anchor is the middle of column track (1-based) in the lower half of
// the canvas, moved down and left by half the area's smaller side.
func InsertionPoint(track int, trackWidth, canvasHeight float64, area geom.Vec3) geom.Vec3 {
	off := math.Min(area.X, area.Y) / 2
	cx := trackWidth * (float64(track) - 0.5)
	cy := canvasHeight * 0.5 * 0.5
	return geom.V3(cx-off, cy-off, 0)
}
