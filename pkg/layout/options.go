package layout

import (
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/loader"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default canvas width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default canvas height in pixels.
	DefaultHeight = 600.0

	// DefaultColumns is the default number of equal-width canvas columns.
	// The track sequence needs at least MinColumns of them.
	DefaultColumns = 5

	// DefaultDotsPerUnit is the nominal stroke width in output pixels.
	DefaultDotsPerUnit = 1.5
)

// Tracks are the 1-based column numbers that receive a scaled copy of the
// drawing. The first entry is the reference track: later tracks get
// proportionally shorter target areas.
var Tracks = []int{2, 3, 4}

// MinColumns is the smallest column count that contains every track.
var MinColumns = Tracks[len(Tracks)-1]

// Options controls one layout pass.
type Options struct {
	// Width and Height are the canvas size.
	Width, Height float64

	// Columns splits the canvas into equal-width tracks.
	Columns int

	// DrawContainer adds a canvas-sized rectangle and derives the nominal
	// scene bounds from content instead of the canvas size.
	DrawContainer bool

	// ShowOriginalOnlyIfFits restricts the unscaled insertion to drawings
	// no larger than the nominal scene bounds.
	ShowOriginalOnlyIfFits bool

	// Rotation turns the inserted drawing clockwise, in degrees.
	Rotation float64

	// DotsPerUnit is the stroke width the renderer should produce in output
	// pixels regardless of zoom.
	DotsPerUnit float64

	// Source is the drawing to insert. A zero Source inserts nothing.
	Source loader.Source
}

// SetDefaults fills zero fields with their default values.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Columns == 0 {
		o.Columns = DefaultColumns
	}
	if o.DotsPerUnit <= 0 {
		o.DotsPerUnit = DefaultDotsPerUnit
	}
}

// Validate checks the options after defaults are applied.
func (o *Options) Validate() error {
	if o.Width <= 0 || o.Height <= 0 {
		return cerrors.New(cerrors.ErrCodeInvalidOption, "canvas size must be positive, got %gx%g", o.Width, o.Height)
	}
	if o.Columns < MinColumns {
		return cerrors.New(cerrors.ErrCodeInvalidOption, "need at least %d columns for tracks %v, got %d", MinColumns, Tracks, o.Columns)
	}
	return nil
}

// TrackWidth returns the width of one column.
func (o Options) TrackWidth() float64 {
	return o.Width / float64(o.Columns)
}
