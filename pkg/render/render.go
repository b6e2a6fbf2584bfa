package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gogpu/gg"
	"golang.org/x/image/colornames"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	cerrors "github.com/matzehuels/cadlayout/pkg/errors"
	"github.com/matzehuels/cadlayout/pkg/geom"
	"github.com/matzehuels/cadlayout/pkg/layout"
)

// conicSegments is the number of line segments a full conic is flattened
// into. Arcs use a share proportional to their sweep.
const conicSegments = 96

// Options controls rasterization.
type Options struct {
	// Background fills the canvas. Nil means white.
	Background color.Color

	// Palette maps layer names (case-insensitive) to stroke colors.
	Palette map[string]color.Color

	// FontPath is a TrueType font for text entities. Without one, text is
	// skipped.
	FontPath string

	// FontSize is the text size in points, used when an entity's own height
	// cannot be mapped to pixels.
	FontSize float64

	// Logger receives debug output. Nil discards it.
	Logger *log.Logger
}

// Defaults for content that has no color of its own.
var (
	ContainerColor = colornames.Darkgray
	ShapeColor     = colornames.Steelblue
	DrawingColor   = colornames.Black
	OriginalColor  = colornames.Dimgray
)

// BridgeLogger sends gogpu/gg's internal log output to logger.
func BridgeLogger(logger *log.Logger) {
	if logger == nil {
		gg.SetLogger(nil)
		return
	}
	gg.SetLogger(slog.New(logger))
}

// EncodePNG rasterizes scene and returns it PNG encoded.
func EncodePNG(scene *layout.Scene, opts Options) ([]byte, error) {
	dc, err := draw(scene, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeRenderFailed, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Rasterize draws scene and returns the image.
func Rasterize(scene *layout.Scene, opts Options) (image.Image, error) {
	dc, err := draw(scene, opts)
	if err != nil {
		return nil, err
	}
	defer dc.Close()
	return dc.Image(), nil
}

func draw(scene *layout.Scene, opts Options) (*gg.Context, error) {
	w, h := int(math.Ceil(scene.Width)), int(math.Ceil(scene.Height))
	if w <= 0 || h <= 0 {
		return nil, cerrors.New(cerrors.ErrCodeRenderFailed, "canvas size %dx%d", w, h)
	}

	dc := gg.NewContext(w, h)
	bg := opts.Background
	if bg == nil {
		bg = colornames.White
	}
	dc.ClearWithColor(gg.FromColor(bg))

	p := &painter{
		dc:      dc,
		view:    scene.View,
		width:   scene.ResolutionScale * scene.View.UniformScale(),
		palette: opts.Palette,
		logger:  opts.Logger,
	}
	if opts.FontPath != "" {
		size := opts.FontSize
		if size <= 0 {
			size = 12
		}
		if err := dc.LoadFontFace(opts.FontPath, size); err != nil {
			p.debug("font not loaded, text is skipped", "path", opts.FontPath, "err", err)
		} else {
			p.font = true
		}
	}

	for _, e := range scene.Model.Entities {
		fallback := ShapeColor
		if e.Head().Layer == layout.LayerContainer {
			fallback = ContainerColor
		}
		if err := p.entity(e, fallback); err != nil {
			dc.Close()
			return nil, err
		}
	}
	for _, pl := range scene.Placements {
		fallback := DrawingColor
		if pl.Track == layout.OriginalTrack {
			fallback = OriginalColor
		}
		for _, e := range pl.World().Entities {
			if err := p.entity(e, fallback); err != nil {
				dc.Close()
				return nil, err
			}
		}
	}

	p.debug("scene rasterized", "size", fmt.Sprintf("%dx%d", w, h), "drawn", p.drawn, "skipped", p.skipped, "stroke", p.width)
	return dc, nil
}

type painter struct {
	dc      *gg.Context
	view    geom.Matrix
	width   float64
	palette map[string]color.Color
	logger  *log.Logger
	font    bool

	drawn, skipped int
}

func (p *painter) debug(msg string, kv ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, kv...)
	}
}

func (p *painter) color(h *drawing.Header, fallback color.Color) color.Color {
	if c, ok := colornames.Map[strings.ToLower(h.Color)]; ok {
		return c
	}
	for name, c := range p.palette {
		if strings.EqualFold(name, h.Layer) {
			return c
		}
	}
	return fallback
}

func (p *painter) entity(e drawing.Entity, fallback color.Color) error {
	p.dc.SetColor(p.color(e.Head(), fallback))
	p.dc.SetLineWidth(p.width)

	switch e := e.(type) {
	case *drawing.Line:
		return p.stroke([]geom.Vec3{e.Start, e.End}, false)
	case *drawing.Polyline:
		return p.stroke(e.Vertices, e.Closed)
	case *drawing.Dimension:
		return p.stroke([]geom.Vec3{e.Start, e.End}, false)
	case *drawing.Circle:
		return p.stroke(flatten(e.Conic, 0, 2*math.Pi, conicSegments), true)
	case *drawing.Arc:
		sweep := e.Sweep()
		n := int(math.Ceil(conicSegments * sweep / (2 * math.Pi)))
		return p.stroke(flatten(e.Conic, e.Start, sweep, max(n, 2)), false)
	case *drawing.Point:
		x, y := p.project(e.Position)
		p.dc.DrawCircle(x, y, math.Max(p.width, 1))
		p.drawn++
		return p.fill()
	case *drawing.Text:
		if !p.font {
			p.skipped++
			return nil
		}
		x, y := p.project(e.Position)
		p.dc.DrawString(e.Value, x, y)
		p.drawn++
		return nil
	}
	p.skipped++
	return nil
}

func (p *painter) project(v geom.Vec3) (float64, float64) {
	q := p.view.Apply(v)
	return q.X, q.Y
}

func (p *painter) stroke(pts []geom.Vec3, closed bool) error {
	if len(pts) < 2 {
		p.skipped++
		return nil
	}
	p.dc.MoveTo(p.project(pts[0]))
	for _, v := range pts[1:] {
		p.dc.LineTo(p.project(v))
	}
	if closed {
		p.dc.ClosePath()
	}
	p.drawn++
	if err := p.dc.Stroke(); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeRenderFailed, err, "stroke")
	}
	return nil
}

func (p *painter) fill() error {
	if err := p.dc.Fill(); err != nil {
		return cerrors.Wrap(cerrors.ErrCodeRenderFailed, err, "fill")
	}
	return nil
}

// flatten samples n segments of c from start over sweep radians.
func flatten(c drawing.Conic, start, sweep float64, n int) []geom.Vec3 {
	pts := make([]geom.Vec3, n+1)
	for i := range pts {
		pts[i] = c.At(start + sweep*float64(i)/float64(n))
	}
	return pts
}
