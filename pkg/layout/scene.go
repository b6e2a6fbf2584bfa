package layout

import (
	"math"

	"github.com/matzehuels/cadlayout/pkg/drawing"
	"github.com/matzehuels/cadlayout/pkg/geom"
)

// Layers used for entities the orchestrator creates itself.
const (
	LayerContainer = "CONTAINER"
	LayerShapes    = "SHAPES"
)

// OriginalTrack marks the unscaled insertion in Placement.Track.
const OriginalTrack = 0

// Placement is one inserted copy of the drawing block. Model holds the
// copy in block coordinates after Transform; Insertion moves it into the
// scene.
type Placement struct {
	Track     int
	Model     *drawing.Model
	Transform geom.Matrix
	Insertion geom.Vec3
}

// Bounds returns the placement's extent in scene coordinates.
func (p Placement) Bounds() geom.Bounds {
	return p.Model.Bounds().Transform(geom.Translation(p.Insertion))
}

// World returns a copy of the placed entities in scene coordinates.
func (p Placement) World() *drawing.Model {
	m := p.Model.Copy()
	m.Transform(geom.Translation(p.Insertion))
	return m
}

// Scene is everything assembled for one redraw.
type Scene struct {
	// Model holds the container and procedural shapes.
	Model *drawing.Model

	// Placements holds the inserted drawing copies in insertion order.
	Placements []Placement

	// Nominal is the bounds the fit check, the zoom and the recentering
	// use: the container when one is drawn, the canvas otherwise.
	Nominal geom.Bounds

	// Bounds is Nominal after recentering.
	Bounds geom.Bounds

	// Offset is the translation applied when recentering.
	Offset geom.Vec3

	// ResolutionScale converts a stroke width in output pixels to scene
	// units.
	ResolutionScale float64

	// View maps scene coordinates onto canvas pixels with Y pointing down.
	View geom.Matrix

	// Width and Height are the canvas size in pixels.
	Width, Height float64
}

func newScene(name string, width, height float64) *Scene {
	return &Scene{
		Model:           drawing.NewModel(name),
		Nominal:         geom.NewBounds(geom.Vec3{}, geom.V3(width, height, 0)),
		Bounds:          geom.EmptyBounds(),
		ResolutionScale: 1,
		View:            geom.Identity(),
		Width:           width,
		Height:          height,
	}
}

// Len returns the number of top-level items: entities of Model plus one per
// placement.
func (s *Scene) Len() int {
	return s.Model.Len() + len(s.Placements)
}

// ContentBounds returns the union of the model and all placements.
func (s *Scene) ContentBounds() geom.Bounds {
	b := s.Model.Bounds()
	for _, p := range s.Placements {
		b = b.Union(p.Bounds())
	}
	return b
}

// Flatten returns a single model holding every entity in scene coordinates.
func (s *Scene) Flatten() *drawing.Model {
	out := s.Model.Copy()
	for _, p := range s.Placements {
		out.Entities = append(out.Entities, p.World().Entities...)
	}
	return out
}

// recenter moves all content so the nominal bounds center sits at the
// origin and derives the view transform and resolution scale for the canvas.
// Content outside the nominal bounds does not change the zoom.
func (s *Scene) recenter(dotsPerUnit float64) {
	b := s.Nominal
	if b.IsEmpty() {
		s.ResolutionScale = dotsPerUnit
		return
	}

	zoom := fitZoom(s.Width, s.Height, b.Delta())
	s.ResolutionScale = dotsPerUnit / zoom

	t := geom.TranslateToCenter(b)
	s.Offset = t.TranslationPart()
	s.Model.Transform(t)
	for i := range s.Placements {
		s.Placements[i].Insertion = s.Placements[i].Insertion.Add(s.Offset)
	}
	s.Nominal = s.Nominal.Transform(t)
	s.Bounds = b.Transform(t)

	s.View = geom.Translation(geom.V3(s.Width/2, s.Height/2, 0)).
		Mul(geom.Scaling(geom.V3(zoom, -zoom, 1)))
}

// fitZoom returns the largest uniform scale that fits delta into the
// canvas. Degenerate axes do not constrain it.
func fitZoom(width, height float64, delta geom.Vec3) float64 {
	zoom := math.Inf(1)
	if delta.X > 0 {
		zoom = math.Min(zoom, width/delta.X)
	}
	if delta.Y > 0 {
		zoom = math.Min(zoom, height/delta.Y)
	}
	if math.IsInf(zoom, 1) {
		return 1
	}
	return zoom
}
