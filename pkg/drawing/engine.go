package drawing

import (
	"context"

	"github.com/matzehuels/cadlayout/pkg/geom"
)

// Engine is the capability the loader needs from a CAD toolkit.
type Engine interface {
	// Parse decodes a drawing. It fails when data is not a drawing the
	// engine understands.
	Parse(ctx context.Context, data []byte) (*Model, error)
	// Bounds returns the extent of m.
	Bounds(m *Model) geom.Bounds
	// Transform applies t to every entity of m in place.
	Transform(m *Model, t geom.Matrix)
}

// Base implements Bounds and Transform with the model's own methods. Engines
// embed it and only provide Parse.
type Base struct{}

// Bounds returns m.Bounds().
func (Base) Bounds(m *Model) geom.Bounds { return m.Bounds() }

// Transform calls m.Transform(t).
func (Base) Transform(m *Model, t geom.Matrix) { m.Transform(t) }
