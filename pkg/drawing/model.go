package drawing

import (
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/cadlayout/pkg/geom"
)

// Layer is an entry of the layer table.
type Layer struct {
	Name  string
	Color string
}

// Model is an ordered collection of entities.
type Model struct {
	Name     string
	Layers   []Layer
	Entities []Entity
}

// NewModel returns an empty model.
func NewModel(name string) *Model {
	return &Model{Name: name}
}

// NewHandle returns a fresh entity handle.
func NewHandle() string {
	return uuid.NewString()
}

// Add appends e, assigning a handle if it has none, and returns e.
func (m *Model) Add(e Entity) Entity {
	if h := e.Head(); h.Handle == "" {
		h.Handle = NewHandle()
	}
	m.Entities = append(m.Entities, e)
	return e
}

// Len returns the number of entities.
func (m *Model) Len() int { return len(m.Entities) }

// Lookup returns the entity with the given handle.
func (m *Model) Lookup(handle string) (Entity, bool) {
	for _, e := range m.Entities {
		if e.Head().Handle == handle {
			return e, true
		}
	}
	return nil, false
}

// Layer returns the layer table entry named name, ignoring case.
func (m *Model) Layer(name string) (Layer, bool) {
	for _, l := range m.Layers {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Layer{}, false
}

// Bounds returns the union of all entity bounds.
func (m *Model) Bounds() geom.Bounds {
	b := geom.EmptyBounds()
	for _, e := range m.Entities {
		b = b.Union(e.Bounds())
	}
	return b
}

// Transform applies t to every entity in place.
func (m *Model) Transform(t geom.Matrix) {
	for _, e := range m.Entities {
		e.Transform(t)
	}
}

// CountKind returns the number of entities of kind k.
func (m *Model) CountKind(k Kind) int {
	n := 0
	for _, e := range m.Entities {
		if e.Kind() == k {
			n++
		}
	}
	return n
}

// Filter names the entity kinds and layers a clone drops.
type Filter struct {
	ExcludeKinds  []Kind
	ExcludeLayers []string
}

// DefaultExcludedKinds are annotation entities the simplified transform path
// does not support. Single-line TEXT stays and is scaled with its block.
var DefaultExcludedKinds = []Kind{KindDimension, KindMText}

// DefaultExcludedLayers are the mechanical-toolset layers for hidden and
// center lines.
var DefaultExcludedLayers = []string{"AM_5", "AM_7"}

// DefaultFilter returns the filter used when loading insertable blocks.
func DefaultFilter() Filter {
	return Filter{
		ExcludeKinds:  append([]Kind(nil), DefaultExcludedKinds...),
		ExcludeLayers: append([]string(nil), DefaultExcludedLayers...),
	}
}

// Excludes reports whether e is dropped by f. Layer names compare without
// regard to case.
func (f Filter) Excludes(e Entity) bool {
	for _, k := range f.ExcludeKinds {
		if e.Kind() == k {
			return true
		}
	}
	layer := e.Head().Layer
	for _, l := range f.ExcludeLayers {
		if strings.EqualFold(layer, l) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of m without the entities f excludes. Retained
// entities get new handles. References among retained entities are rewritten
// to the new handles; references to excluded or unknown entities are
// dropped.
func (m *Model) Clone(f Filter) *Model {
	out := &Model{
		Name:     m.Name,
		Layers:   append([]Layer(nil), m.Layers...),
		Entities: make([]Entity, 0, len(m.Entities)),
	}

	remap := make(map[string]string, len(m.Entities))
	for _, e := range m.Entities {
		if f.Excludes(e) {
			continue
		}
		c := e.Copy()
		old := c.Head().Handle
		c.Head().Handle = NewHandle()
		if old != "" {
			remap[old] = c.Head().Handle
		}
		out.Entities = append(out.Entities, c)
	}

	for _, e := range out.Entities {
		r, ok := e.(Referrer)
		if !ok {
			continue
		}
		var kept []string
		for _, h := range r.References() {
			if nh, ok := remap[h]; ok {
				kept = append(kept, nh)
			}
		}
		r.SetReferences(kept)
	}
	return out
}

// Copy returns a deep copy of m that keeps every entity and handle.
func (m *Model) Copy() *Model {
	out := &Model{
		Name:     m.Name,
		Layers:   append([]Layer(nil), m.Layers...),
		Entities: make([]Entity, len(m.Entities)),
	}
	for i, e := range m.Entities {
		out.Entities[i] = e.Copy()
	}
	return out
}
