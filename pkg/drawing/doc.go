// Package drawing defines the in-memory drawing model shared by the loader,
// the layout orchestrator and the renderer.
//
// # Model
//
// A [Model] is an ordered list of [Entity] values plus the layer table.
// Every entity has a [Header] with a unique handle and a layer name.
// Supported kinds:
//
//   - [Line], [Polyline], [Point]
//   - [Circle] and [Arc], stored as a center plus two conjugate axis vectors
//     so that any affine transform (including non-uniform scaling) keeps
//     them exact; a scaled circle is an ellipse
//   - [Text] (single or multi line) with optional [Attribute] values
//   - [Dimension]
//   - [Region], which references its boundary entities by handle
//
// # Filtered Clones
//
// [Model.Clone] copies a model while dropping entity kinds and layers named
// in a [Filter]. Clones get fresh handles; references held by retained
// entities are re-resolved to the new handles and references to dropped
// entities are removed:
//
//	filtered := m.Clone(drawing.DefaultFilter())
//
// # Engines
//
// Parsing is behind the [Engine] interface so the loader and orchestrator
// can be tested against a fake. See package engine for the native DXF/YAML
// implementation.
package drawing
