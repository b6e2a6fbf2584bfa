// Package pkg provides the core libraries for cadlayout.
//
// # Overview
//
// cadlayout places a CAD drawing on a fixed canvas next to procedurally
// generated shapes. The drawing is inserted once at its original size and
// once per track, scaled into target areas that shrink from track to track,
// and the composite is rasterized to PNG.
//
// # Architecture
//
// The typical data flow:
//
//	DXF / YAML drawing
//	         ↓
//	    [engine] package (decode through the drawing.Engine interface)
//	         ↓
//	    [loader] package (filter, rotate, relocate to the origin)
//	         ↓
//	    [layout] package (shapes + track copies → Scene)
//	         ↓
//	    [render] package (gogpu/gg rasterization)
//	         ↓
//	    [export] package (PNG next to the source)
//
// [pipeline] runs these stages with caching and is shared by the CLI and
// the HTTP server.
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/cadlayout/pkg/engine"
//	    "github.com/matzehuels/cadlayout/pkg/layout"
//	    "github.com/matzehuels/cadlayout/pkg/loader"
//	    "github.com/matzehuels/cadlayout/pkg/render"
//	)
//
//	l := loader.New(engine.New(nil))
//	scene, err := layout.New(l, nil).Layout(ctx, layout.Options{
//	    Source: loader.FileSource("bracket.dxf"),
//	})
//	if err != nil {
//	    return err
//	}
//	png, err := render.EncodePNG(scene, render.Options{})
//
// # Packages
//
// Geometry and model:
//
// [geom] - Vectors, axis-aligned bounds and 4x4 affine matrices, including
// the fit-to-area, relocation and rotation helpers the layout builds on.
//
// [shape] - Procedural shapes (circle, rectangle, rounded rectangle, slot)
// as a closed set of geometry variants with change notification.
//
// [observable] - Subscribe/notify support used by shapes and shape sets.
//
// [drawing] - The entity model, filtered cloning and the Engine interface.
// [drawing/dxf] decodes the ASCII DXF subset; [drawing/yamldoc] reads and
// writes the YAML drawing format.
//
// Pipeline:
//
// [engine], [loader], [layout], [render], [export] - The stages above.
//
// [dispatch] - A single-consumer FIFO task loop that orders redraw and
// export work.
//
// [pipeline] - Load → layout → render with artifact caching.
//
// Infrastructure:
//
// [cache] - File, Redis and null artifact caches with content-hashed keys.
//
// [config] - TOML configuration and its mapping onto layout options.
//
// [errors] - Error codes shared by the CLI and the HTTP server.
//
// [observability] - Hooks for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information set at build time.
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/geom
// [shape]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/shape
// [observable]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/observable
// [drawing]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/drawing
// [drawing/dxf]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/drawing/dxf
// [drawing/yamldoc]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/drawing/yamldoc
// [engine]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/engine
// [loader]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/loader
// [layout]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/layout
// [render]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/render
// [export]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/export
// [dispatch]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/dispatch
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/cadlayout/pkg/buildinfo
package pkg
