// Package render rasterizes a layout scene.
//
// [Rasterize] draws every entity of a [layout.Scene] through the scene's view
// transform onto a canvas of the scene's size using the gogpu/gg software
// renderer. Conics are flattened into polylines after the view transform, so
// circles that went through a non-uniform track scale come out as ellipses.
//
// Stroke widths follow the scene's resolution scale: a scene zoomed out to
// fit a large drawing still renders lines of the same pixel width.
//
//	img, err := render.Rasterize(scene, render.Options{})
//	data, err := render.EncodePNG(scene, render.Options{})
//
// Colors come from golang.org/x/image/colornames. An entity's own color name
// wins over its layer's palette entry, which wins over the default for the
// kind of content (container, procedural shape, or inserted drawing).
package render
