// Package render turns parsed scenes into image output.
//
// # Overview
//
// This package contains the drawing pipeline shared by every output
// backend. It provides:
//
//   - Surface geometry ([Frame]) derived from scene bounds
//   - Shared drawing math (arrowhead wings, hex color parsing)
//   - Canvas command generation (in [canvas] subpackage)
//   - Native PNG rasterization (in [raster] subpackage)
//   - SVG output (in [svg] subpackage)
//   - Headless browser capture (in [browser] subpackage)
//
// # Backends
//
// Two backends produce PNG output. The browser backend compiles the scene
// to HTML5 canvas commands with [canvas.Compile], loads the host page in
// headless Chrome and screenshots the surface (this reproduces the
// reference renderer pixel-for-pixel, including font rasterization). The
// native backend in [raster] draws the same scene with a pure-Go 2D
// engine and needs no external runtime.
//
//	page := canvas.HostPage(doc, frame)
//	png, err := browser.Capture(ctx, page, frame, opts)
//
//	png, err := raster.RenderPNG(doc, frame)
//
// Both consume the same [Frame] so their logical geometry is identical;
// only rasterization details differ.
//
// # SVG Output
//
// [svg.Render] writes the scene as a standalone SVG document. It shares
// the element geometry with the raster backends but keeps colors and dash
// patterns as attributes, so the output stays editable.
//
// [canvas]: github.com/matzehuels/sketchport/pkg/render/canvas
// [raster]: github.com/matzehuels/sketchport/pkg/render/raster
// [svg]: github.com/matzehuels/sketchport/pkg/render/svg
// [canvas.Compile]: github.com/matzehuels/sketchport/pkg/render/canvas.Compile
// [canvas.HostPage]: github.com/matzehuels/sketchport/pkg/render/canvas.HostPage
// [svg.Render]: github.com/matzehuels/sketchport/pkg/render/svg.Render
// [browser]: github.com/matzehuels/sketchport/pkg/render/browser
package render
