// Package pkg provides the core libraries for Sketchport diagram rendering.
//
// # Overview
//
// Sketchport turns diagram documents (JSON scenes of rectangles, diamonds,
// arrows, and text with explicit geometry) into shareable images. The pkg
// directory is organized into three main areas:
//
//  1. [scene], [render] - Domain logic (document model, bounds, drawing)
//  2. [cache], [jobs], [source] - Infrastructure (caching, job records, input)
//  3. [pipeline] - Orchestration (load → bounds → render)
//
// # Architecture
//
// The typical data flow through Sketchport:
//
//	JSON document (file, stdin, URL)
//	         ↓
//	    [scene] package (decode + normalize styles)
//	         ↓
//	    [scene] bounds (tight extents + canvas padding)
//	         ↓
//	    [render] package (canvas commands, rasterization, SVG)
//	         ↓
//	    PNG/SVG/JSON output
//
// # Quick Start
//
// Render a document to PNG through the pipeline:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/sketchport/pkg/cache"
//	    "github.com/matzehuels/sketchport/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	defer runner.Close()
//
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Source:  "scene.json",
//	    Formats: []string{"png"},
//	    Backend: pipeline.BackendNative,
//	})
//	png := result.Artifacts["png"]
//
// # Main Packages
//
// ## Domain Logic
//
// [scene] - The document model. Decodes element JSON with style
// normalization (default stroke, background, opacity, font metrics),
// skips malformed elements with a warning, and computes the padded
// canvas bounds every backend shares.
//
// [render] - Drawing. Compiles elements to HTML5 canvas commands for the
// browser backend, rasterizes natively with a pure-Go 2D engine, and
// emits standalone SVG. All backends consume the same [render.Frame] so
// logical geometry is identical across formats.
//
// [render/browser] - Headless Chrome capture of the canvas host page,
// reproducing embedded-web-view output including font rasterization.
//
// [fonts] - The embedded typeface shared by every backend, so text looks
// the same with or without a browser.
//
// ## Infrastructure
//
// [cache] - Byte caches for parsed documents, rendered artifacts, and
// fetched sources. FileCache for CLI runs, RedisCache for serve mode,
// NullCache for disabled caching.
//
// [jobs] - Render job records for serve mode with memory, file, and
// MongoDB backends. Jobs expire after a TTL.
//
// [source] - Input resolution: file paths, stdin, and http(s) URLs with
// retry and response caching.
//
// [httputil] - Shared HTTP helpers (retry with backoff, response cache).
//
// [errors] - Coded errors (PARSE_ERROR, EMPTY_DOCUMENT, TIMEOUT, ...)
// that map to exit codes and HTTP statuses at the edges.
//
// [io] - Atomic artifact writes.
//
// [observability] - Hook points for pipeline, cache, and HTTP events.
//
// ## Orchestration
//
// [pipeline] - The complete load → bounds → render pipeline used by the
// CLI and serve mode, with per-stage caching and timing. Ensures
// consistent behavior across all entry points.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/scene/...      # Specific package
//	go test -run Example         # Examples only
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/scene
// [render]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/render
// [render/browser]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/render/browser
// [fonts]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/fonts
// [cache]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/cache
// [jobs]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/jobs
// [source]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/source
// [httputil]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/errors
// [io]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/io
// [observability]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/pipeline
// [render.Frame]: https://pkg.go.dev/github.com/matzehuels/sketchport/pkg/render#Frame
package pkg
