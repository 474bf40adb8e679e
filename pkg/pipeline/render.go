package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/sketchport/pkg/observability"
	"github.com/matzehuels/sketchport/pkg/render"
	"github.com/matzehuels/sketchport/pkg/render/browser"
	"github.com/matzehuels/sketchport/pkg/render/canvas"
	"github.com/matzehuels/sketchport/pkg/render/raster"
	"github.com/matzehuels/sketchport/pkg/render/svg"
	"github.com/matzehuels/sketchport/pkg/scene"
)

// renderArtifacts generates every requested format for the document.
// Formats render independently; the shared frame geometry guarantees the
// PNG and SVG outputs agree on canvas size and element placement.
func renderArtifacts(ctx context.Context, doc *scene.Document, bounds scene.Bounds, opts Options) (map[string][]byte, error) {
	frame := render.NewFrame(bounds, opts.Scale)
	background := backgroundFor(opts)

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := renderFormat(ctx, doc, frame, format, background, opts)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// renderFormat produces the bytes for one output format.
func renderFormat(ctx context.Context, doc *scene.Document, frame render.Frame, format, background string, opts Options) ([]byte, error) {
	switch format {
	case FormatPNG:
		return renderPNG(ctx, doc, frame, background, opts)
	case FormatSVG:
		return svg.Render(doc, frame, svg.WithBackground(background)), nil
	case FormatJSON:
		// Re-export the normalized document. Round-tripping it through
		// ReadDocument yields an identical scene, which makes this the
		// debugging view of what the renderers actually saw.
		return scene.MarshalDocument(doc)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// renderPNG rasterizes via the selected backend. The browser backend
// owns a fresh headless instance for the duration of the capture; the
// native backend draws in-process.
func renderPNG(ctx context.Context, doc *scene.Document, frame render.Frame, background string, opts Options) ([]byte, error) {
	start := time.Now()
	observability.Pipeline().OnCaptureStart(ctx, opts.Backend)

	var data []byte
	var err error
	if opts.IsNative() {
		data, err = raster.RenderPNG(doc, frame, raster.WithBackground(background))
	} else {
		page := canvas.HostPage(doc, frame, canvas.WithBackground(background))
		data, err = browser.Capture(ctx, page, frame, opts.BrowserOptions())
	}

	observability.Pipeline().OnCaptureComplete(ctx, opts.Backend, len(data), time.Since(start), err)
	return data, err
}

func backgroundFor(opts Options) string {
	if opts.Transparent {
		return scene.Transparent
	}
	return "#ffffff"
}

// encodeCachedDocument serializes a decoded document for the document
// cache. The wire shape is the normalized document JSON plus the skip
// count, which MarshalDocument alone would lose.
func encodeCachedDocument(doc *scene.Document) ([]byte, error) {
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", doc.Skipped)
	buf.Write(data)
	return buf.Bytes(), nil
}

// decodeCachedDocument restores a document stored by encodeCachedDocument.
func decodeCachedDocument(data []byte) (*scene.Document, error) {
	var skipped int
	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		return nil, fmt.Errorf("malformed cached document")
	}
	if _, err := fmt.Sscanf(string(data[:idx]), "%d", &skipped); err != nil {
		return nil, fmt.Errorf("malformed cached document header: %w", err)
	}

	doc, err := scene.ReadDocument(bytes.NewReader(data[idx+1:]))
	if err != nil {
		return nil, err
	}
	doc.Skipped = skipped
	return doc, nil
}
