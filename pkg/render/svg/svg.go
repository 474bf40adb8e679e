// Package svg renders scenes as standalone SVG documents.
package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/sketchport/pkg/fonts"
	"github.com/matzehuels/sketchport/pkg/render"
	"github.com/matzehuels/sketchport/pkg/scene"
)

// Option configures SVG rendering.
type Option func(*renderer)

type renderer struct {
	background string
}

// WithBackground sets the page background color. Pass [scene.Transparent]
// to omit the backdrop rectangle entirely.
func WithBackground(c string) Option {
	return func(r *renderer) { r.background = c }
}

// Render writes the scene as an SVG document sized to the frame. Elements
// are emitted in document order so later elements paint over earlier ones,
// matching the raster backends.
func Render(doc *scene.Document, frame render.Frame, opts ...Option) []byte {
	r := renderer{background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%d" height="%d">`+"\n",
		frame.Width, frame.Height, frame.PixelWidth(), frame.PixelHeight())

	if r.background != scene.Transparent {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escapeXML(r.background))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(%.2f %.2f)">`+"\n", frame.OffsetX, frame.OffsetY)
	for _, el := range doc.Elements {
		renderElement(&buf, el)
	}
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderElement(buf *bytes.Buffer, el scene.Element) {
	switch e := el.(type) {
	case *scene.Rectangle:
		renderRectangle(buf, e)
	case *scene.Diamond:
		renderDiamond(buf, e)
	case *scene.Arrow:
		renderArrow(buf, e)
	case *scene.Text:
		renderText(buf, e)
	}
}

func renderRectangle(buf *bytes.Buffer, e *scene.Rectangle) {
	fmt.Fprintf(buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f"`,
		e.X, e.Y, e.Width, e.Height)
	if e.Rounded {
		fmt.Fprintf(buf, ` rx="%.2f"`, scene.CornerRadius)
	}
	writeShapeStyle(buf, e.Box)
	buf.WriteString("/>\n")
}

func renderDiamond(buf *bytes.Buffer, e *scene.Diamond) {
	buf.WriteString(`    <polygon points="`)
	for i, v := range e.Vertices() {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%.2f,%.2f", v[0], v[1])
	}
	buf.WriteByte('"')
	writeShapeStyle(buf, e.Box)
	buf.WriteString("/>\n")
}

func renderArrow(buf *bytes.Buffer, e *scene.Arrow) {
	verts := e.Vertices()
	if len(verts) == 0 {
		return
	}

	buf.WriteString(`    <polyline points="`)
	for i, v := range verts {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(buf, "%.2f,%.2f", v[0], v[1])
	}
	buf.WriteString(`" fill="none"`)
	writeStrokeStyle(buf, e.Box)
	buf.WriteString("/>\n")

	if !e.Arrowhead || len(verts) < 2 {
		return
	}
	tip := verts[len(verts)-1]
	left, right, ok := render.ArrowheadWings(verts[len(verts)-2], tip)
	if !ok {
		return
	}
	fmt.Fprintf(buf, `    <polyline points="%.2f,%.2f %.2f,%.2f %.2f,%.2f" fill="none"`,
		left[0], left[1], tip[0], tip[1], right[0], right[1])
	writeStrokeStyle(buf, e.Box)
	buf.WriteString("/>\n")
}

func renderText(buf *bytes.Buffer, e *scene.Text) {
	fmt.Fprintf(buf, `    <g font-family="%s" font-size="%.2f" fill="%s"`,
		escapeXML(fonts.FallbackFontFamily), e.FontSize, escapeXML(e.StrokeColor))
	switch e.TextAlign {
	case scene.AlignCenter:
		buf.WriteString(` text-anchor="middle"`)
	case scene.AlignRight:
		buf.WriteString(` text-anchor="end"`)
	}
	if a := e.Alpha(); a != 1 {
		fmt.Fprintf(buf, ` opacity="%.2f"`, a)
	}
	buf.WriteString(">\n")

	anchor := e.AnchorX()
	spacing := e.LineSpacing()
	for i, line := range e.Lines() {
		if line == "" {
			continue
		}
		fmt.Fprintf(buf, `      <text x="%.2f" y="%.2f" dominant-baseline="text-before-edge">%s</text>`+"\n",
			anchor, e.Y+float64(i)*spacing, escapeXML(line))
	}
	buf.WriteString("    </g>\n")
}

// writeShapeStyle emits fill and stroke attributes for closed shapes.
func writeShapeStyle(buf *bytes.Buffer, b scene.Box) {
	if b.Filled() {
		fmt.Fprintf(buf, ` fill="%s"`, escapeXML(b.BackgroundColor))
	} else {
		buf.WriteString(` fill="none"`)
	}
	writeStrokeStyle(buf, b)
}

// writeStrokeStyle emits stroke, dash and opacity attributes shared by all
// element kinds.
func writeStrokeStyle(buf *bytes.Buffer, b scene.Box) {
	fmt.Fprintf(buf, ` stroke="%s" stroke-width="%.2f"`, escapeXML(b.StrokeColor), b.StrokeWidth)
	if b.Dashed() {
		fmt.Fprintf(buf, ` stroke-dasharray="%g %g"`, scene.DashOn, scene.DashGap)
	}
	if a := b.Alpha(); a != 1 {
		fmt.Fprintf(buf, ` opacity="%.2f"`, a)
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
