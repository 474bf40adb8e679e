// Package canvas compiles scenes into HTML5 canvas draw commands.
//
// # Overview
//
// [Compile] turns a scene into the JavaScript statements that draw it onto
// a 2D context named ctx. [HostPage] wraps those statements in a minimal
// self-contained HTML page with an embedded typeface; the browser backend
// loads that page headlessly and screenshots the canvas element.
//
// Each element draws inside its own save/restore pair, so style state
// (opacity, dash pattern, stroke settings) never leaks from one element to
// the next. The page sets window.__sketchportDone once the last command
// has run, which is the completion signal the capture driver polls.
package canvas

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/sketchport/pkg/fonts"
	"github.com/matzehuels/sketchport/pkg/render"
	"github.com/matzehuels/sketchport/pkg/scene"
)

const (
	// DoneFlag is the window property the host page sets to true once
	// every draw command has executed.
	DoneFlag = "__sketchportDone"

	// SurfaceID is the DOM id of the canvas element in the host page.
	SurfaceID = "surface"
)

// Option configures command generation.
type Option func(*compiler)

type compiler struct {
	background string
}

// WithBackground sets the color the surface is cleared to before drawing.
// Pass [scene.Transparent] to leave the canvas unfilled, which produces a
// PNG with an alpha channel.
func WithBackground(c string) Option {
	return func(cp *compiler) { cp.background = c }
}

// Compile emits the draw commands for the scene. The statements expect a
// 2D context bound to ctx whose backing store is frame.PixelWidth by
// frame.PixelHeight; the emitted prologue applies the device scale and the
// padding translation, so element coordinates stay in document space.
func Compile(doc *scene.Document, frame render.Frame, opts ...Option) string {
	cp := compiler{background: "#ffffff"}
	for _, opt := range opts {
		opt(&cp)
	}

	var buf bytes.Buffer
	if cp.background != scene.Transparent {
		fmt.Fprintf(&buf, "ctx.fillStyle = %s;\n", jsString(cp.background))
		fmt.Fprintf(&buf, "ctx.fillRect(0, 0, %d, %d);\n", frame.PixelWidth(), frame.PixelHeight())
	}
	fmt.Fprintf(&buf, "ctx.scale(%s, %s);\n", num(frame.Scale), num(frame.Scale))
	fmt.Fprintf(&buf, "ctx.translate(%s, %s);\n", num(frame.OffsetX), num(frame.OffsetY))

	for _, el := range doc.Elements {
		emitElement(&buf, el)
	}
	return buf.String()
}

// HostPage wraps the compiled scene in a standalone HTML document. The
// page carries the typeface as a data URL so text rendering does not
// depend on system fonts.
func HostPage(doc *scene.Document, frame render.Frame, opts ...Option) string {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<style>\n")
	fmt.Fprintf(&buf, "@font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
		fonts.FontFamily, fonts.TTFBase64())
	buf.WriteString("html, body { margin: 0; padding: 0; }\ncanvas { display: block; }\n</style>\n</head>\n<body>\n")
	fmt.Fprintf(&buf, `<canvas id="%s" width="%d" height="%d" style="width: %spx; height: %spx;"></canvas>`+"\n",
		SurfaceID, frame.PixelWidth(), frame.PixelHeight(), num(frame.Width), num(frame.Height))
	buf.WriteString("<script>\n(async function () {\n")
	fmt.Fprintf(&buf, "try { await document.fonts.load('16px \"%s\"'); } catch (e) {}\n", fonts.FontFamily)
	fmt.Fprintf(&buf, "const ctx = document.getElementById('%s').getContext('2d');\n", SurfaceID)
	buf.WriteString(Compile(doc, frame, opts...))
	fmt.Fprintf(&buf, "window.%s = true;\n", DoneFlag)
	buf.WriteString("})();\n</script>\n</body>\n</html>\n")
	return buf.String()
}

func emitElement(buf *bytes.Buffer, el scene.Element) {
	box := el.Common()

	buf.WriteString("ctx.save();\n")
	if a := box.Alpha(); a != 1 {
		fmt.Fprintf(buf, "ctx.globalAlpha = %s;\n", num(a))
	}
	fmt.Fprintf(buf, "ctx.strokeStyle = %s;\n", jsString(box.StrokeColor))
	fmt.Fprintf(buf, "ctx.lineWidth = %s;\n", num(box.StrokeWidth))
	if box.Dashed() {
		fmt.Fprintf(buf, "ctx.setLineDash([%s, %s]);\n", num(scene.DashOn), num(scene.DashGap))
	}

	switch e := el.(type) {
	case *scene.Rectangle:
		emitRectangle(buf, e)
	case *scene.Diamond:
		emitDiamond(buf, e)
	case *scene.Arrow:
		emitArrow(buf, e)
	case *scene.Text:
		emitText(buf, e)
	}

	buf.WriteString("ctx.restore();\n")
}

func emitRectangle(buf *bytes.Buffer, e *scene.Rectangle) {
	buf.WriteString("ctx.beginPath();\n")
	if e.Rounded {
		emitRoundedRectPath(buf, e.X, e.Y, e.Width, e.Height)
	} else {
		fmt.Fprintf(buf, "ctx.rect(%s, %s, %s, %s);\n", num(e.X), num(e.Y), num(e.Width), num(e.Height))
	}
	fillAndStroke(buf, e.Box)
}

// emitRoundedRectPath traces the rectangle outline with a quadratic curve
// at each corner. The radius is clamped to half the shorter side so the
// corner arcs cannot cross on small shapes.
func emitRoundedRectPath(buf *bytes.Buffer, x, y, w, h float64) {
	r := scene.CornerRadius
	if half := min(w, h) / 2; r > half {
		r = half
	}

	fmt.Fprintf(buf, "ctx.moveTo(%s, %s);\n", num(x+r), num(y))
	fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(x+w-r), num(y))
	fmt.Fprintf(buf, "ctx.quadraticCurveTo(%s, %s, %s, %s);\n", num(x+w), num(y), num(x+w), num(y+r))
	fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(x+w), num(y+h-r))
	fmt.Fprintf(buf, "ctx.quadraticCurveTo(%s, %s, %s, %s);\n", num(x+w), num(y+h), num(x+w-r), num(y+h))
	fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(x+r), num(y+h))
	fmt.Fprintf(buf, "ctx.quadraticCurveTo(%s, %s, %s, %s);\n", num(x), num(y+h), num(x), num(y+h-r))
	fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(x), num(y+r))
	fmt.Fprintf(buf, "ctx.quadraticCurveTo(%s, %s, %s, %s);\n", num(x), num(y), num(x+r), num(y))
	buf.WriteString("ctx.closePath();\n")
}

func emitDiamond(buf *bytes.Buffer, e *scene.Diamond) {
	v := e.Vertices()
	buf.WriteString("ctx.beginPath();\n")
	fmt.Fprintf(buf, "ctx.moveTo(%s, %s);\n", num(v[0][0]), num(v[0][1]))
	for _, p := range v[1:] {
		fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(p[0]), num(p[1]))
	}
	buf.WriteString("ctx.closePath();\n")
	fillAndStroke(buf, e.Box)
}

func emitArrow(buf *bytes.Buffer, e *scene.Arrow) {
	verts := e.Vertices()
	if len(verts) == 0 {
		return
	}

	buf.WriteString("ctx.beginPath();\n")
	fmt.Fprintf(buf, "ctx.moveTo(%s, %s);\n", num(verts[0][0]), num(verts[0][1]))
	for _, p := range verts[1:] {
		fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(p[0]), num(p[1]))
	}
	buf.WriteString("ctx.stroke();\n")

	if !e.Arrowhead || len(verts) < 2 {
		return
	}
	tip := verts[len(verts)-1]
	left, right, ok := render.ArrowheadWings(verts[len(verts)-2], tip)
	if !ok {
		return
	}
	buf.WriteString("ctx.beginPath();\n")
	fmt.Fprintf(buf, "ctx.moveTo(%s, %s);\n", num(left[0]), num(left[1]))
	fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(tip[0]), num(tip[1]))
	fmt.Fprintf(buf, "ctx.lineTo(%s, %s);\n", num(right[0]), num(right[1]))
	buf.WriteString("ctx.stroke();\n")
}

func emitText(buf *bytes.Buffer, e *scene.Text) {
	fmt.Fprintf(buf, "ctx.font = %s;\n", jsString(fmt.Sprintf("%spx %s", num(e.FontSize), fonts.FallbackFontFamily)))
	buf.WriteString("ctx.textBaseline = 'top';\n")
	if e.TextAlign != scene.AlignLeft {
		fmt.Fprintf(buf, "ctx.textAlign = %s;\n", jsString(e.TextAlign))
	}
	fmt.Fprintf(buf, "ctx.fillStyle = %s;\n", jsString(e.StrokeColor))

	anchor := e.AnchorX()
	spacing := e.LineSpacing()
	for i, line := range e.Lines() {
		if line == "" {
			continue
		}
		fmt.Fprintf(buf, "ctx.fillText(%s, %s, %s);\n",
			jsString(line), num(anchor), num(e.Y+float64(i)*spacing))
	}
}

func fillAndStroke(buf *bytes.Buffer, box scene.Box) {
	if box.Filled() {
		fmt.Fprintf(buf, "ctx.fillStyle = %s;\n", jsString(box.BackgroundColor))
		buf.WriteString("ctx.fill();\n")
	}
	buf.WriteString("ctx.stroke();\n")
}

// num formats a coordinate with the shortest exact decimal representation,
// keeping emitted scripts byte-stable across runs.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// jsString renders s as a single-quoted JavaScript string literal. The <
// escape keeps element text from terminating the inline script block.
func jsString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '<':
			b.WriteString(`\x3c`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
