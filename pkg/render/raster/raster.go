// Package raster draws scenes with a pure-Go 2D engine.
//
// The output matches the browser backend's logical geometry exactly; only
// antialiasing and glyph rasterization details differ. It exists so PNG
// export works on hosts without a Chrome installation.
package raster

import (
	"bytes"
	"image/color"

	"github.com/fogleman/gg"

	"github.com/matzehuels/sketchport/pkg/errors"
	"github.com/matzehuels/sketchport/pkg/fonts"
	"github.com/matzehuels/sketchport/pkg/render"
	"github.com/matzehuels/sketchport/pkg/scene"
)

// Option configures rasterization.
type Option func(*renderer)

type renderer struct {
	background string
}

// WithBackground sets the color the surface is cleared to before drawing.
// Pass [scene.Transparent] for a PNG with an alpha channel.
func WithBackground(c string) Option {
	return func(r *renderer) { r.background = c }
}

// RenderPNG rasterizes the scene at the frame's pixel size and returns the
// encoded PNG. Elements draw in document order inside their own push/pop
// state scope, so style settings never leak between elements.
func RenderPNG(doc *scene.Document, frame render.Frame, opts ...Option) ([]byte, error) {
	r := renderer{background: "#ffffff"}
	for _, opt := range opts {
		opt(&r)
	}

	dc := gg.NewContext(frame.PixelWidth(), frame.PixelHeight())
	if r.background != scene.Transparent {
		if c, ok := render.ParseColor(r.background); ok {
			dc.SetColor(c)
			dc.Clear()
		}
	}
	dc.Scale(frame.Scale, frame.Scale)
	dc.Translate(frame.OffsetX, frame.OffsetY)

	for _, el := range doc.Elements {
		if err := drawElement(dc, el); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

func drawElement(dc *gg.Context, el scene.Element) error {
	box := el.Common()

	dc.Push()
	defer dc.Pop()

	dc.SetLineWidth(box.StrokeWidth)
	if box.Dashed() {
		dc.SetDash(scene.DashOn, scene.DashGap)
	}

	switch e := el.(type) {
	case *scene.Rectangle:
		drawRectangle(dc, e)
	case *scene.Diamond:
		drawDiamond(dc, e)
	case *scene.Arrow:
		drawArrow(dc, e)
	case *scene.Text:
		return drawText(dc, e)
	}
	return nil
}

func drawRectangle(dc *gg.Context, e *scene.Rectangle) {
	if e.Rounded {
		roundedRectPath(dc, e.X, e.Y, e.Width, e.Height)
	} else {
		dc.DrawRectangle(e.X, e.Y, e.Width, e.Height)
	}
	fillAndStroke(dc, e.Box)
}

// roundedRectPath traces the outline with a quadratic curve at each
// corner, mirroring the path the canvas backend emits. The radius is
// clamped to half the shorter side so corner arcs cannot cross.
func roundedRectPath(dc *gg.Context, x, y, w, h float64) {
	r := scene.CornerRadius
	if half := min(w, h) / 2; r > half {
		r = half
	}

	dc.MoveTo(x+r, y)
	dc.LineTo(x+w-r, y)
	dc.QuadraticTo(x+w, y, x+w, y+r)
	dc.LineTo(x+w, y+h-r)
	dc.QuadraticTo(x+w, y+h, x+w-r, y+h)
	dc.LineTo(x+r, y+h)
	dc.QuadraticTo(x, y+h, x, y+h-r)
	dc.LineTo(x, y+r)
	dc.QuadraticTo(x, y, x+r, y)
	dc.ClosePath()
}

func drawDiamond(dc *gg.Context, e *scene.Diamond) {
	v := e.Vertices()
	dc.MoveTo(v[0][0], v[0][1])
	for _, p := range v[1:] {
		dc.LineTo(p[0], p[1])
	}
	dc.ClosePath()
	fillAndStroke(dc, e.Box)
}

func drawArrow(dc *gg.Context, e *scene.Arrow) {
	verts := e.Vertices()
	if len(verts) == 0 {
		return
	}

	dc.MoveTo(verts[0][0], verts[0][1])
	for _, p := range verts[1:] {
		dc.LineTo(p[0], p[1])
	}
	setStrokeColor(dc, e.Box)
	dc.Stroke()

	if !e.Arrowhead || len(verts) < 2 {
		return
	}
	tip := verts[len(verts)-1]
	left, right, ok := render.ArrowheadWings(verts[len(verts)-2], tip)
	if !ok {
		return
	}
	dc.MoveTo(left[0], left[1])
	dc.LineTo(tip[0], tip[1])
	dc.LineTo(right[0], right[1])
	dc.Stroke()
}

func drawText(dc *gg.Context, e *scene.Text) error {
	face, err := fonts.Face(e.FontSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load font face")
	}
	dc.SetFontFace(face)
	setStrokeColor(dc, e.Box)

	// The canvas backend draws with textBaseline "top"; shifting by the
	// face ascent reproduces that from gg's baseline-anchored API.
	ascent := float64(face.Metrics().Ascent) / 64

	var ax float64
	switch e.TextAlign {
	case scene.AlignCenter:
		ax = 0.5
	case scene.AlignRight:
		ax = 1
	}

	anchor := e.AnchorX()
	spacing := e.LineSpacing()
	for i, line := range e.Lines() {
		if line == "" {
			continue
		}
		dc.DrawStringAnchored(line, anchor, e.Y+float64(i)*spacing+ascent, ax, 0)
	}
	return nil
}

func fillAndStroke(dc *gg.Context, box scene.Box) {
	if box.Filled() {
		if c, ok := render.ParseColor(box.BackgroundColor); ok {
			dc.SetColor(applyAlpha(c, box.Alpha()))
			dc.FillPreserve()
		}
	}
	setStrokeColor(dc, box)
	dc.Stroke()
}

// setStrokeColor resolves the stroke color with the element's opacity
// folded into the alpha channel. Unparseable colors fall back to black,
// which keeps degraded documents visible instead of invisible.
func setStrokeColor(dc *gg.Context, box scene.Box) {
	c, ok := render.ParseColor(box.StrokeColor)
	if !ok {
		c = color.RGBA{A: 255}
	}
	dc.SetColor(applyAlpha(c, box.Alpha()))
}

func applyAlpha(c color.RGBA, alpha float64) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(float64(c.A)*alpha + 0.5)}
}
