package scene

import (
	"math"
	"strings"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// ElementType identifies the kind of a drawable element.
type ElementType string

// Element kinds understood by the renderers.
const (
	TypeRectangle ElementType = "rectangle"
	TypeDiamond   ElementType = "diamond"
	TypeArrow     ElementType = "arrow"
	TypeText      ElementType = "text"
)

// Stroke styles.
const (
	StrokeSolid  = "solid"
	StrokeDashed = "dashed"
)

// Horizontal text alignment.
const (
	AlignLeft   = "left"
	AlignCenter = "center"
	AlignRight  = "right"
)

// Vertical text alignment.
const (
	VAlignTop = "top"
)

// Transparent is the background sentinel meaning "do not fill".
const Transparent = "transparent"

// Style defaults applied during normalization. After decode, every element
// carries explicit values; renderers never default.
const (
	DefaultStrokeColor     = "#000"
	DefaultBackgroundColor = Transparent
	DefaultStrokeWidth     = 1.0
	DefaultOpacity         = 100
	DefaultFontSize        = 16.0
	DefaultLineHeight      = 1.25
)

// CornerRadius is the corner radius used for rounded rectangles.
const CornerRadius = 8.0

// Dash geometry for dashed strokes: DashOn units drawn, DashGap units skipped.
const (
	DashOn  = 5.0
	DashGap = 5.0
)

// Arrowhead geometry: two ArrowheadLength strokes, each offset
// ArrowheadAngle from the reverse direction of the final segment.
const (
	ArrowheadLength = 10.0
	ArrowheadAngle  = math.Pi / 6
)

// =============================================================================
// Box - Shared Position and Style
// =============================================================================

// Box holds the position and style attributes common to all elements.
// Coordinates share one space across the document; X,Y is the top-left
// origin and Width/Height are non-negative (zero denotes a degenerate
// element).
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64

	StrokeColor     string
	BackgroundColor string
	StrokeWidth     float64
	Opacity         int // 0..100
	StrokeStyle     string
}

// Alpha returns the element opacity as a 0..1 alpha value.
func (b Box) Alpha() float64 { return float64(b.Opacity) / 100 }

// Filled reports whether the element has a paintable background.
func (b Box) Filled() bool { return b.BackgroundColor != Transparent }

// Dashed reports whether strokes use the dash pattern.
func (b Box) Dashed() bool { return b.StrokeStyle == StrokeDashed }

// =============================================================================
// Element - Closed Drawable Variants
// =============================================================================

// Element is one drawable primitive in a document.
//
// The implementation set is closed: Rectangle, Diamond, Arrow, and Text.
// Renderers dispatch with a type switch over exactly these four concrete
// types; a new shape kind means adding a type here and a case in each
// renderer, which the sealed method makes a deliberate, local change.
type Element interface {
	// Type returns the element kind tag used in the wire format.
	Type() ElementType
	// Common returns the shared position and style attributes.
	Common() Box

	sealed()
}

// Rectangle is an axis-aligned rectangle, optionally with rounded corners.
type Rectangle struct {
	Box
	Rounded bool // corner radius CornerRadius when set
}

func (r *Rectangle) Type() ElementType { return TypeRectangle }

// Common returns the shared position and style attributes.
func (r *Rectangle) Common() Box { return r.Box }

func (r *Rectangle) sealed() {}

// Diamond is the quadrilateral connecting the midpoints of the four edges
// of its bounding box.
type Diamond struct {
	Box
}

func (d *Diamond) Type() ElementType { return TypeDiamond }

// Common returns the shared position and style attributes.
func (d *Diamond) Common() Box { return d.Box }

func (d *Diamond) sealed() {}

// Vertices returns the diamond's corners in drawing order: top, right,
// bottom, left midpoints of the bounding box.
func (d *Diamond) Vertices() [4][2]float64 {
	cx := d.X + d.Width/2
	cy := d.Y + d.Height/2
	return [4][2]float64{
		{cx, d.Y},
		{d.X + d.Width, cy},
		{cx, d.Y + d.Height},
		{d.X, cy},
	}
}

// Point is a single polyline vertex, expressed as an offset from the
// owning element's origin.
type Point struct {
	DX float64
	DY float64
}

// Arrow is a polyline with an optional V-shaped head on its final segment.
// Points holds at least one vertex; decode rejects arrows without points.
type Arrow struct {
	Box
	Points    []Point
	Arrowhead bool // draw the head when set (needs >= 2 points to take effect)
}

func (a *Arrow) Type() ElementType { return TypeArrow }

// Common returns the shared position and style attributes.
func (a *Arrow) Common() Box { return a.Box }

func (a *Arrow) sealed() {}

// Vertices returns the absolute polyline coordinates (origin + offsets).
func (a *Arrow) Vertices() [][2]float64 {
	out := make([][2]float64, len(a.Points))
	for i, p := range a.Points {
		out[i] = [2]float64{a.X + p.DX, a.Y + p.DY}
	}
	return out
}

// Text is a block of text, one drawn line per \n-separated input line.
type Text struct {
	Box
	Text          string
	FontSize      float64
	LineHeight    float64
	TextAlign     string
	VerticalAlign string
}

func (t *Text) Type() ElementType { return TypeText }

// Common returns the shared position and style attributes.
func (t *Text) Common() Box { return t.Box }

func (t *Text) sealed() {}

// Lines returns the individual lines of the text content.
func (t *Text) Lines() []string { return strings.Split(t.Text, "\n") }

// LineSpacing returns the vertical distance between consecutive lines.
func (t *Text) LineSpacing() float64 { return t.FontSize * t.LineHeight }

// AnchorX returns the horizontal anchor coordinate for a line of text:
// the left edge, center, or right edge of the element box per TextAlign.
func (t *Text) AnchorX() float64 {
	switch t.TextAlign {
	case AlignCenter:
		return t.X + t.Width/2
	case AlignRight:
		return t.X + t.Width
	default:
		return t.X
	}
}
