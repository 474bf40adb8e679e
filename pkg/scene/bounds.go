package scene

import (
	"math"

	"github.com/matzehuels/sketchport/pkg/errors"
)

// Padding is the margin added on every side of the computed bounds when
// sizing the output canvas.
const Padding = 50.0

// Bounds is the minimal rectangle enclosing all elements of a document.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// CanvasWidth returns the logical canvas width: the bounds width plus
// padding on both sides.
func (b Bounds) CanvasWidth() float64 { return b.Width() + 2*Padding }

// CanvasHeight returns the logical canvas height: the bounds height plus
// padding on both sides.
func (b Bounds) CanvasHeight() float64 { return b.Height() + 2*Padding }

// OffsetX returns the translation applied to element X coordinates so they
// land inside the padded canvas.
func (b Bounds) OffsetX() float64 { return Padding - b.MinX }

// OffsetY returns the translation applied to element Y coordinates so they
// land inside the padded canvas.
func (b Bounds) OffsetY() float64 { return Padding - b.MinY }

// Degenerate returns the zero-extent bounds used when an empty document is
// explicitly allowed; the canvas collapses to the padding-only square.
func Degenerate() Bounds { return Bounds{} }

// ComputeBounds returns the minimal box covering every element: the min
// over element origins and the max over origin plus extent. Widths and
// heights are already normalized to non-negative values by decode.
//
// An empty element sequence has no defined bounds. Rather than let the
// infinity seeds leak into canvas dimensions, ComputeBounds fails with an
// EMPTY_DOCUMENT error; callers that opt into empty documents substitute
// [Degenerate] instead.
func ComputeBounds(elements []Element) (Bounds, error) {
	if len(elements) == 0 {
		return Bounds{}, errors.New(errors.ErrCodeEmptyDocument, "document has no drawable elements")
	}

	b := Bounds{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
		MaxY: math.Inf(-1),
	}
	for _, el := range elements {
		box := el.Common()
		b.MinX = math.Min(b.MinX, box.X)
		b.MinY = math.Min(b.MinY, box.Y)
		b.MaxX = math.Max(b.MaxX, box.X+box.Width)
		b.MaxY = math.Max(b.MaxY, box.Y+box.Height)
	}
	return b, nil
}
