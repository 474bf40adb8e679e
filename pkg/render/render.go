package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/sketchport/pkg/scene"
)

// Frame describes the output surface every backend draws into: the logical
// canvas size derived from the scene bounds, the translation that moves
// document coordinates into canvas space, and the device-pixel scale.
type Frame struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Scale   float64 `json:"scale"`
}

// NewFrame derives the surface geometry for a set of bounds at the given
// device-pixel scale.
func NewFrame(b scene.Bounds, scale float64) Frame {
	return Frame{
		Width:   b.CanvasWidth(),
		Height:  b.CanvasHeight(),
		OffsetX: b.OffsetX(),
		OffsetY: b.OffsetY(),
		Scale:   scale,
	}
}

// PixelWidth returns the physical width of the rendered image.
func (f Frame) PixelWidth() int { return int(math.Round(f.Width * f.Scale)) }

// PixelHeight returns the physical height of the rendered image.
func (f Frame) PixelHeight() int { return int(math.Round(f.Height * f.Scale)) }

// ArrowheadWings computes the two wing endpoints of a V-shaped arrowhead at
// the tip of the segment from→to. Each wing is a stroke of length
// [scene.ArrowheadLength] rotated ±[scene.ArrowheadAngle] off the reversed
// segment direction. Returns ok=false for a zero-length segment, where the
// direction is undefined and the arrowhead must be skipped.
func ArrowheadWings(from, to [2]float64) (left, right [2]float64, ok bool) {
	dx := from[0] - to[0]
	dy := from[1] - to[1]
	if dx == 0 && dy == 0 {
		return left, right, false
	}

	back := math.Atan2(dy, dx)
	left = [2]float64{
		to[0] + scene.ArrowheadLength*math.Cos(back+scene.ArrowheadAngle),
		to[1] + scene.ArrowheadLength*math.Sin(back+scene.ArrowheadAngle),
	}
	right = [2]float64{
		to[0] + scene.ArrowheadLength*math.Cos(back-scene.ArrowheadAngle),
		to[1] + scene.ArrowheadLength*math.Sin(back-scene.ArrowheadAngle),
	}
	return left, right, true
}

// ParseColor parses a CSS hex color (#rgb, #rrggbb or #rrggbbaa) into an
// RGBA value. Returns ok=false for "transparent" and anything unparseable;
// callers decide whether that means skip-the-fill or fall back to black.
func ParseColor(s string) (color.RGBA, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == scene.Transparent {
		return color.RGBA{}, false
	}
	if !strings.HasPrefix(s, "#") {
		return color.RGBA{}, false
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		r, okR := nibble(hex[0])
		g, okG := nibble(hex[1])
		b, okB := nibble(hex[2])
		if !okR || !okG || !okB {
			return color.RGBA{}, false
		}
		return color.RGBA{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6, 8:
		v, err := strconv.ParseUint(hex, 16, 64)
		if err != nil {
			return color.RGBA{}, false
		}
		if len(hex) == 6 {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
		}
		return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
	default:
		return color.RGBA{}, false
	}
}

func nibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}
