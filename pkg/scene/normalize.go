package scene

import "fmt"

// normalizeBox applies the shared style defaults to the common attributes.
// Negative extents are clamped to zero; the bounds accumulator and the
// renderers assume non-negative width and height.
func normalizeBox(re *rawElement) Box {
	box := Box{
		X:               re.X,
		Y:               re.Y,
		Width:           max(re.Width, 0),
		Height:          max(re.Height, 0),
		StrokeColor:     re.StrokeColor,
		BackgroundColor: re.BackgroundColor,
		StrokeWidth:     max(valueOr(re.StrokeWidth, DefaultStrokeWidth), 0),
		Opacity:         clampOpacity(valueOr(re.Opacity, DefaultOpacity)),
		StrokeStyle:     re.StrokeStyle,
	}

	if box.StrokeColor == "" {
		box.StrokeColor = DefaultStrokeColor
	}
	if box.BackgroundColor == "" {
		box.BackgroundColor = DefaultBackgroundColor
	}
	// Anything other than "dashed" renders solid, including unknown styles.
	if box.StrokeStyle != StrokeDashed {
		box.StrokeStyle = StrokeSolid
	}

	return box
}

// normalizePoints converts wire point pairs into typed offsets.
func normalizePoints(raw [][]float64) ([]Point, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("no points")
	}
	points := make([]Point, len(raw))
	for i, p := range raw {
		if len(p) < 2 {
			return nil, fmt.Errorf("point %d has %d coordinates, need 2", i, len(p))
		}
		points[i] = Point{DX: p[0], DY: p[1]}
	}
	return points, nil
}

// normalizeArrowExtent derives Width/Height from the point extents when the
// document omitted them, so the bounds computation sees the full polyline.
// Extents declared by the document are left untouched.
func normalizeArrowExtent(a *Arrow) {
	if a.Width > 0 || a.Height > 0 {
		return
	}
	var maxDX, maxDY float64
	for _, p := range a.Points {
		maxDX = max(maxDX, p.DX)
		maxDY = max(maxDY, p.DY)
	}
	a.Width = maxDX
	a.Height = maxDY
}

// normalizeAlign maps the horizontal alignment to one of the three known
// anchors; unknown values fall back to left.
func normalizeAlign(s string) string {
	switch s {
	case AlignCenter, AlignRight:
		return s
	default:
		return AlignLeft
	}
}

// normalizeVAlign preserves the declared vertical alignment for round-trip
// fidelity. Rendering is top-anchored for every value.
func normalizeVAlign(s string) string {
	if s == "" {
		return VAlignTop
	}
	return s
}

// clampOpacity bounds an opacity value to the 0..100 range.
func clampOpacity(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// valueOr returns *p when present, otherwise def.
func valueOr[T any](p *T, def T) T {
	if p != nil {
		return *p
	}
	return def
}
