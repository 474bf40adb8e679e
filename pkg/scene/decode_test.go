package scene

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/sketchport/pkg/errors"
)

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"invalid json", "{not json", errors.ErrCodeParse},
		{"empty input", "", errors.ErrCodeParse},
		{"top-level array", `[1, 2, 3]`, errors.ErrCodeSchema},
		{"missing elements", `{"version": 2}`, errors.ErrCodeSchema},
		{"null elements", `{"elements": null}`, errors.ErrCodeSchema},
		{"elements not array", `{"elements": {"type": "rectangle"}}`, errors.ErrCodeSchema},
		{"elements string", `{"elements": "nope"}`, errors.ErrCodeSchema},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDocument(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %v, want %v (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestImportDocumentMissingFile(t *testing.T) {
	_, err := ImportDocument(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeParse) {
		t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeParse)
	}
}

func TestReadDocumentDefaults(t *testing.T) {
	input := `{"elements": [{"type": "rectangle", "x": 10, "y": 20, "width": 100, "height": 50}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Count() != 1 {
		t.Fatalf("Count = %d, want 1", doc.Count())
	}

	rect, ok := doc.Elements[0].(*Rectangle)
	if !ok {
		t.Fatalf("element type = %T, want *Rectangle", doc.Elements[0])
	}

	box := rect.Common()
	if box.StrokeColor != DefaultStrokeColor {
		t.Errorf("StrokeColor = %q, want %q", box.StrokeColor, DefaultStrokeColor)
	}
	if box.BackgroundColor != Transparent {
		t.Errorf("BackgroundColor = %q, want %q", box.BackgroundColor, Transparent)
	}
	if box.StrokeWidth != DefaultStrokeWidth {
		t.Errorf("StrokeWidth = %v, want %v", box.StrokeWidth, DefaultStrokeWidth)
	}
	if box.Opacity != DefaultOpacity {
		t.Errorf("Opacity = %d, want %d", box.Opacity, DefaultOpacity)
	}
	if box.StrokeStyle != StrokeSolid {
		t.Errorf("StrokeStyle = %q, want %q", box.StrokeStyle, StrokeSolid)
	}
	if rect.Rounded {
		t.Error("Rounded = true, want false without roundness")
	}
}

func TestReadDocumentExplicitStyles(t *testing.T) {
	input := `{"elements": [{
		"type": "rectangle", "x": 0, "y": 0, "width": 10, "height": 10,
		"strokeColor": "#ff0000", "backgroundColor": "#00ff00",
		"strokeWidth": 3, "opacity": 40, "strokeStyle": "dashed",
		"roundness": {"type": 3}
	}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	rect := doc.Elements[0].(*Rectangle)
	if rect.StrokeColor != "#ff0000" {
		t.Errorf("StrokeColor = %q, want #ff0000", rect.StrokeColor)
	}
	if !rect.Filled() {
		t.Error("Filled() = false with explicit background")
	}
	if rect.StrokeWidth != 3 {
		t.Errorf("StrokeWidth = %v, want 3", rect.StrokeWidth)
	}
	if rect.Alpha() != 0.4 {
		t.Errorf("Alpha() = %v, want 0.4", rect.Alpha())
	}
	if !rect.Dashed() {
		t.Error("Dashed() = false, want true")
	}
	if !rect.Rounded {
		t.Error("Rounded = false, want true for roundness.type 3")
	}
}

func TestReadDocumentRoundnessOtherType(t *testing.T) {
	input := `{"elements": [{"type": "rectangle", "roundness": {"type": 2}}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Elements[0].(*Rectangle).Rounded {
		t.Error("Rounded = true for roundness.type 2, want false")
	}
}

func TestReadDocumentOrderPreserved(t *testing.T) {
	input := `{"elements": [
		{"type": "text", "text": "first"},
		{"type": "rectangle"},
		{"type": "diamond"},
		{"type": "arrow", "points": [[0, 0], [10, 10]]}
	]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	want := []ElementType{TypeText, TypeRectangle, TypeDiamond, TypeArrow}
	if doc.Count() != len(want) {
		t.Fatalf("Count = %d, want %d", doc.Count(), len(want))
	}
	for i, el := range doc.Elements {
		if el.Type() != want[i] {
			t.Errorf("element %d type = %v, want %v", i, el.Type(), want[i])
		}
	}
}

func TestReadDocumentSkipsMalformed(t *testing.T) {
	input := `{"elements": [
		{"type": "rectangle"},
		{"type": "hexagon"},
		{"type": "arrow"},
		{"x": 1, "y": 2},
		{"type": "diamond"}
	]}`

	var warnings []string
	doc, err := ReadDocument(strings.NewReader(input), WithWarnf(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	if doc.Count() != 2 {
		t.Errorf("Count = %d, want 2 (rectangle and diamond survive)", doc.Count())
	}
	if doc.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", doc.Skipped)
	}
	if len(warnings) != 3 {
		t.Fatalf("warnings = %d, want 3: %v", len(warnings), warnings)
	}
	if !strings.Contains(warnings[0], "hexagon") {
		t.Errorf("first warning %q should name the unknown type", warnings[0])
	}
	if !strings.Contains(warnings[1], "no points") {
		t.Errorf("second warning %q should mention missing points", warnings[1])
	}
}

func TestReadDocumentSkipsDeleted(t *testing.T) {
	input := `{"elements": [
		{"type": "rectangle", "isDeleted": true},
		{"type": "diamond"}
	]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Count() != 1 {
		t.Errorf("Count = %d, want 1", doc.Count())
	}
	// Tombstones are not malformed input.
	if doc.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", doc.Skipped)
	}
}

func TestReadDocumentArrow(t *testing.T) {
	input := `{"elements": [{
		"type": "arrow", "x": 5, "y": 10,
		"points": [[0, 0], [100, 0], [100, 50]],
		"endArrowhead": "arrow"
	}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	arrow := doc.Elements[0].(*Arrow)
	if len(arrow.Points) != 3 {
		t.Fatalf("Points = %d, want 3", len(arrow.Points))
	}
	if !arrow.Arrowhead {
		t.Error("Arrowhead = false, want true")
	}
	// Extent derived from points when the document omits width/height.
	if arrow.Width != 100 || arrow.Height != 50 {
		t.Errorf("extent = %vx%v, want 100x50", arrow.Width, arrow.Height)
	}

	verts := arrow.Vertices()
	if verts[0] != [2]float64{5, 10} {
		t.Errorf("first vertex = %v, want (5,10)", verts[0])
	}
	if verts[2] != [2]float64{105, 60} {
		t.Errorf("last vertex = %v, want (105,60)", verts[2])
	}
}

func TestReadDocumentArrowOtherHead(t *testing.T) {
	input := `{"elements": [{"type": "arrow", "points": [[0, 0], [10, 0]], "endArrowhead": "dot"}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Elements[0].(*Arrow).Arrowhead {
		t.Error("Arrowhead = true for endArrowhead dot, want false")
	}
}

func TestReadDocumentText(t *testing.T) {
	input := `{"elements": [{
		"type": "text", "x": 0, "y": 0, "width": 200,
		"text": "Line1\nLine2", "textAlign": "center"
	}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	text := doc.Elements[0].(*Text)
	if text.FontSize != DefaultFontSize {
		t.Errorf("FontSize = %v, want %v", text.FontSize, DefaultFontSize)
	}
	if text.LineHeight != DefaultLineHeight {
		t.Errorf("LineHeight = %v, want %v", text.LineHeight, DefaultLineHeight)
	}
	if got := text.LineSpacing(); got != 20 {
		t.Errorf("LineSpacing = %v, want 20", got)
	}
	if lines := text.Lines(); len(lines) != 2 || lines[0] != "Line1" || lines[1] != "Line2" {
		t.Errorf("Lines = %v, want [Line1 Line2]", lines)
	}
	if got := text.AnchorX(); got != 100 {
		t.Errorf("AnchorX = %v, want 100 for center align", got)
	}
}

func TestNormalizeClamps(t *testing.T) {
	input := `{"elements": [{
		"type": "rectangle", "width": -10, "height": -5,
		"strokeWidth": -2, "opacity": 150, "strokeStyle": "dotted"
	}]}`

	doc, err := ReadDocument(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}

	box := doc.Elements[0].Common()
	if box.Width != 0 || box.Height != 0 {
		t.Errorf("extent = %vx%v, want 0x0 after clamping", box.Width, box.Height)
	}
	if box.StrokeWidth != 0 {
		t.Errorf("StrokeWidth = %v, want 0 after clamping", box.StrokeWidth)
	}
	if box.Opacity != 100 {
		t.Errorf("Opacity = %d, want 100 after clamping", box.Opacity)
	}
	if box.StrokeStyle != StrokeSolid {
		t.Errorf("StrokeStyle = %q, want solid for unknown style", box.StrokeStyle)
	}
}
