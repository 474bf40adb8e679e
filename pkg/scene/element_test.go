package scene

import "testing"

func TestDiamondVertices(t *testing.T) {
	d := &Diamond{Box: Box{X: 10, Y: 20, Width: 100, Height: 60}}

	want := [4][2]float64{
		{60, 20},  // top
		{110, 50}, // right
		{60, 80},  // bottom
		{10, 50},  // left
	}
	if got := d.Vertices(); got != want {
		t.Errorf("Vertices() = %v, want %v", got, want)
	}
}

func TestArrowVertices(t *testing.T) {
	a := &Arrow{
		Box:    Box{X: 100, Y: 200},
		Points: []Point{{0, 0}, {50, 0}, {50, -30}},
	}

	want := [][2]float64{{100, 200}, {150, 200}, {150, 170}}
	got := a.Vertices()
	if len(got) != len(want) {
		t.Fatalf("Vertices() returned %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestTextAnchorX(t *testing.T) {
	tests := []struct {
		align string
		want  float64
	}{
		{AlignLeft, 10},
		{AlignCenter, 110},
		{AlignRight, 210},
	}

	for _, tt := range tests {
		t.Run(tt.align, func(t *testing.T) {
			text := &Text{
				Box:       Box{X: 10, Y: 0, Width: 200},
				TextAlign: tt.align,
			}
			if got := text.AnchorX(); got != tt.want {
				t.Errorf("AnchorX() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTextLines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"single line", "hello", []string{"hello"}},
		{"two lines", "a\nb", []string{"a", "b"}},
		{"trailing newline", "a\n", []string{"a", ""}},
		{"empty", "", []string{""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := &Text{Text: tt.text}
			got := text.Lines()
			if len(got) != len(tt.want) {
				t.Fatalf("Lines() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("line %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBoxHelpers(t *testing.T) {
	box := Box{
		StrokeStyle:     StrokeDashed,
		BackgroundColor: Transparent,
		Opacity:         75,
	}

	if !box.Dashed() {
		t.Error("Dashed() = false, want true")
	}
	if box.Filled() {
		t.Error("Filled() = true for transparent background, want false")
	}
	if got := box.Alpha(); got != 0.75 {
		t.Errorf("Alpha() = %v, want 0.75", got)
	}
}

func TestElementTypes(t *testing.T) {
	tests := []struct {
		el   Element
		want ElementType
	}{
		{&Rectangle{}, TypeRectangle},
		{&Diamond{}, TypeDiamond},
		{&Arrow{}, TypeArrow},
		{&Text{}, TypeText},
	}

	for _, tt := range tests {
		if got := tt.el.Type(); got != tt.want {
			t.Errorf("%T.Type() = %v, want %v", tt.el, got, tt.want)
		}
	}
}
