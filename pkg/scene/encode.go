package scene

import "encoding/json"

// wireElement is the serialization shape for one element. It mirrors the
// fields accepted by decode so that normalized documents round-trip.
type wireElement struct {
	Type            string      `json:"type"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	StrokeColor     string      `json:"strokeColor"`
	BackgroundColor string      `json:"backgroundColor"`
	StrokeWidth     float64     `json:"strokeWidth"`
	Opacity         int         `json:"opacity"`
	StrokeStyle     string      `json:"strokeStyle"`
	Roundness       *roundness  `json:"roundness,omitempty"`
	Points          [][]float64 `json:"points,omitempty"`
	EndArrowhead    string      `json:"endArrowhead,omitempty"`
	Text            *string     `json:"text,omitempty"`
	FontSize        float64     `json:"fontSize,omitempty"`
	LineHeight      float64     `json:"lineHeight,omitempty"`
	TextAlign       string      `json:"textAlign,omitempty"`
	VerticalAlign   string      `json:"verticalAlign,omitempty"`
}

// MarshalDocument encodes the document as indented JSON in the wire shape
// accepted by [ReadDocument]. Because elements are normalized at decode
// time, the output carries every style attribute explicitly; reading it
// back yields an identical document.
func MarshalDocument(doc *Document) ([]byte, error) {
	out := struct {
		Elements []wireElement `json:"elements"`
	}{
		Elements: make([]wireElement, 0, len(doc.Elements)),
	}
	for _, el := range doc.Elements {
		out.Elements = append(out.Elements, toWire(el))
	}
	return json.MarshalIndent(out, "", "  ")
}

// toWire flattens one typed element into its serialization shape.
func toWire(el Element) wireElement {
	box := el.Common()
	w := wireElement{
		Type:            string(el.Type()),
		X:               box.X,
		Y:               box.Y,
		Width:           box.Width,
		Height:          box.Height,
		StrokeColor:     box.StrokeColor,
		BackgroundColor: box.BackgroundColor,
		StrokeWidth:     box.StrokeWidth,
		Opacity:         box.Opacity,
		StrokeStyle:     box.StrokeStyle,
	}

	switch e := el.(type) {
	case *Rectangle:
		if e.Rounded {
			w.Roundness = &roundness{Type: roundnessRound}
		}
	case *Diamond:
		// No shape-specific fields.
	case *Arrow:
		w.Points = make([][]float64, len(e.Points))
		for i, p := range e.Points {
			w.Points[i] = []float64{p.DX, p.DY}
		}
		if e.Arrowhead {
			w.EndArrowhead = endArrowheadArrow
		}
	case *Text:
		w.Text = &e.Text
		w.FontSize = e.FontSize
		w.LineHeight = e.LineHeight
		w.TextAlign = e.TextAlign
		w.VerticalAlign = e.VerticalAlign
	}

	return w
}
