package scene

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/sketchport/pkg/errors"
)

// roundnessRound is the roundness.type value that selects rounded corners.
const roundnessRound = 3

// endArrowheadArrow is the endArrowhead value that selects the V-shaped head.
const endArrowheadArrow = "arrow"

// DecodeOption configures document decoding.
type DecodeOption func(*decoder)

// WithWarnf sets the callback that receives one formatted warning per
// skipped element. The default discards warnings.
func WithWarnf(f func(format string, args ...any)) DecodeOption {
	return func(d *decoder) { d.warnf = f }
}

type decoder struct {
	warnf func(format string, args ...any)
}

// envelope is the top-level wire shape. Elements stays raw so a missing
// key, a null, and a non-array value can be told apart.
type envelope struct {
	Elements json.RawMessage `json:"elements"`
}

// rawElement is the union of every field any element kind may carry on the
// wire. Pointer fields distinguish "absent" from an explicit zero.
type rawElement struct {
	Type            string      `json:"type"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	StrokeColor     string      `json:"strokeColor"`
	BackgroundColor string      `json:"backgroundColor"`
	StrokeWidth     *float64    `json:"strokeWidth"`
	Opacity         *int        `json:"opacity"`
	StrokeStyle     string      `json:"strokeStyle"`
	Roundness       *roundness  `json:"roundness"`
	Points          [][]float64 `json:"points"`
	EndArrowhead    string      `json:"endArrowhead"`
	Text            string      `json:"text"`
	FontSize        *float64    `json:"fontSize"`
	LineHeight      *float64    `json:"lineHeight"`
	TextAlign       string      `json:"textAlign"`
	VerticalAlign   string      `json:"verticalAlign"`
	IsDeleted       bool        `json:"isDeleted"`
}

type roundness struct {
	Type int `json:"type"`
}

// ReadDocument decodes a JSON diagram document from r.
//
// The input must be a JSON object with an "elements" array:
//
//	{"elements": [{"type": "rectangle", "x": 0, "y": 0, ...}, ...]}
//
// Element order is preserved. Every element is normalized during decode:
// the style defaults (stroke color, background, stroke width, opacity,
// stroke style, font metrics) are applied once here so downstream
// consumers never default.
//
// Entries that are tombstoned ("isDeleted": true) are dropped silently.
// Entries with an unknown type or a malformed required field (an arrow
// without points) are skipped with a warning and counted in
// Document.Skipped; a bad element never aborts the read.
//
// ReadDocument returns:
//   - a PARSE_ERROR if r cannot be read or does not contain valid JSON
//   - a SCHEMA_ERROR if the JSON is not an object, or the "elements" key
//     is absent, null, or not an array
//
// ReadDocument does not close r.
func ReadDocument(r io.Reader, opts ...DecodeOption) (*Document, error) {
	d := decoder{warnf: func(string, ...any) {}}
	for _, opt := range opts {
		opt(&d)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read document")
	}
	if !json.Valid(data) {
		return nil, errors.New(errors.ErrCodeParse, "document is not valid JSON")
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchema, err, "document is not a JSON object")
	}
	if len(env.Elements) == 0 || string(env.Elements) == "null" {
		return nil, errors.New(errors.ErrCodeSchema, "document has no elements array")
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(env.Elements, &raws); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSchema, err, "elements is not an array")
	}

	doc := &Document{Elements: make([]Element, 0, len(raws))}
	for i, raw := range raws {
		var re rawElement
		if err := json.Unmarshal(raw, &re); err != nil {
			d.warnf("skipping element %d: %v", i, err)
			doc.Skipped++
			continue
		}
		if re.IsDeleted {
			continue
		}
		el, err := buildElement(&re)
		if err != nil {
			d.warnf("skipping element %d: %v", i, err)
			doc.Skipped++
			continue
		}
		doc.Elements = append(doc.Elements, el)
	}

	return doc, nil
}

// ImportDocument reads the diagram document at path.
//
// ImportDocument opens the file, decodes it with [ReadDocument], and closes
// the file. A missing or unreadable file is a PARSE_ERROR wrapping the
// underlying cause with the path for context.
func ImportDocument(path string, opts ...DecodeOption) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "open %s", path)
	}
	defer f.Close()
	return ReadDocument(f, opts...)
}

// buildElement converts one wire element into its typed variant. All
// normalization happens here; the returned element carries explicit values
// for every attribute.
func buildElement(re *rawElement) (Element, error) {
	box := normalizeBox(re)

	switch ElementType(re.Type) {
	case TypeRectangle:
		return &Rectangle{
			Box:     box,
			Rounded: re.Roundness != nil && re.Roundness.Type == roundnessRound,
		}, nil

	case TypeDiamond:
		return &Diamond{Box: box}, nil

	case TypeArrow:
		points, err := normalizePoints(re.Points)
		if err != nil {
			return nil, fmt.Errorf("arrow: %w", err)
		}
		a := &Arrow{
			Box:       box,
			Points:    points,
			Arrowhead: re.EndArrowhead == endArrowheadArrow,
		}
		normalizeArrowExtent(a)
		return a, nil

	case TypeText:
		return &Text{
			Box:           box,
			Text:          re.Text,
			FontSize:      valueOr(re.FontSize, DefaultFontSize),
			LineHeight:    valueOr(re.LineHeight, DefaultLineHeight),
			TextAlign:     normalizeAlign(re.TextAlign),
			VerticalAlign: normalizeVAlign(re.VerticalAlign),
		}, nil

	case "":
		return nil, fmt.Errorf("missing element type")

	default:
		return nil, fmt.Errorf("unknown element type %q", re.Type)
	}
}
