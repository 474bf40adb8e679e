package scene

// Document is a parsed diagram document: an ordered sequence of drawable
// elements. The order is the rendering order (later elements draw on top
// of earlier ones) and is preserved exactly as read; nothing reorders by
// type or any z-index field.
//
// Documents are read once at export start and never mutated afterwards.
type Document struct {
	// Elements in document order. Every element is fully normalized:
	// all style attributes carry explicit values.
	Elements []Element

	// Skipped counts entries dropped during decode because their type was
	// unknown or a required field was malformed. A non-zero value means
	// the rendered output is a degraded view of the input.
	Skipped int
}

// Empty reports whether the document has no drawable elements.
func (d *Document) Empty() bool { return len(d.Elements) == 0 }

// Count returns the number of drawable elements.
func (d *Document) Count() int { return len(d.Elements) }
