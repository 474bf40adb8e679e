// Package scene defines the diagram document model and its JSON codec.
//
// # Overview
//
// A scene is an ordered sequence of drawable elements read from a diagram
// document. The package covers the first two stages of an export:
//
//   - Decoding: [ReadDocument] / [ImportDocument] parse the JSON wire
//     format into typed elements, applying every style default once so
//     renderers consume fully explicit values.
//   - Bounds: [ComputeBounds] derives the minimal rectangle covering all
//     elements; [Bounds] adds the fixed canvas padding and the coordinate
//     offsets the renderers apply.
//
// # Element Model
//
// [Element] is a closed sum over four concrete kinds:
//
//   - [Rectangle]: axis-aligned, optionally rounded (corner radius 8)
//   - [Diamond]: quadrilateral over the bounding box edge midpoints
//   - [Arrow]: polyline of origin-relative points, optional V-shaped head
//   - [Text]: \n-separated lines with font size, line height and alignment
//
// Consumers dispatch with a type switch over exactly these types. The
// sealed interface method keeps the set closed: adding a shape kind is a
// deliberate change here plus one case per renderer.
//
// # Wire Format
//
//	{
//	  "elements": [
//	    {"type": "rectangle", "x": 0, "y": 0, "width": 100, "height": 50},
//	    {"type": "arrow", "x": 10, "y": 25, "points": [[0, 0], [90, 0]],
//	     "endArrowhead": "arrow"},
//	    {"type": "text", "x": 20, "y": 60, "text": "hello\nworld"}
//	  ]
//	}
//
// Optional style fields on every element: strokeColor (default "#000"),
// backgroundColor (default "transparent"), strokeWidth (default 1),
// opacity (0..100, default 100), strokeStyle ("solid" default, "dashed").
// Text adds fontSize (default 16), lineHeight (default 1.25), textAlign
// ("left" default, "center", "right") and verticalAlign.
//
// # Degraded Input
//
// Entries with "isDeleted": true are editor tombstones and are dropped
// silently. Entries with an unknown type or malformed required fields are
// skipped with a warning (see [WithWarnf]) and counted in
// [Document].Skipped; a single bad element never aborts the read.
//
// # Round Trip
//
// [MarshalDocument] writes the normalized document back in the same wire
// shape with all defaults made explicit, so marshal → read yields an
// identical document. The pipeline's "json" output format uses this.
package scene
