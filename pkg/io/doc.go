// Package io provides file output for rendered artifacts and documents.
//
// # Overview
//
// Everything the exporter persists goes through this package:
//
//   - [WriteArtifact]: Atomic byte output for PNG and SVG artifacts
//   - [WriteJSON] / [ExportJSON]: Normalized document export
//
// # Atomic Writes
//
// A failed export must not leave a truncated PNG where a good file was
// expected. [WriteArtifact] therefore writes into a hidden temporary
// file in the destination directory and renames it into place only
// after the write and close both succeed. Rename within one directory
// is atomic on POSIX filesystems, so readers observe either the old
// content or the new content, never a partial file.
//
// # Document Export
//
// [ExportJSON] persists the parsed, normalized document rather than the
// raw input. Every style attribute is explicit in the output, so the
// file re-reads into an identical document with [scene.ReadDocument]:
// import, normalize, export, and re-import round-trip exactly.
//
// [scene.ReadDocument]: github.com/matzehuels/sketchport/pkg/scene.ReadDocument
package io
