package io

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/sketchport/pkg/scene"
)

// WriteArtifact writes data to path atomically. The bytes land in a
// temporary file in the destination directory first and are renamed into
// place only after a successful write and close, so a failed export never
// leaves a partial file behind.
func WriteArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

// WriteJSON encodes the normalized document as indented JSON and writes
// it to w. The output can be re-read with [scene.ReadDocument] for
// round-trip processing.
func WriteJSON(doc *scene.Document, w io.Writer) error {
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ExportJSON writes a normalized document to a JSON file at path.
// This is the atomic, file-based counterpart of [WriteJSON].
func ExportJSON(doc *scene.Document, path string) error {
	data, err := scene.MarshalDocument(doc)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return WriteArtifact(path, append(data, '\n'))
}
