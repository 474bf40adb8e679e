package errors

import (
	"strings"
	"unicode"
)

// ValidateSourceRef validates a document source reference for safety.
// A source ref is a local file path, "-" for stdin, or an http(s) URL.
//
// The validation rules are intentionally conservative:
//   - No empty refs
//   - No control characters or null bytes
//   - Maximum length of 2048 characters
//
// Scheme-specific validation (URL shape, file existence) is done by the
// source resolver; this only rejects refs that are unsafe to log or pass on.
func ValidateSourceRef(ref string) error {
	if ref == "" {
		return New(ErrCodeInvalidInput, "document source cannot be empty")
	}

	if len(ref) > 2048 {
		return New(ErrCodeInvalidInput, "document source too long (max 2048 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document source contains invalid control characters")
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}

// ValidateOutputPath validates an artifact output path for safety.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//
// Absolute and relative paths are both allowed; the caller chooses where
// artifacts land. Writability is checked by the writer itself.
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "output path too long (max %d characters)", maxPathLength)
	}

	// Check for null bytes and control characters
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output path contains invalid characters")
		}
	}

	return nil
}
