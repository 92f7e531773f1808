package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateLength checks that v is a finite, non-negative length.
// what names the value in the error message (e.g. "item width").
func ValidateLength(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidGeometry, "%s is not a finite number", what)
	}
	if v < 0 {
		return New(ErrCodeInvalidGeometry, "%s must not be negative (got %g)", what, v)
	}
	return nil
}

// ValidateFinite checks that v is a finite number. Offsets and vertical
// insets may be negative, so this is the only check they get.
func ValidateFinite(what string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidGeometry, "%s is not a finite number", what)
	}
	return nil
}

// ValidateOutputPath validates a relative output file or directory name.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}
