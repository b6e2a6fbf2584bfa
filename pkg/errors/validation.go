package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidateSourcePath validates a drawing source path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Extension, if present, must be one of the accepted drawing extensions
func ValidateSourcePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" && !SourceExtensions[ext] {
		return New(ErrCodeInvalidFormat, "unsupported drawing extension %q", ext)
	}
	return nil
}

// SourceExtensions are the file extensions accepted as drawing sources.
var SourceExtensions = map[string]bool{
	".dxf":  true,
	".yaml": true,
	".yml":  true,
}

// ValidateLayerName validates a layer name used in an exclusion list.
// Layer names may contain spaces but no control characters.
func ValidateLayerName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidOption, "layer name cannot be empty")
	}
	if len(name) > 255 {
		return New(ErrCodeInvalidOption, "layer name too long (max 255 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidOption, "layer name contains invalid control characters")
		}
	}
	return nil
}
