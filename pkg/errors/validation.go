package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxElementIDLength bounds element identifiers accepted from upstream sources.
const maxElementIDLength = 512

// ValidateElementID validates a node, edge or sprite identifier.
//
// The validation rules:
//   - No empty identifiers
//   - No control characters or null bytes
//   - Maximum length of 512 characters
//   - No '.' in sprite identifiers (checked by [ValidateSpriteID])
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidElementID, "element id cannot be empty")
	}

	if len(id) > maxElementIDLength {
		return New(ErrCodeInvalidElementID, "element id too long (max %d characters)", maxElementIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElementID, "element id contains invalid control characters")
		}
	}

	return nil
}

// ValidateSpriteID validates a sprite identifier. Sprite ids are embedded in
// attribute keys of the form ui.sprite.<id>.<attr>, so they cannot contain dots.
func ValidateSpriteID(id string) error {
	if err := ValidateElementID(id); err != nil {
		return err
	}
	if strings.Contains(id, ".") {
		return New(ErrCodeInvalidElementID, "sprite id cannot contain '.': %q", id)
	}
	return nil
}

// ValidateStyleSheetPath validates a stylesheet document path.
// Only TOML and YAML documents are accepted.
func ValidateStyleSheetPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidStyleSheet, "stylesheet path cannot be empty")
	}

	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidStyleSheet, "stylesheet path contains invalid characters")
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml":
		return nil
	default:
		return New(ErrCodeInvalidStyleSheet, "unsupported stylesheet format %q (want .toml, .yaml or .yml)", filepath.Ext(path))
	}
}
