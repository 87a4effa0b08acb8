package errors

import (
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

const (
	maxElementName = 128
	maxPathLen     = 500
	maxViewport    = 1 << 15
)

// ValidateElementName checks a name used for element lookup and in fault
// messages. Names start with an ASCII letter or underscore and continue
// with letters, digits, '_', '.' or '-'. Widgets derive part names with a
// dot, as in "hp.fill".
func ValidateElementName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "element name cannot be empty")
	}
	if len(name) > maxElementName {
		return New(ErrCodeInvalidInput, "element name longer than %d bytes", maxElementName)
	}
	for i, r := range name {
		letter := r < unicode.MaxASCII && (unicode.IsLetter(r) || r == '_')
		if letter || (i > 0 && (r >= '0' && r <= '9' || r == '.' || r == '-')) {
			continue
		}
		return New(ErrCodeInvalidInput, "invalid element name: %q", name)
	}
	return nil
}

// ValidateTraitName checks a trait slot name: lower case letters, digits
// and underscores.
func ValidateTraitName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidTrait, "trait name cannot be empty")
	}
	ok := !strings.ContainsFunc(name, func(r rune) bool {
		return !unicode.IsLower(r) && !unicode.IsDigit(r) && r != '_'
	})
	if !ok {
		return New(ErrCodeInvalidTrait, "invalid trait name: %q", name)
	}
	return nil
}

// ValidatePath checks a file reference inside a scene, such as its theme
// file. The path must be relative, slash-separated and stay below the
// directory it is resolved against.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return New(ErrCodeInvalidPath, "path cannot be empty")
	case len(path) > maxPathLen:
		return New(ErrCodeInvalidPath, "path longer than %d bytes", maxPathLen)
	case strings.ContainsFunc(path, unicode.IsControl):
		return New(ErrCodeInvalidPath, "path contains control characters")
	case strings.ContainsRune(path, '\\'):
		return New(ErrCodeInvalidPath, "path must use forward slashes")
	case strings.HasPrefix(path, "/") || !filepath.IsLocal(path):
		return New(ErrCodeInvalidPath, "path must be relative: %q", path)
	case slices.Contains(strings.Split(path, "/"), ".."):
		return New(ErrCodeInvalidPath, "path cannot contain '..': %q", path)
	}
	return nil
}

// ValidateViewport checks the size of a resolution viewport.
func ValidateViewport(width, height int) error {
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport must be positive, got %dx%d", width, height)
	}
	if width > maxViewport || height > maxViewport {
		return New(ErrCodeInvalidInput, "viewport larger than %d, got %dx%d", maxViewport, width, height)
	}
	return nil
}
