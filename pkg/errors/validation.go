package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

// ValidateOutputRoot validates the documentation output root directory.
// The output root must be an absolute path so generated relative links
// cannot silently depend on the process working directory.
func ValidateOutputRoot(dir string) error {
	if dir == "" {
		return New(ErrCodeInvalidPath, "output directory cannot be empty")
	}
	if !filepath.IsAbs(dir) {
		return New(ErrCodeInvalidPath, "output directory must be an absolute path: %q", dir)
	}
	if strings.Contains(dir, "\x00") {
		return New(ErrCodeInvalidPath, "output directory contains invalid characters")
	}
	return nil
}

// symbolNameRegex matches valid dotted symbol paths (e.g. "pkg.mod.Class").
var symbolNameRegex = regexp.MustCompile(`^\*{0,2}[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidateSymbolName validates a dotted symbol path for safety and correctness.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 512 characters
func ValidateSymbolName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "symbol name cannot be empty")
	}

	if len(name) > 512 {
		return New(ErrCodeInvalidInput, "symbol name too long (max 512 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "symbol name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "symbol name cannot contain path separators")
	}

	if !symbolNameRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid symbol name: %q", name)
	}

	return nil
}

// ValidateSnapshotPath validates an API snapshot file path.
// It ensures the path is non-empty and points at a JSON document.
func ValidateSnapshotPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidSnapshot, "snapshot path cannot be empty")
	}
	if strings.Contains(path, "\x00") {
		return New(ErrCodeInvalidSnapshot, "snapshot path contains invalid characters")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".json") {
		return New(ErrCodeInvalidSnapshot, "snapshot must be a .json file: %q", path)
	}
	return nil
}

// ValidateURLPrefix validates a source-link URL prefix.
// It ensures the prefix has a safe scheme (http or https).
func ValidateURLPrefix(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL prefix cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL prefix must use http or https scheme")
	}

	return nil
}
