package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// MaxStructNameLength is the longest struct name accepted by ValidateStructName.
// The stream format itself allows up to 32 characters in strict mode; most
// tools accept far longer names, so the limit here only guards against junk.
const MaxStructNameLength = 512

// ValidateStructName validates a cell or struct name taken from user input.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or null bytes
//   - No whitespace
//   - Maximum length of MaxStructNameLength characters
func ValidateStructName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "struct name cannot be empty")
	}

	if len(name) > MaxStructNameLength {
		return New(ErrCodeInvalidInput, "struct name too long (max %d characters)", MaxStructNameLength).For(name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "struct name contains invalid control characters").For(name)
		}
		if unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "struct name %q contains whitespace", name).For(name)
		}
	}

	return nil
}

// CompilePatterns compiles reference-name filter patterns.
// An empty list yields an empty slice, which callers treat as "match everything".
func CompilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, Wrap(ErrCodeInvalidPattern, err, "invalid pattern %q", p).For(p)
		}
		out = append(out, re)
	}
	return out, nil
}

// ValidatePatterns reports whether every pattern compiles.
func ValidatePatterns(patterns []string) error {
	_, err := CompilePatterns(patterns)
	return err
}

// ValidateOutputPath validates a file path that a command is about to write.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
//   - Must not name a directory (trailing separator)
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "output path cannot be empty")
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

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, "\\") {
		return New(ErrCodeInvalidPath, "output path %q names a directory", path).For(path)
	}

	return nil
}
