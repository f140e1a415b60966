package errors

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
)

// familyIDRegex matches family identifiers. They end up in URLs, cache keys
// and table keys, so the alphabet is kept narrow.
var familyIDRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// MaxFamilyIDLength is the longest accepted family id.
const MaxFamilyIDLength = 128

// ValidateFamilyID validates a family identifier.
//
// The validation rules are:
//   - No empty ids
//   - Maximum length of 128 characters
//   - Letters, digits, dot, dash and underscore only, starting with a letter or digit
//   - No path traversal sequences (..)
func ValidateFamilyID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidFamilyID, "family id cannot be empty")
	}
	if len(id) > MaxFamilyIDLength {
		return New(ErrCodeInvalidFamilyID, "family id too long (max %d characters)", MaxFamilyIDLength)
	}
	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidFamilyID, "family id cannot contain path traversal sequences (..)")
	}
	if !familyIDRegex.MatchString(id) {
		return New(ErrCodeInvalidFamilyID, "invalid family id: %q", id)
	}
	return nil
}

// ValidateMemberID validates a member identifier. Member ids are opaque, so
// only emptiness, length and control characters are checked.
func ValidateMemberID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "member id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidInput, "member id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "member id contains invalid control characters")
		}
	}
	return nil
}

// ValidateViewerID validates the member id a request acts on behalf of.
// An empty viewer is allowed and means unscoped access.
func ValidateViewerID(id string) error {
	if id == "" {
		return nil
	}
	return ValidateMemberID(id)
}

// ValidateSnapshotPath validates a local snapshot path. Absolute paths are
// allowed; the checks only reject values that cannot be a sane file name.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateSnapshotPath(path string) error {
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
	return nil
}

// ValidateFormat checks that format is one of allowed, ignoring case.
func ValidateFormat(format string, allowed ...string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !slices.Contains(allowed, strings.ToLower(format)) {
		return New(ErrCodeInvalidFormat, "unsupported format %q (want one of %s)", format, strings.Join(allowed, ", "))
	}
	return nil
}

// ValidateURL validates a URL string against the given schemes. With no
// schemes, http and https are accepted.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	if len(schemes) == 0 {
		schemes = []string{"http", "https"}
	}

	// Simple scheme validation without full URL parsing
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
