package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName validates an installable package name for safety.
// It rejects names that could be used for path traversal or injection.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - No null bytes
//   - Maximum length of 256 characters
//
// Index-specific naming rules are left to the manifest layer.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "package name too long (max 256 characters)")
	}

	// Check for control characters and null bytes
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "package name contains invalid control characters")
		}
	}

	// Check for path traversal patterns
	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
		"/",    // Separator
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidInput, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// moduleSegmentRegex matches one dotted segment of a module identifier:
// letters, digits, and underscores, not starting with a digit. A leading
// underscore is allowed; it marks the segment private.
var moduleSegmentRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateModule validates a module identifier or a fully qualified dotted
// child path ("vision", "vision.models.extras").
func ValidateModule(module string) error {
	if module == "" {
		return New(ErrCodeInvalidModule, "module identifier cannot be empty")
	}
	if len(module) > 256 {
		return New(ErrCodeInvalidModule, "module identifier too long (max 256 characters)")
	}
	for _, seg := range strings.Split(module, ".") {
		if !moduleSegmentRegex.MatchString(seg) {
			return New(ErrCodeInvalidModule, "invalid module identifier segment: %q", seg)
		}
	}
	return nil
}

// ValidateBundleName validates a stored bundle name. Bundle names become
// file names and cache key components, so path separators and traversal
// sequences are rejected outright.
func ValidateBundleName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidBundle, "bundle name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidBundle, "bundle name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBundle, "bundle name contains invalid control characters")
		}
	}
	if strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return New(ErrCodeInvalidBundle, "bundle name cannot contain path components")
	}
	return nil
}

// ValidateManifestFilename validates a manifest filename for safety.
// It ensures the filename is a simple basename without path components.
func ValidateManifestFilename(filename string) error {
	if filename == "" {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be empty")
	}

	// Must be a simple filename, not a path
	if strings.ContainsAny(filename, "/\\") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot contain path separators")
	}

	// No hidden files (starting with .)
	if strings.HasPrefix(filename, ".") {
		return New(ErrCodeInvalidManifest, "manifest filename cannot be a hidden file")
	}

	return nil
}
