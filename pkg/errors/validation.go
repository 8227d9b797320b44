package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidatePackageName rejects names that could be used for path traversal
// or injection when interpolated into registry URLs or cache keys.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 256 characters
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidPackage, "package name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid control characters")
		}
	}

	for _, pattern := range []string{"..", "//", "\x00", "\\"} {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// composerPackageNameRegex matches vendor/package names as accepted by Composer.
var composerPackageNameRegex = regexp.MustCompile(`^[a-z0-9]([_.-]?[a-z0-9]+)*/[a-z0-9](([_.]|-{1,2})?[a-z0-9]+)*$`)

// ValidateComposerPackageName validates a Composer package name
// (lowercase "vendor/package").
func ValidateComposerPackageName(name string) error {
	if err := ValidatePackageName(name); err != nil {
		return err
	}

	if !composerPackageNameRegex.MatchString(name) {
		return New(ErrCodeInvalidPackage, "invalid Composer package name: %q", name)
	}

	return nil
}

// configPathRegex matches slash-separated configuration paths such as
// "payment/free/active".
var configPathRegex = regexp.MustCompile(`^[a-z0-9_]+(/[a-z0-9_]+)+$`)

// ValidateConfigPath validates a store configuration path.
func ValidateConfigPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidConfig, "config path cannot be empty")
	}
	if !configPathRegex.MatchString(path) {
		return New(ErrCodeInvalidConfig, "invalid config path: %q", path)
	}
	return nil
}
