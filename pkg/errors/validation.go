package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// maxNameLength bounds package and file names accepted from scans and config.
const maxNameLength = 256

// ValidatePackageName checks that name is safe to hand to the installer as a
// positional argument. Names that start with "-" would be read as flags.
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPackage, "package name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidPackage, "package name too long (max %d characters)", maxNameLength)
	}
	if strings.HasPrefix(name, "-") {
		return New(ErrCodeInvalidPackage, "package name cannot start with '-': %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidPackage, "package name contains invalid characters: %q", name)
		}
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return New(ErrCodeInvalidPackage, "package name contains path characters: %q", name)
	}
	return nil
}

// ValidateFilename ensures an output file name is a plain basename that stays
// inside the bundle directory.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidFilename, "filename cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidFilename, "filename too long (max %d characters)", maxNameLength)
	}
	if name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return New(ErrCodeInvalidFilename, "filename must not contain path components: %q", name)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidFilename, "filename contains control characters: %q", name)
		}
	}
	return nil
}
