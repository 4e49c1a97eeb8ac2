package constants

import "strings"

const (
	// MaxUploadBytes is the default upload cap (10 MiB).
	MaxUploadBytes = 10 * 1024 * 1024

	PDFMagic = "%PDF-"
)

// AllowedExtensions holds the file extensions accepted for review.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without dot) may be submitted.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
