package utils

import (
	"path/filepath"
	"strings"
)

// FileExtension returns the lower-case file extension without the dot.
func FileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsDicomFile reports whether the filename carries a DICOM extension.
func IsDicomFile(filename string) bool {
	switch FileExtension(filename) {
	case "dcm", "dicom":
		return true
	}
	return false
}

// IsRasterFile reports whether the filename carries a supported raster
// extension. Only JPEG and PNG are accepted as conventional uploads.
func IsRasterFile(filename string) bool {
	switch FileExtension(filename) {
	case "jpg", "jpeg", "png":
		return true
	}
	return false
}
