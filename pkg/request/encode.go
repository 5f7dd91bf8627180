package request

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/webp"
)

// Transport raster formats for the encoded preview.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"
	FormatWebP = "webp"
)

// defaultJPEGQuality matches the quality used for previews elsewhere.
const defaultJPEGQuality = 85

// Encode re-encodes an image into the given transport format entirely in
// memory. No temporary file is created at any point.
func Encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case FormatPNG, "":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("png encode: %w", err)
		}
	case FormatJPEG, "jpg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: defaultJPEGQuality}); err != nil {
			return nil, fmt.Errorf("jpeg encode: %w", err)
		}
	case FormatWebP:
		if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
			return nil, fmt.Errorf("webp encode: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported transport format: %s", format)
	}
	return buf.Bytes(), nil
}

// MIMEType returns the MIME type for a transport format.
func MIMEType(format string) string {
	switch strings.ToLower(format) {
	case FormatJPEG, "jpg":
		return "image/jpeg"
	case FormatWebP:
		return "image/webp"
	default:
		return "image/png"
	}
}
