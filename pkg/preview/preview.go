// Package preview produces bounded-width presentation images.
package preview

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DefaultWidth is the preview width used across the application.
const DefaultWidth = 500

// Resize scales img to targetWidth, deriving the height from the original
// aspect ratio rounded to the nearest integer. No cropping occurs and the
// result is deterministic for a given input.
func Resize(img image.Image, targetWidth int) image.Image {
	if targetWidth <= 0 {
		targetWidth = DefaultWidth
	}
	b := img.Bounds()
	aspect := float64(b.Dx()) / float64(b.Dy())
	targetHeight := int(math.Round(float64(targetWidth) / aspect))
	if targetHeight < 1 {
		targetHeight = 1
	}
	return imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos)
}
