package dicomproc

import (
	"image"
	"image/color"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// ToDisplayImage converts the dataset's pixel matrix into an 8-bit RGB image.
//
// Values are rescaled against the matrix maximum so the full [0,255] range is
// used and relative ordering of input values is preserved. A constant all-zero
// matrix produces an all-black image of the same shape instead of dividing by
// zero. Single-sample (grayscale) pixels are replicated across the three
// channels so downstream handling is uniform.
//
// Multi-frame studies use the first frame for the preview.
func ToDisplayImage(ds dicom.Dataset) (*image.NRGBA, error) {
	el, err := ds.FindElementByTag(tag.PixelData)
	if err != nil {
		return nil, &ProcessingError{Message: "dataset has no pixel data", Cause: err}
	}

	info, ok := el.Value.GetValue().(dicom.PixelDataInfo)
	if !ok {
		return nil, &ProcessingError{Message: "pixel data element has unexpected value type"}
	}
	if info.IsEncapsulated {
		return nil, &ProcessingError{Message: "encapsulated pixel data (compressed transfer syntax) is not supported"}
	}
	if len(info.Frames) == 0 {
		return nil, &ProcessingError{Message: "pixel data contains no frames"}
	}

	fr := info.Frames[0]
	if fr.Encapsulated {
		return nil, &ProcessingError{Message: "encapsulated pixel data (compressed transfer syntax) is not supported"}
	}

	native := fr.NativeData
	rows, cols := native.Rows, native.Cols
	if rows <= 0 || cols <= 0 {
		return nil, &ProcessingError{Message: "pixel matrix has invalid dimensions"}
	}
	if len(native.Data) < rows*cols {
		return nil, &ProcessingError{Message: "pixel matrix is truncated"}
	}

	samples := len(native.Data[0])
	if samples == 0 {
		return nil, &ProcessingError{Message: "pixel matrix has no samples per pixel"}
	}
	// Grayscale replicates its single sample; color uses the first three.
	channels := samples
	if channels > 3 {
		channels = 3
	}

	maxVal := 0
	for _, px := range native.Data {
		for s := 0; s < channels && s < len(px); s++ {
			if px[s] > maxVal {
				maxVal = px[s]
			}
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, cols, rows))
	for i, px := range native.Data {
		x, y := i%cols, i/cols
		var c [3]uint8
		for s := 0; s < 3; s++ {
			idx := s
			if samples == 1 {
				idx = 0
			}
			v := 0
			if idx < len(px) {
				v = px[idx]
			}
			if v < 0 {
				v = 0
			}
			// maxVal == 0 means a constant zero matrix; emit black
			// rather than dividing by zero.
			if maxVal > 0 {
				c[s] = uint8(v * 255 / maxVal)
			}
		}
		img.SetNRGBA(x, y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: 255})
	}
	return img, nil
}
