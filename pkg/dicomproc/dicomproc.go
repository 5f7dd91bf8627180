// Package dicomproc handles DICOM datasets: parsing uploaded studies,
// clearing identifying attributes, and converting the pixel matrix into a
// displayable 8-bit image.
//
// De-identification covers dataset attributes only. Pixel data is never
// modified, so text burned directly into the image survives anonymization.
// Callers that surface previews to end users must state this limitation.
package dicomproc

import (
	"bytes"
	"fmt"

	"github.com/suyashkumar/dicom"
)

// ProcessingError reports a failure while extracting or converting pixel data
// after the DICOM container itself parsed successfully. The pipeline must stop
// on this error; no fallback image is synthesized.
type ProcessingError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dicom processing: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("dicom processing: %s", e.Message)
}

// Unwrap returns the underlying error.
func (e *ProcessingError) Unwrap() error {
	return e.Cause
}

// Parse reads a DICOM dataset from uploaded bytes. The returned dataset is
// owned by the caller; nothing is cached between invocations.
func Parse(data []byte) (dicom.Dataset, error) {
	ds, err := dicom.Parse(bytes.NewReader(data), int64(len(data)), nil)
	if err != nil {
		return dicom.Dataset{}, fmt.Errorf("failed to parse DICOM dataset: %w", err)
	}
	return ds, nil
}
