// Package decoder turns raw uploaded bytes into a displayable image,
// branching once on the declared format: DICOM studies go through
// anonymization and pixel normalization, conventional rasters decode
// directly.
package decoder

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"

	"github.com/aizech/corpus-analyzer/internal/utils"
	"github.com/aizech/corpus-analyzer/pkg/dicomproc"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

// DecodeError reports a malformed or unsupported upload. The pipeline must
// not proceed to resizing or request assembly when decoding fails; no partial
// preview is produced.
type DecodeError struct {
	Filename string
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("decode %s: %s: %v", e.Filename, e.Message, e.Cause)
	}
	return fmt.Sprintf("decode %s: %s", e.Filename, e.Message)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Result is a successfully decoded upload. Anonymization is populated only on
// the DICOM path.
type Result struct {
	// Image is the 8-bit display image.
	Image image.Image
	// Kind is the detected container format.
	Kind types.SourceKind
	// Anonymization holds the per-attribute de-identification outcomes for
	// DICOM uploads. Nil for plain rasters.
	Anonymization []dicomproc.TagResult
}

// Decoder decodes uploads into display images.
type Decoder struct {
	log zerolog.Logger
}

// New creates a Decoder. The logger receives non-fatal anonymization warnings.
func New(log zerolog.Logger) *Decoder {
	return &Decoder{log: log}
}

// DetectKind classifies an upload by filename extension and declared MIME
// type. Unsupported formats yield a *DecodeError; only JPEG, PNG and DICOM
// are accepted.
func DetectKind(filename, mimeType string) (types.SourceKind, error) {
	if utils.IsDicomFile(filename) || mimeType == "application/dicom" {
		return types.KindDicom, nil
	}
	if utils.IsRasterFile(filename) {
		return types.KindRaster, nil
	}
	return 0, &DecodeError{
		Filename: filename,
		Message:  fmt.Sprintf("unsupported format %q (supported: jpg, jpeg, png, dcm, dicom)", utils.FileExtension(filename)),
	}
}

// Decode converts an upload into a display image. DICOM uploads are
// anonymized before pixel extraction so no identifying metadata survives into
// the result.
//
// Container parse errors are reported as *DecodeError; failures while
// extracting or normalizing DICOM pixel data after a successful parse come
// back as *dicomproc.ProcessingError.
func (d *Decoder) Decode(upload types.RawUpload) (*Result, error) {
	kind, err := DetectKind(upload.Filename, upload.MIMEType)
	if err != nil {
		return nil, err
	}

	switch kind {
	case types.KindDicom:
		return d.decodeDicom(upload)
	default:
		return d.decodeRaster(upload)
	}
}

func (d *Decoder) decodeRaster(upload types.RawUpload) (*Result, error) {
	img, _, err := image.Decode(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, &DecodeError{Filename: upload.Filename, Message: "failed to decode image", Cause: err}
	}
	return &Result{Image: img, Kind: types.KindRaster}, nil
}

func (d *Decoder) decodeDicom(upload types.RawUpload) (*Result, error) {
	ds, err := dicomproc.Parse(upload.Data)
	if err != nil {
		return nil, &DecodeError{Filename: upload.Filename, Message: "failed to parse DICOM file", Cause: err}
	}

	// Anonymize before touching pixels so nothing downstream ever sees the
	// identifying attributes.
	anon, report := dicomproc.Anonymize(ds, d.log)

	img, err := dicomproc.ToDisplayImage(anon)
	if err != nil {
		return nil, err
	}
	return &Result{Image: img, Kind: types.KindDicom, Anonymization: report}, nil
}
