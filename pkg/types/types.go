package types

// SourceKind identifies the container format of an upload. It is decided once
// at the decoder boundary; downstream code branches on this tag, never on the
// filename again.
type SourceKind int

const (
	// KindRaster is a conventional raster image (JPEG or PNG).
	KindRaster SourceKind = iota
	// KindDicom is a DICOM study (.dcm/.dicom or application/dicom).
	KindDicom
)

// String returns a human-readable name for the source kind.
func (k SourceKind) String() string {
	switch k {
	case KindRaster:
		return "raster"
	case KindDicom:
		return "dicom"
	default:
		return "unknown"
	}
}

// RawUpload is an uploaded file as received at the ingestion boundary.
// It is consumed once by the decoder and discarded afterwards.
type RawUpload struct {
	// Data is the raw file content.
	Data []byte
	// Filename is the name declared by the uploader, used for format detection.
	Filename string
	// MIMEType is the declared content type, if any. May be empty.
	MIMEType string
}

// AnalysisRequest is a fully assembled request for a vision backend: the
// preview image re-encoded to a transport format, the prompt, and the model
// identifier. Prompt and Model are never empty once assembled.
type AnalysisRequest struct {
	ImageBytes  []byte `json:"-"`
	ImageFormat string `json:"image_format"`
	Prompt      string `json:"prompt"`
	Model       string `json:"model"`
}

// AnalysisReport is the free-form result returned by a vision backend.
// The content is treated as opaque markdown.
type AnalysisReport struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Backend string `json:"backend,omitempty"`
}
