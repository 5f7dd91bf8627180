// Package corpusanalyzer turns clinical images into de-identified previews
// and sends them to a remote image-understanding service for analysis.
//
// The pipeline accepts conventional rasters (JPEG/PNG) and DICOM studies.
// DICOM uploads are anonymized locally before pixel extraction, the pixel
// matrix is rescaled to a displayable 8-bit image, and the preview is resized
// to a bounded width. Analysis requests are assembled entirely in memory; no
// uploaded image is ever written to disk.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"fmt"
//		"log"
//		"os"
//
//		corpusanalyzer "github.com/aizech/corpus-analyzer"
//		"github.com/aizech/corpus-analyzer/pkg/openai"
//		"github.com/aizech/corpus-analyzer/pkg/types"
//	)
//
//	func main() {
//		pipeline := corpusanalyzer.New(openai.NewClient(os.Getenv("OPENAI_API_KEY"), ""), nil)
//
//		data, err := os.ReadFile("study.dcm")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := pipeline.Process(types.RawUpload{Data: data, Filename: "study.dcm"})
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		// Show result.Preview and result.Anonymization to the user here;
//		// continue only after they confirm nothing sensitive remains.
//		report, err := pipeline.Analyze(context.Background(), result, "", "")
//		if err != nil {
//			log.Fatal(err)
//		}
//		fmt.Println(report.Content)
//	}
//
// Process and Analyze are deliberately separate operations: Process yields a
// safe-to-show preview plus the anonymization report, Analyze performs the
// single outbound call. The hosting layer owns the consent gate between them.
package corpusanalyzer

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/aizech/corpus-analyzer/internal/config"
	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/decoder"
	"github.com/aizech/corpus-analyzer/pkg/dicomproc"
	"github.com/aizech/corpus-analyzer/pkg/preview"
	"github.com/aizech/corpus-analyzer/pkg/request"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

// Version of the corpus analyzer library.
const Version = "1.0.0"

// AnonymizationNotice describes the limits of local de-identification. It
// must be surfaced to end users alongside DICOM previews.
const AnonymizationNotice = "De-identification clears common identifying DICOM attributes locally " +
	"before analysis. It does not modify pixel data and cannot remove identifying " +
	"text burned into the image itself."

// Pipeline wires the ingestion, normalization and request assembly stages
// around a vision backend. Each invocation operates on its own data; a
// Pipeline is safe for concurrent use.
type Pipeline struct {
	decoder      *decoder.Decoder
	assembler    *request.Assembler
	client       client.VisionClient
	previewWidth int
	log          zerolog.Logger
}

// New creates a Pipeline around the given vision backend. A nil cfg selects
// the built-in defaults (PNG transport, 500px previews, gpt-4o fallback).
func New(vc client.VisionClient, cfg *config.Config) *Pipeline {
	return NewWithLogger(vc, cfg, zerolog.Nop())
}

// NewWithLogger is New with a logger for non-fatal anonymization warnings and
// pipeline diagnostics.
func NewWithLogger(vc client.VisionClient, cfg *config.Config, log zerolog.Logger) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	width := cfg.PreviewWidth
	if width <= 0 {
		width = preview.DefaultWidth
	}
	return &Pipeline{
		decoder: decoder.New(log),
		assembler: &request.Assembler{
			Format:       cfg.TransportFormat,
			DefaultModel: cfg.DefaultModel,
		},
		client:       vc,
		previewWidth: width,
		log:          log,
	}
}

// ProcessResult is a decoded, de-identified and resized upload, ready to be
// shown to the user and, after confirmation, analyzed.
type ProcessResult struct {
	// Kind is the detected container format of the upload.
	Kind types.SourceKind
	// Display is the full-resolution 8-bit display image.
	Display image.Image
	// Preview is Display resized to the bounded preview width.
	Preview image.Image
	// Anonymization lists per-attribute de-identification outcomes for
	// DICOM uploads; nil for plain rasters.
	Anonymization []dicomproc.TagResult
}

// Process decodes an upload into a display image and bounded preview. DICOM
// studies are anonymized before pixel extraction. Nothing leaves the process.
func (p *Pipeline) Process(upload types.RawUpload) (*ProcessResult, error) {
	decoded, err := p.decoder.Decode(upload)
	if err != nil {
		return nil, err
	}

	return &ProcessResult{
		Kind:          decoded.Kind,
		Display:       decoded.Image,
		Preview:       preview.Resize(decoded.Image, p.previewWidth),
		Anonymization: decoded.Anonymization,
	}, nil
}

// Analyze assembles the analysis request from a processed upload and makes a
// single call to the vision backend. The preview is re-encoded in memory;
// contextText is included verbatim when non-empty, and modelOverride takes
// precedence over the configured default model.
func (p *Pipeline) Analyze(ctx context.Context, res *ProcessResult, contextText, modelOverride string) (types.AnalysisReport, error) {
	req, err := p.assembler.Build(res.Preview, contextText, modelOverride)
	if err != nil {
		return types.AnalysisReport{}, err
	}

	p.log.Info().
		Str("model", req.Model).
		Str("format", req.ImageFormat).
		Int("image_bytes", len(req.ImageBytes)).
		Msg("sending analysis request")

	return p.client.Analyze(ctx, req)
}
