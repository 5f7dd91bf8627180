// Package request assembles analysis requests: the preview image re-encoded
// to a transport raster format, the prompt, and the resolved model
// identifier.
package request

import (
	"image"

	"github.com/aizech/corpus-analyzer/pkg/types"
)

// FallbackModel is used when neither the caller nor the persisted
// configuration names a model.
const FallbackModel = "gpt-4o"

// Assembler builds analysis requests. The zero value encodes previews as PNG
// with no configured default model.
type Assembler struct {
	// Format is the transport raster format (png, jpeg or webp). Empty
	// means PNG.
	Format string
	// DefaultModel is the model identifier from persisted configuration.
	// May be empty, in which case FallbackModel applies.
	DefaultModel string
}

// ResolveModel picks the model identifier: explicit caller override first,
// then the configured default, then FallbackModel. The result is never empty.
func (a *Assembler) ResolveModel(override string) string {
	if override != "" {
		return override
	}
	if a.DefaultModel != "" {
		return a.DefaultModel
	}
	return FallbackModel
}

// Build combines a preview image, optional clinical context and a model
// override into a single analysis request. The image is encoded in memory.
func (a *Assembler) Build(previewImg image.Image, contextText, modelOverride string) (types.AnalysisRequest, error) {
	format := a.Format
	if format == "" {
		format = FormatPNG
	}

	encoded, err := Encode(previewImg, format)
	if err != nil {
		return types.AnalysisRequest{}, err
	}

	return types.AnalysisRequest{
		ImageBytes:  encoded,
		ImageFormat: format,
		Prompt:      BuildPrompt(contextText),
		Model:       a.ResolveModel(modelOverride),
	}, nil
}
