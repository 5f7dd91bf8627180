// Package server exposes the analysis pipeline over HTTP. It is hosting
// glue: all format handling and de-identification stays in the pipeline.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	corpusanalyzer "github.com/aizech/corpus-analyzer"
	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/decoder"
	"github.com/aizech/corpus-analyzer/pkg/dicomproc"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

// maxUploadBytes bounds a single uploaded file.
const maxUploadBytes = 64 << 20

// AnalysisResponse is the JSON body returned by POST /analyze.
type AnalysisResponse struct {
	Report        string                `json:"report"`
	Model         string                `json:"model"`
	Backend       string                `json:"backend,omitempty"`
	Kind          string                `json:"kind"`
	Anonymization []dicomproc.TagResult `json:"anonymization,omitempty"`
	Notice        string                `json:"notice,omitempty"`
}

// ErrorResponse is the JSON body returned for failures.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// NewRouter builds the HTTP handler around a pipeline.
func NewRouter(pipeline *corpusanalyzer.Pipeline, log zerolog.Logger) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", healthCheck)
	r.POST("/analyze", analyzeUpload(pipeline, log))

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": corpusanalyzer.Version})
}

func analyzeUpload(pipeline *corpusanalyzer.Pipeline, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		upload, err := readUpload(c)
		if err != nil {
			log.Warn().Err(err).Str("ip", c.ClientIP()).Msg("rejected upload")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid upload", Message: err.Error()})
			return
		}

		// The caller must confirm that upload and context contain no
		// sensitive patient-identifying information before anything is
		// sent to the model provider.
		if c.PostForm("consent") != "true" {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "consent required",
				Message: "set consent=true to confirm the upload and context contain no sensitive patient-identifying information",
			})
			return
		}

		result, err := pipeline.Process(upload)
		if err != nil {
			status, kind := classify(err)
			log.Warn().Err(err).Str("filename", upload.Filename).Msg("processing failed")
			c.JSON(status, ErrorResponse{Error: kind, Message: err.Error()})
			return
		}

		report, err := pipeline.Analyze(c.Request.Context(), result, c.PostForm("context"), c.PostForm("model"))
		if err != nil {
			status, kind := classify(err)
			log.Warn().Err(err).Msg("analysis failed")
			c.JSON(status, ErrorResponse{Error: kind, Message: "the analysis attempt was abandoned, please try again"})
			return
		}

		log.Info().
			Str("kind", result.Kind.String()).
			Str("model", report.Model).
			Dur("elapsed", time.Since(start)).
			Msg("analysis completed")

		resp := AnalysisResponse{
			Report:  report.Content,
			Model:   report.Model,
			Backend: report.Backend,
			Kind:    result.Kind.String(),
		}
		if result.Kind == types.KindDicom {
			resp.Anonymization = result.Anonymization
			resp.Notice = corpusanalyzer.AnonymizationNotice
		}
		c.JSON(http.StatusOK, resp)
	}
}

func readUpload(c *gin.Context) (types.RawUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		return types.RawUpload{}, fmt.Errorf("missing image file: %w", err)
	}
	if fileHeader.Size > maxUploadBytes {
		return types.RawUpload{}, fmt.Errorf("file exceeds %d byte limit", maxUploadBytes)
	}

	f, err := fileHeader.Open()
	if err != nil {
		return types.RawUpload{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return types.RawUpload{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return types.RawUpload{}, fmt.Errorf("file exceeds %d byte limit", maxUploadBytes)
	}

	return types.RawUpload{
		Data:     data,
		Filename: fileHeader.Filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

// classify maps pipeline errors onto HTTP statuses and stable error kinds.
func classify(err error) (int, string) {
	var decodeErr *decoder.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest, "decode error"
	}
	var procErr *dicomproc.ProcessingError
	if errors.As(err, &procErr) {
		return http.StatusUnprocessableEntity, "dicom processing error"
	}
	var analysisErr *client.AnalysisError
	if errors.As(err, &analysisErr) {
		return http.StatusBadGateway, "analysis error"
	}
	return http.StatusInternalServerError, "internal error"
}
