package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	corpusanalyzer "github.com/aizech/corpus-analyzer"
	"github.com/aizech/corpus-analyzer/internal/config"
	"github.com/aizech/corpus-analyzer/internal/logging"
	"github.com/aizech/corpus-analyzer/internal/server"
	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/dicomproc"
	"github.com/aizech/corpus-analyzer/pkg/gemini"
	"github.com/aizech/corpus-analyzer/pkg/ollama"
	"github.com/aizech/corpus-analyzer/pkg/openai"
	"github.com/aizech/corpus-analyzer/pkg/request"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

func main() {
	var in, contextText, model, backend, url, cfgPath, format, previewOut, addr string
	var width int
	var confirm, serve bool

	flag.StringVar(&in, "in", "", "input image path (jpg/png/dcm/dicom)")
	flag.StringVar(&contextText, "context", "", "additional clinical context included verbatim in the prompt")
	flag.StringVar(&model, "model", "", "model identifier (overrides the configured default)")
	flag.StringVar(&backend, "backend", "", "vision backend: openai, gemini or ollama (default from config)")
	flag.StringVar(&url, "url", "", "backend endpoint (Ollama server or OpenAI-compatible base URL)")
	flag.StringVar(&cfgPath, "config", config.GetConfigPath(), "configuration file path")
	flag.StringVar(&format, "format", "", "transport format for the preview: png|jpeg|webp")
	flag.StringVar(&previewOut, "preview", "", "write the de-identified preview to this path and continue")
	flag.IntVar(&width, "width", 0, "preview width in pixels (default 500)")
	flag.BoolVar(&confirm, "confirm", false, "confirm the upload and context contain no sensitive patient-identifying information")
	flag.BoolVar(&serve, "serve", false, "run the HTTP server instead of a one-shot analysis")
	flag.StringVar(&addr, "addr", ":8080", "listen address for -serve")
	flag.Parse()

	log := logging.New("corpus-analyzer", os.Stderr)

	cfg, err := config.LoadFromFile(cfgPath)
	if err != nil {
		log.Debug().Err(err).Str("path", cfgPath).Msg("using default configuration")
	}
	applyOverrides(cfg, backend, url, format, width)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	vc, err := newVisionClient(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create vision client")
	}
	pipeline := corpusanalyzer.NewWithLogger(vc, cfg, log)

	if serve {
		log.Info().Str("addr", addr).Str("backend", cfg.Backend).Msg("starting server")
		if err := http.ListenAndServe(addr, server.NewRouter(pipeline, log)); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if in == "" {
		log.Fatal().Msgf("usage: %s -in image.dcm [-context text] [-model id] [-backend openai|gemini|ollama] [-confirm]", filepath.Base(os.Args[0]))
	}

	data, err := os.ReadFile(in)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input")
	}

	result, err := pipeline.Process(types.RawUpload{Data: data, Filename: in})
	if err != nil {
		log.Fatal().Err(err).Msg("processing failed")
	}

	b := result.Preview.Bounds()
	log.Info().
		Str("kind", result.Kind.String()).
		Int("preview_width", b.Dx()).
		Int("preview_height", b.Dy()).
		Msg("upload processed")

	if result.Kind == types.KindDicom {
		for _, tr := range result.Anonymization {
			if tr.Outcome != dicomproc.OutcomeAbsent {
				log.Info().Str("attribute", tr.Name).Str("outcome", string(tr.Outcome)).Msg("de-identified")
			}
		}
		fmt.Fprintln(os.Stderr, corpusanalyzer.AnonymizationNotice)
	}

	if previewOut != "" {
		if err := writePreview(result, previewOut, cfg.TransportFormat); err != nil {
			log.Fatal().Err(err).Msg("failed to write preview")
		}
		log.Info().Str("path", previewOut).Msg("wrote preview")
	}

	if !confirm {
		fmt.Fprintln(os.Stderr, "Nothing was sent. Review the preview and re-run with -confirm to send it for analysis.")
		return
	}

	report, err := pipeline.Analyze(context.Background(), result, contextText, model)
	if err != nil {
		log.Fatal().Err(err).Msg("analysis failed")
	}

	fmt.Println(report.Content)
}

func applyOverrides(cfg *config.Config, backend, url, format string, width int) {
	if backend != "" {
		cfg.Backend = backend
	}
	if url != "" {
		cfg.BackendURL = url
	}
	if format != "" {
		cfg.TransportFormat = format
	}
	if width > 0 {
		cfg.PreviewWidth = width
	}
}

func newVisionClient(cfg *config.Config) (client.VisionClient, error) {
	switch cfg.Backend {
	case "ollama":
		url := cfg.BackendURL
		if url == "" {
			url = "http://localhost:11434"
		}
		return ollama.NewClient(url)
	case "gemini":
		return gemini.NewClient(os.Getenv("GEMINI_API_KEY")), nil
	case "openai":
		return openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.BackendURL), nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use openai, gemini or ollama)", cfg.Backend)
	}
}

func writePreview(result *corpusanalyzer.ProcessResult, path, format string) error {
	encoded, err := request.Encode(result.Preview, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, encoded, 0o644)
}
