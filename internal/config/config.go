package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FallbackModel is used when no configuration file exists or the persisted
// value is empty.
const FallbackModel = "gpt-4o"

// Config holds the persisted application configuration. The analysis
// pipeline reads it, never writes it; persistence belongs to the hosting
// layer.
type Config struct {
	// DefaultModel is the model identifier used when the caller does not
	// override it per request.
	DefaultModel string `json:"default_model"`
	// Backend selects the vision backend: openai, gemini or ollama.
	Backend string `json:"backend"`
	// BackendURL overrides the backend endpoint (Ollama server address or
	// an OpenAI-compatible base URL). Empty selects the backend default.
	BackendURL string `json:"backend_url,omitempty"`
	// TransportFormat is the raster format previews are re-encoded to
	// before analysis: png, jpeg or webp.
	TransportFormat string `json:"transport_format,omitempty"`
	// PreviewWidth is the bounded preview width in pixels.
	PreviewWidth int `json:"preview_width,omitempty"`
}

// Default returns a configuration with default values.
func Default() *Config {
	return &Config{
		DefaultModel:    FallbackModel,
		Backend:         "openai",
		TransportFormat: "png",
		PreviewWidth:    500,
	}
}

// LoadFromFile loads configuration from a JSON file. A missing or malformed
// file is not fatal: the defaults are returned along with the error so the
// application keeps working with the fallback model.
func LoadFromFile(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = FallbackModel
	}
	return cfg, nil
}

// SaveToFile saves configuration to a JSON file.
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case "openai", "gemini", "ollama":
	default:
		return fmt.Errorf("backend must be one of openai, gemini, ollama")
	}

	switch c.TransportFormat {
	case "", "png", "jpeg", "jpg", "webp":
	default:
		return fmt.Errorf("transport_format must be png, jpeg or webp")
	}

	if c.PreviewWidth < 0 {
		return fmt.Errorf("preview_width must be positive")
	}

	return nil
}

// GetConfigPath returns the default configuration file path.
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "corpus-analyzer", "config.json")
}
