// Package ollama implements the vision client boundary against a local or
// remote Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

// defaultTimeout bounds a single analysis call when the caller's context has
// no deadline of its own.
const defaultTimeout = 300 * time.Second

// Client wraps the Ollama API client.
type Client struct {
	client *api.Client
}

// NewClient creates a new Ollama client for the given server URL. Any path
// component (like /api/chat) is stripped; only scheme and host are used.
func NewClient(ollamaURL string) (*Client, error) {
	parsedURL, err := url.Parse(ollamaURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	baseURL := &url.URL{
		Scheme: parsedURL.Scheme,
		Host:   parsedURL.Host,
	}

	return &Client{client: api.NewClient(baseURL, http.DefaultClient)}, nil
}

// Analyze sends the assembled request and returns the model's findings as
// opaque markdown. A single attempt is made; failures come back as
// *client.AnalysisError.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisReport, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultTimeout)
		defer cancel()
	}

	streamFalse := false
	chatReq := &api.ChatRequest{
		Model: req.Model,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: req.Prompt,
				Images:  []api.ImageData{api.ImageData(req.ImageBytes)},
			},
		},
		Stream: &streamFalse,
	}

	var responseContent string
	err := c.client.Chat(ctx, chatReq, func(resp api.ChatResponse) error {
		responseContent = resp.Message.Content
		return nil
	})
	if err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "ollama", Message: "chat request failed", Cause: err}
	}
	if responseContent == "" {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "ollama", Message: "empty response from model"}
	}

	return types.AnalysisReport{Content: responseContent, Model: req.Model, Backend: "ollama"}, nil
}
