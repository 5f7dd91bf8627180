// Package openai implements the vision client boundary against the OpenAI
// chat completions API or any compatible server.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/request"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

// DefaultBaseURL is the hosted OpenAI endpoint.
const DefaultBaseURL = "https://api.openai.com"

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey  string
	baseURL string
	httpc   *http.Client
}

// Message follows the chat completions message shape; content is either a
// string or a list of content parts.
type Message struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

// ContentPart is one entry of a multi-part user message.
type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

// ImageURL carries an image as a data URL.
type ImageURL struct {
	URL string `json:"url"`
}

type chatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a client for the given endpoint. An empty baseURL selects
// the hosted OpenAI API.
func NewClient(apiKey, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

// Analyze sends the assembled request as a single chat completion with the
// preview attached as a base64 data URL. One attempt, no automatic retries.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisReport, error) {
	if c.apiKey == "" && c.baseURL == DefaultBaseURL {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "openai", Message: "API key is not configured"}
	}

	dataURL := "data:" + request.MIMEType(req.ImageFormat) + ";base64," +
		base64.StdEncoding.EncodeToString(req.ImageBytes)

	body := chatCompletionRequest{
		Model: req.Model,
		Messages: []Message{
			{
				Role: "user",
				Content: []ContentPart{
					{Type: "text", Text: req.Prompt},
					{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
				},
			},
		},
		Stream: false,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "openai", Message: "failed to encode request", Cause: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "openai", Message: "failed to build request", Cause: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "openai", Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return types.AnalysisReport{}, &client.AnalysisError{
			Backend: "openai",
			Message: fmt.Sprintf("server returned HTTP %d", resp.StatusCode),
			Cause:   fmt.Errorf("%s", strings.TrimSpace(string(x))),
		}
	}

	var raw chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "openai", Message: "failed to decode response", Cause: err}
	}
	if len(raw.Choices) == 0 || strings.TrimSpace(raw.Choices[0].Message.Content) == "" {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "openai", Message: "empty response from model"}
	}

	return types.AnalysisReport{
		Content: strings.TrimSpace(raw.Choices[0].Message.Content),
		Model:   req.Model,
		Backend: "openai",
	}, nil
}
