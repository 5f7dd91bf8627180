// Package gemini implements the vision client boundary against Google's
// Generative Language API.
package gemini

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/request"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

// Client talks to the Gemini API.
type Client struct {
	apiKey string
}

// NewClient creates a Gemini client.
func NewClient(apiKey string) *Client {
	return &Client{apiKey: apiKey}
}

// Analyze sends the preview and prompt in a single generateContent call.
// One attempt, no automatic retries.
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisReport, error) {
	if c.apiKey == "" {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "gemini", Message: "API key is not configured"}
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "gemini", Message: "failed to create client", Cause: err}
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(req.Model))

	parts := []genai.Part{
		genai.Text(req.Prompt),
		&genai.Blob{MIMEType: request.MIMEType(req.ImageFormat), Data: req.ImageBytes},
	}

	resp, err := m.GenerateContent(ctx, parts...)
	if err != nil {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "gemini", Message: "generate content failed", Cause: err}
	}

	text := firstText(resp)
	if text == "" {
		return types.AnalysisReport{}, &client.AnalysisError{Backend: "gemini", Message: "empty response from model"}
	}

	return types.AnalysisReport{Content: text, Model: req.Model, Backend: "gemini"}, nil
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			break
		}
	}
	return strings.TrimSpace(b.String())
}
