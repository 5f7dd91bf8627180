package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aizech/corpus-analyzer/pkg/client"
	"github.com/aizech/corpus-analyzer/pkg/types"
)

func testRequest() types.AnalysisRequest {
	return types.AnalysisRequest{
		ImageBytes:  []byte{0x89, 0x50, 0x4e, 0x47},
		ImageFormat: "png",
		Prompt:      "Describe this image.",
		Model:       "gpt-4o",
	}
}

func TestAnalyzeSendsChatCompletion(t *testing.T) {
	var captured chatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  Normal chest radiograph.  "}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	report, err := c.Analyze(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.Content != "Normal chest radiograph." {
		t.Errorf("expected trimmed content, got %q", report.Content)
	}
	if report.Backend != "openai" {
		t.Errorf("unexpected backend %q", report.Backend)
	}

	if captured.Model != "gpt-4o" {
		t.Errorf("unexpected model %q", captured.Model)
	}
	if captured.Stream {
		t.Error("streaming must be disabled")
	}
	if len(captured.Messages) != 1 {
		t.Fatalf("expected one message, got %d", len(captured.Messages))
	}
	parts, ok := captured.Messages[0].Content.([]interface{})
	if !ok || len(parts) != 2 {
		t.Fatalf("expected a two-part user message, got %#v", captured.Messages[0].Content)
	}
	img, _ := parts[1].(map[string]interface{})
	imageURL, _ := img["image_url"].(map[string]interface{})
	url, _ := imageURL["url"].(string)
	if !strings.HasPrefix(url, "data:image/png;base64,") {
		t.Errorf("expected a png data URL, got %q", url)
	}
}

func TestAnalyzeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	_, err := c.Analyze(context.Background(), testRequest())

	var analysisErr *client.AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	if !strings.Contains(analysisErr.Message, "429") {
		t.Errorf("expected status in message, got %q", analysisErr.Message)
	}
}

func TestAnalyzeEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	_, err := c.Analyze(context.Background(), testRequest())

	var analysisErr *client.AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
}

func TestAnalyzeRequiresKeyForHostedAPI(t *testing.T) {
	c := NewClient("", "")
	_, err := c.Analyze(context.Background(), testRequest())

	var analysisErr *client.AnalysisError
	if !errors.As(err, &analysisErr) {
		t.Fatalf("expected AnalysisError, got %v", err)
	}
	if !strings.Contains(analysisErr.Message, "API key") {
		t.Errorf("unexpected message %q", analysisErr.Message)
	}
}
