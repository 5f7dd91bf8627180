// Package client defines the boundary to remote image-understanding
// services. Backends are network-bound, non-deterministic and potentially
// slow; callers make exactly one attempt per user action and never retry
// automatically.
package client

import (
	"context"
	"fmt"

	"github.com/aizech/corpus-analyzer/pkg/types"
)

// VisionClient is the single capability the pipeline needs from a remote
// analyzer.
type VisionClient interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (types.AnalysisReport, error)
}

// AnalysisError reports a failed or unusable response from a vision backend.
// It carries a user-safe message; raw provider payloads stay in Cause and are
// never written to durable logs by the core.
type AnalysisError struct {
	Backend string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *AnalysisError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s analysis: %s: %v", e.Backend, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s analysis: %s", e.Backend, e.Message)
}

// Unwrap returns the underlying error.
func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
