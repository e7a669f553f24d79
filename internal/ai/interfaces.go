package ai

import (
	"context"

	"skillmatch/internal/types"
)

// AIProvider abstracts the model backend used for resume tailoring.
// TailorResume returns token usage information - callers can ignore it if not needed
type AIProvider interface {
	TailorResume(ctx context.Context, input types.TailorResumeInput) (types.TailorResumeOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}
