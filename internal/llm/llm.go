package llm

import (
	"context"
	"time"

	"nutrigenie/internal/shared"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// StructuredGenerator produces a JSON reply constrained by schema.
// Implementations make exactly one round trip per call.
type StructuredGenerator interface {
	GenerateStructured(ctx context.Context, prompt string, schema *Schema) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// withTimeout applies d to ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
