package driven

import (
	"context"
)

// GenerationService produces answer text from a rendered prompt.
// One QA run issues exactly one generation request; retry policy, if any,
// belongs to the adapter behind this interface, not to callers.
type GenerationService interface {
	// Generate produces a completion for the given prompt
	Generate(ctx context.Context, prompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generation service
	Close() error
}
