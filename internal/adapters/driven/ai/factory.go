package ai

import (
	"fmt"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
)

// ProviderOpenAI is the only provider currently implemented
const ProviderOpenAI = "openai"

// Settings describes how to construct an AI service
type Settings struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// IsConfigured reports whether the settings name a provider
func (s *Settings) IsConfigured() bool {
	return s != nil && s.Provider != ""
}

// Factory creates AI services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from settings.
// Returns nil, nil when no provider is configured.
func (f *Factory) CreateEmbeddingService(settings *Settings) (driven.EmbeddingService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case ProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}

// CreateGenerationService creates a generation service from settings.
// Returns nil, nil when no provider is configured.
func (f *Factory) CreateGenerationService(settings *Settings) (driven.GenerationService, error) {
	if !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case ProviderOpenAI:
		return NewOpenAIGeneration(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
