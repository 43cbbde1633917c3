// Package runtime holds the dynamically configurable AI services.
package runtime

import (
	"sync"

	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// AI services (embedding, generation) can be swapped at runtime.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	embeddingService  driven.EmbeddingService
	generationService driven.GenerationService
}

// NewServices creates a new Services registry
func NewServices() *Services {
	return &Services{}
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// GenerationService returns the current generation service (may be nil)
func (s *Services) GenerationService() driven.GenerationService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generationService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}
	s.embeddingService = svc
}

// SetGenerationService updates the generation service.
// Closes the old service if present.
func (s *Services) SetGenerationService(svc driven.GenerationService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generationService != nil {
		_ = s.generationService.Close()
	}
	s.generationService = svc
}

// CanEmbed reports whether an embedding service is configured
func (s *Services) CanEmbed() bool {
	return s.EmbeddingService() != nil
}

// CanGenerate reports whether a generation service is configured
func (s *Services) CanGenerate() bool {
	return s.GenerationService() != nil
}
