package runtime

import (
	"testing"

	"github.com/ragline-labs/ragline-core/internal/core/ports/driven/mocks"
)

func TestServices_SetAndGet(t *testing.T) {
	services := NewServices()

	if services.CanEmbed() || services.CanGenerate() {
		t.Error("expected no services configured initially")
	}

	embedding := mocks.NewMockEmbeddingService()
	generation := mocks.NewMockGenerationService()

	services.SetEmbeddingService(embedding)
	services.SetGenerationService(generation)

	if !services.CanEmbed() || !services.CanGenerate() {
		t.Error("expected services to be available after set")
	}
	if services.EmbeddingService() != embedding {
		t.Error("expected the configured embedding service")
	}
	if services.GenerationService() != generation {
		t.Error("expected the configured generation service")
	}
}

func TestServices_ClearService(t *testing.T) {
	services := NewServices()
	services.SetEmbeddingService(mocks.NewMockEmbeddingService())
	services.SetEmbeddingService(nil)

	if services.CanEmbed() {
		t.Error("expected embedding service cleared")
	}
}
