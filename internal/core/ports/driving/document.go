package driving

import (
	"context"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// DocumentService manages knowledge-base documents
type DocumentService interface {
	// Create stores a new document and schedules it for ingestion.
	// When no task queue is configured ingestion runs synchronously.
	Create(ctx context.Context, title, content string) (*domain.Document, error)

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// GetWithChunks retrieves a document together with its chunks
	GetWithChunks(ctx context.Context, id string) (*domain.DocumentWithChunks, error)

	// List retrieves documents with pagination
	List(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// Delete removes a document and all of its chunks
	Delete(ctx context.Context, id string) error

	// Count returns the total number of documents
	Count(ctx context.Context) (int, error)
}
