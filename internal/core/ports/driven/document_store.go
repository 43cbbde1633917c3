package driven

import (
	"context"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// DocumentStore handles document persistence (PostgreSQL)
type DocumentStore interface {
	// Save creates or updates a document
	Save(ctx context.Context, doc *domain.Document) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves documents with pagination, newest first
	List(ctx context.Context, limit, offset int) ([]*domain.Document, error)

	// Delete deletes a document and, by cascade, its chunks
	Delete(ctx context.Context, id string) error

	// Count returns total document count
	Count(ctx context.Context) (int, error)
}

// ChunkStore handles chunk persistence (PostgreSQL)
type ChunkStore interface {
	// SaveBatch saves a document's chunks in a single transaction.
	// Either all chunks are persisted or none are.
	SaveBatch(ctx context.Context, chunks []*domain.Chunk) error

	// GetByDocument retrieves all chunks for a document in index order
	GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error)

	// DeleteByDocument deletes all chunks for a document
	DeleteByDocument(ctx context.Context, documentID string) error

	// LoadCorpus returns every stored chunk ordered by
	// (document_id, chunk_index). The ordering is deliberate: the retriever
	// breaks similarity ties on corpus order, so load order must be stable
	// across calls.
	LoadCorpus(ctx context.Context) ([]*domain.Chunk, error)

	// Count returns total chunk count
	Count(ctx context.Context) (int, error)
}
