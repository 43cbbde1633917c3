package driving

import (
	"context"
)

// IngestService runs the chunk -> embed -> store pipeline for one document
type IngestService interface {
	// ProcessDocument splits the document into chunks, embeds them, and
	// persists the batch. Returns the number of chunks stored. An embedding
	// failure aborts the whole batch; no chunk is persisted without its
	// embedding.
	ProcessDocument(ctx context.Context, documentID string) (int, error)
}
