package driving

import (
	"context"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// QAService answers questions against the ingested corpus
type QAService interface {
	// Ask runs the retrieve -> generate pipeline for a question, persists
	// the completed run, and returns the record including its trace graph.
	// A failure at any stage aborts the run; nothing is persisted.
	Ask(ctx context.Context, question string) (*domain.QARecord, error)

	// History retrieves past QA runs with pagination, newest first
	History(ctx context.Context, limit, offset int) ([]*domain.QARecord, error)
}
