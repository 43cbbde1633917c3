package driven

import (
	"context"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// QAStore handles persistence of completed QA runs (PostgreSQL)
type QAStore interface {
	// SaveRecord persists one completed QA run.
	// A record is written only for complete runs; failed runs persist nothing.
	SaveRecord(ctx context.Context, record *domain.QARecord) error

	// History retrieves persisted records with pagination, newest first
	History(ctx context.Context, limit, offset int) ([]*domain.QARecord, error)
}
