package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.QAStore = (*QAStore)(nil)

// QAStore implements driven.QAStore using PostgreSQL.
// The trace graph is stored as one JSONB document per record.
type QAStore struct {
	db *DB
}

// NewQAStore creates a new QAStore
func NewQAStore(db *DB) *QAStore {
	return &QAStore{db: db}
}

// SaveRecord persists a completed QA run
func (s *QAStore) SaveRecord(ctx context.Context, record *domain.QARecord) error {
	trace, err := json.Marshal(record.Trace)
	if err != nil {
		return fmt.Errorf("marshal trace for record %s: %w", record.ID, err)
	}

	query := `
		INSERT INTO qa_records (id, question, answer, trace, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ID,
		record.Question,
		record.Answer,
		trace,
		record.CreatedAt,
	)
	return err
}

// History retrieves past QA runs with pagination, newest first
func (s *QAStore) History(ctx context.Context, limit, offset int) ([]*domain.QARecord, error) {
	query := `
		SELECT id, question, answer, trace, created_at
		FROM qa_records
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.QARecord
	for rows.Next() {
		var (
			record domain.QARecord
			trace  []byte
		)
		err := rows.Scan(
			&record.ID,
			&record.Question,
			&record.Answer,
			&trace,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(trace, &record.Trace); err != nil {
			return nil, fmt.Errorf("unmarshal trace for record %s: %w", record.ID, err)
		}
		records = append(records, &record)
	}
	return records, rows.Err()
}
