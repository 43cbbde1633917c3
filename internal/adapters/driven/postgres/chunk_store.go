package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements driven.ChunkStore using PostgreSQL.
// Embeddings and metadata are stored as JSONB columns.
type ChunkStore struct {
	db *DB
}

// NewChunkStore creates a new ChunkStore
func NewChunkStore(db *DB) *ChunkStore {
	return &ChunkStore{db: db}
}

// SaveBatch saves a document's chunks in a single transaction.
// Either all chunks are persisted or none are.
func (s *ChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO document_chunks (id, document_id, chunk_index, content, embedding, metadata, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO UPDATE SET
				content = EXCLUDED.content,
				embedding = EXCLUDED.embedding,
				metadata = EXCLUDED.metadata
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, chunk := range chunks {
			embedding, err := json.Marshal(chunk.Embedding)
			if err != nil {
				return fmt.Errorf("marshal embedding for chunk %s: %w", chunk.ID, err)
			}
			metadata, err := json.Marshal(chunk.Metadata)
			if err != nil {
				return fmt.Errorf("marshal metadata for chunk %s: %w", chunk.ID, err)
			}

			_, err = stmt.ExecContext(ctx,
				chunk.ID,
				chunk.DocumentID,
				chunk.Index,
				chunk.Content,
				embedding,
				metadata,
				chunk.CreatedAt,
			)
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// GetByDocument retrieves all chunks for a document in index order
func (s *ChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	query := `
		SELECT id, document_id, chunk_index, content, embedding, metadata, created_at
		FROM document_chunks
		WHERE document_id = $1
		ORDER BY chunk_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

// DeleteByDocument deletes all chunks for a document
func (s *ChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	return err
}

// LoadCorpus returns every stored chunk ordered by (document_id, chunk_index).
// The retriever breaks similarity ties on corpus order, so the ordering
// must be stable across calls.
func (s *ChunkStore) LoadCorpus(ctx context.Context) ([]*domain.Chunk, error) {
	query := `
		SELECT id, document_id, chunk_index, content, embedding, metadata, created_at
		FROM document_chunks
		ORDER BY document_id ASC, chunk_index ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanChunks(rows)
}

// Count returns total chunk count
func (s *ChunkStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count)
	return count, err
}

func scanChunks(rows *sql.Rows) ([]*domain.Chunk, error) {
	var chunks []*domain.Chunk
	for rows.Next() {
		var (
			chunk     domain.Chunk
			embedding []byte
			metadata  []byte
		)
		err := rows.Scan(
			&chunk.ID,
			&chunk.DocumentID,
			&chunk.Index,
			&chunk.Content,
			&embedding,
			&metadata,
			&chunk.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(embedding, &chunk.Embedding); err != nil {
			return nil, fmt.Errorf("unmarshal embedding for chunk %s: %w", chunk.ID, err)
		}
		if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata for chunk %s: %w", chunk.ID, err)
		}
		chunks = append(chunks, &chunk)
	}
	return chunks, rows.Err()
}
