package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ragline-labs/ragline-core/internal/chunking"
	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
	"github.com/ragline-labs/ragline-core/internal/runtime"
)

// Ensure ingestService implements IngestService
var _ driving.IngestService = (*ingestService)(nil)

// ingestService runs the chunk -> embed -> store pipeline for documents
type ingestService struct {
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	services      *runtime.Services
	pipeline      *chunking.Pipeline
	logger        *slog.Logger
}

// IngestServiceConfig holds dependencies for the ingest service
type IngestServiceConfig struct {
	DocumentStore driven.DocumentStore
	ChunkStore    driven.ChunkStore
	Services      *runtime.Services
	Pipeline      *chunking.Pipeline
	Logger        *slog.Logger
}

// NewIngestService creates a new IngestService.
// If no pipeline is given the default chunker configuration is used.
func NewIngestService(cfg IngestServiceConfig) (driving.IngestService, error) {
	pipeline := cfg.Pipeline
	if pipeline == nil {
		var err error
		pipeline, err = chunking.DefaultPipeline(chunking.DefaultConfig())
		if err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ingestService{
		documentStore: cfg.DocumentStore,
		chunkStore:    cfg.ChunkStore,
		services:      cfg.Services,
		pipeline:      pipeline,
		logger:        logger,
	}, nil
}

// ProcessDocument splits, embeds, and persists one document's chunks.
// Re-ingestion replaces the document's previous chunks. The whole batch is
// embedded before anything is written; an embedding failure leaves the
// store untouched.
func (s *ingestService) ProcessDocument(ctx context.Context, documentID string) (int, error) {
	doc, err := s.documentStore.Get(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("get document %s: %w", documentID, err)
	}

	embedding := s.services.EmbeddingService()
	if embedding == nil {
		return 0, fmt.Errorf("%w: no embedding service configured", domain.ErrServiceUnavailable)
	}

	segments := s.pipeline.Process(doc.Content)
	if len(segments) == 0 {
		s.logger.Warn("document produced no chunks", "document_id", documentID)
		return 0, nil
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Content
	}

	vectors, err := embedding.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrEmbeddingService, err)
	}
	if len(vectors) != len(segments) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingService, len(vectors), len(segments))
	}
	wantDims := embedding.Dimensions()
	for i, vec := range vectors {
		if len(vec) != wantDims {
			return 0, fmt.Errorf("%w: chunk %d has dimension %d, expected %d",
				domain.ErrEmbeddingService, i, len(vec), wantDims)
		}
	}

	now := time.Now()
	chunks := make([]*domain.Chunk, len(segments))
	for i, seg := range segments {
		chunks[i] = &domain.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Index:      seg.Index,
			Content:    seg.Content,
			Embedding:  vectors[i],
			Metadata: map[string]any{
				"document_id": doc.ID,
				"chunk_index": seg.Index,
				"word_count":  len(strings.Fields(seg.Content)),
				"char_count":  len(seg.Content),
			},
			CreatedAt: now,
		}
	}

	if err := s.chunkStore.DeleteByDocument(ctx, doc.ID); err != nil {
		return 0, fmt.Errorf("delete previous chunks: %w", err)
	}
	if err := s.chunkStore.SaveBatch(ctx, chunks); err != nil {
		return 0, fmt.Errorf("save chunks: %w", err)
	}

	s.logger.Info("document ingested",
		"document_id", doc.ID,
		"chunks", len(chunks),
		"embedding_model", embedding.Model(),
	)
	return len(chunks), nil
}
