package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// documentService manages knowledge-base documents and schedules ingestion
type documentService struct {
	documentStore driven.DocumentStore
	chunkStore    driven.ChunkStore
	taskQueue     driven.TaskQueue
	ingest        driving.IngestService
	logger        *slog.Logger
}

// DocumentServiceConfig holds dependencies for the document service
type DocumentServiceConfig struct {
	DocumentStore driven.DocumentStore
	ChunkStore    driven.ChunkStore

	// TaskQueue schedules ingestion asynchronously. Optional.
	TaskQueue driven.TaskQueue

	// Ingest runs ingestion synchronously when no queue is configured
	Ingest driving.IngestService

	Logger *slog.Logger
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentServiceConfig) driving.DocumentService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &documentService{
		documentStore: cfg.DocumentStore,
		chunkStore:    cfg.ChunkStore,
		taskQueue:     cfg.TaskQueue,
		ingest:        cfg.Ingest,
		logger:        logger,
	}
}

// Create stores a new document and schedules it for ingestion
func (s *documentService) Create(ctx context.Context, title, content string) (*domain.Document, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: content must not be empty", domain.ErrInvalidArgument)
	}

	doc := &domain.Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.documentStore.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	if s.taskQueue != nil {
		task := domain.NewIngestDocumentTask(doc.ID)
		if err := s.taskQueue.Enqueue(ctx, task); err != nil {
			// The document is stored; ingestion can be retried later
			s.logger.Error("enqueue ingest task failed",
				"document_id", doc.ID, "error", err)
			return doc, nil
		}
		s.logger.Info("ingest task enqueued", "document_id", doc.ID, "task_id", task.ID)
		return doc, nil
	}

	if s.ingest != nil {
		if _, err := s.ingest.ProcessDocument(ctx, doc.ID); err != nil {
			s.logger.Error("synchronous ingestion failed",
				"document_id", doc.ID, "error", err)
		}
	}
	return doc, nil
}

// Get retrieves a document by ID
func (s *documentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: document id must not be empty", domain.ErrInvalidArgument)
	}
	return s.documentStore.Get(ctx, id)
}

// GetWithChunks retrieves a document together with its chunks
func (s *documentService) GetWithChunks(ctx context.Context, id string) (*domain.DocumentWithChunks, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	chunks, err := s.chunkStore.GetByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chunks for %s: %w", id, err)
	}
	return &domain.DocumentWithChunks{Document: doc, Chunks: chunks}, nil
}

// List retrieves documents with pagination, newest first
func (s *documentService) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.documentStore.List(ctx, limit, offset)
}

// Delete removes a document and all of its chunks
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: document id must not be empty", domain.ErrInvalidArgument)
	}
	if err := s.chunkStore.DeleteByDocument(ctx, id); err != nil {
		return fmt.Errorf("delete chunks for %s: %w", id, err)
	}
	if err := s.documentStore.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("document deleted", "document_id", id)
	return nil
}

// Count returns the total number of documents
func (s *documentService) Count(ctx context.Context) (int, error) {
	return s.documentStore.Count(ctx)
}
