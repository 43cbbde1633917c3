package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driven/mocks"
	"github.com/ragline-labs/ragline-core/internal/core/ports/driving"
	"github.com/ragline-labs/ragline-core/internal/runtime"
)

type ingestFixture struct {
	service       driving.IngestService
	embedding     *mocks.MockEmbeddingService
	documentStore *mocks.MockDocumentStore
	chunkStore    *mocks.MockChunkStore
}

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()

	embedding := mocks.NewMockEmbeddingService()
	services := runtime.NewServices()
	services.SetEmbeddingService(embedding)

	documentStore := mocks.NewMockDocumentStore()
	chunkStore := mocks.NewMockChunkStore()

	service, err := NewIngestService(IngestServiceConfig{
		DocumentStore: documentStore,
		ChunkStore:    chunkStore,
		Services:      services,
	})
	if err != nil {
		t.Fatalf("NewIngestService failed: %v", err)
	}
	return &ingestFixture{
		service:       service,
		embedding:     embedding,
		documentStore: documentStore,
		chunkStore:    chunkStore,
	}
}

func (f *ingestFixture) seedDocument(t *testing.T, id, content string) {
	t.Helper()
	err := f.documentStore.Save(context.Background(), &domain.Document{
		ID:        id,
		Title:     "test document",
		Content:   content,
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("seed document: %v", err)
	}
}

func TestProcessDocument_ChunksAndEmbeds(t *testing.T) {
	f := newIngestFixture(t)
	content := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 60)
	f.seedDocument(t, "doc-1", content)

	count, err := f.service.ProcessDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("ProcessDocument failed: %v", err)
	}
	if count < 2 {
		t.Fatalf("expected the document to split into multiple chunks, got %d", count)
	}

	chunks, err := f.chunkStore.GetByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByDocument failed: %v", err)
	}
	if len(chunks) != count {
		t.Fatalf("expected %d stored chunks, got %d", count, len(chunks))
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunk %d: expected contiguous index, got %d", i, c.Index)
		}
		if len(c.Embedding) != f.embedding.Dimensions() {
			t.Errorf("chunk %d: expected embedding dimension %d, got %d",
				i, f.embedding.Dimensions(), len(c.Embedding))
		}
		if c.Metadata["chunk_index"] != c.Index {
			t.Errorf("chunk %d: metadata index mismatch", i)
		}
		if c.Metadata["word_count"] != len(strings.Fields(c.Content)) {
			t.Errorf("chunk %d: metadata word count mismatch", i)
		}
	}
}

func TestProcessDocument_EmbeddingFailureStoresNothing(t *testing.T) {
	f := newIngestFixture(t)
	f.seedDocument(t, "doc-1", "some content to ingest")
	f.embedding.SetFailNext(true)

	_, err := f.service.ProcessDocument(context.Background(), "doc-1")
	if !errors.Is(err, domain.ErrEmbeddingService) {
		t.Fatalf("expected ErrEmbeddingService, got %v", err)
	}

	count, _ := f.chunkStore.Count(context.Background())
	if count != 0 {
		t.Errorf("expected no chunks persisted after embedding failure, got %d", count)
	}
}

func TestProcessDocument_ReingestReplacesChunks(t *testing.T) {
	f := newIngestFixture(t)
	f.seedDocument(t, "doc-1", "first version of the content")

	if _, err := f.service.ProcessDocument(context.Background(), "doc-1"); err != nil {
		t.Fatalf("first ingestion failed: %v", err)
	}
	f.seedDocument(t, "doc-1", "second version of the content")
	count, err := f.service.ProcessDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("re-ingestion failed: %v", err)
	}

	chunks, _ := f.chunkStore.GetByDocument(context.Background(), "doc-1")
	if len(chunks) != count {
		t.Fatalf("expected re-ingestion to replace chunks, got %d stored for count %d",
			len(chunks), count)
	}
	for _, c := range chunks {
		if !strings.Contains(c.Content, "second version") {
			t.Errorf("expected chunks from the new content, got %q", c.Content)
		}
	}
}

func TestProcessDocument_UnknownDocument(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.service.ProcessDocument(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestProcessDocument_NoEmbeddingService(t *testing.T) {
	documentStore := mocks.NewMockDocumentStore()
	service, err := NewIngestService(IngestServiceConfig{
		DocumentStore: documentStore,
		ChunkStore:    mocks.NewMockChunkStore(),
		Services:      runtime.NewServices(),
	})
	if err != nil {
		t.Fatalf("NewIngestService failed: %v", err)
	}
	_ = documentStore.Save(context.Background(), &domain.Document{ID: "doc-1", Content: "text"})

	if _, err := service.ProcessDocument(context.Background(), "doc-1"); !errors.Is(err, domain.ErrServiceUnavailable) {
		t.Fatalf("expected ErrServiceUnavailable, got %v", err)
	}
}
