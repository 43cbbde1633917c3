package mocks

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// MockChunkStore is a mock implementation of ChunkStore for testing
type MockChunkStore struct {
	mu            sync.RWMutex
	chunks        []*domain.Chunk
	failSaveBatch bool
}

// NewMockChunkStore creates a new MockChunkStore
func NewMockChunkStore() *MockChunkStore {
	return &MockChunkStore{}
}

func (m *MockChunkStore) SaveBatch(ctx context.Context, chunks []*domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSaveBatch {
		m.failSaveBatch = false
		return errors.New("save batch failed")
	}
	m.chunks = append(m.chunks, chunks...)
	return nil
}

func (m *MockChunkStore) GetByDocument(ctx context.Context, documentID string) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*domain.Chunk
	for _, c := range m.chunks {
		if c.DocumentID == documentID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Index < result[j].Index
	})
	return result, nil
}

func (m *MockChunkStore) DeleteByDocument(ctx context.Context, documentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.chunks[:0]
	for _, c := range m.chunks {
		if c.DocumentID != documentID {
			kept = append(kept, c)
		}
	}
	m.chunks = kept
	return nil
}

// LoadCorpus returns all chunks ordered by (document_id, chunk_index),
// matching the store contract the retriever's tie-break depends on
func (m *MockChunkStore) LoadCorpus(ctx context.Context) ([]*domain.Chunk, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	corpus := make([]*domain.Chunk, len(m.chunks))
	copy(corpus, m.chunks)
	sort.SliceStable(corpus, func(i, j int) bool {
		if corpus[i].DocumentID != corpus[j].DocumentID {
			return corpus[i].DocumentID < corpus[j].DocumentID
		}
		return corpus[i].Index < corpus[j].Index
	})
	return corpus, nil
}

func (m *MockChunkStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks), nil
}

// Helper methods for testing

func (m *MockChunkStore) SetFailSaveBatch(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSaveBatch = fail
}
