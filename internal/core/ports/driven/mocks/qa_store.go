package mocks

import (
	"context"
	"errors"
	"sync"

	"github.com/ragline-labs/ragline-core/internal/core/domain"
)

// MockQAStore is a mock implementation of QAStore for testing
type MockQAStore struct {
	mu       sync.RWMutex
	records  []*domain.QARecord
	failNext bool
}

// NewMockQAStore creates a new MockQAStore
func NewMockQAStore() *MockQAStore {
	return &MockQAStore{}
}

func (m *MockQAStore) SaveRecord(ctx context.Context, record *domain.QARecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return errors.New("save record failed")
	}
	m.records = append(m.records, record)
	return nil
}

func (m *MockQAStore) History(ctx context.Context, limit, offset int) ([]*domain.QARecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Newest first
	reversed := make([]*domain.QARecord, 0, len(m.records))
	for i := len(m.records) - 1; i >= 0; i-- {
		reversed = append(reversed, m.records[i])
	}

	if offset >= len(reversed) {
		return nil, nil
	}
	reversed = reversed[offset:]
	if limit > 0 && limit < len(reversed) {
		reversed = reversed[:limit]
	}
	return reversed, nil
}

// Helper methods for testing

func (m *MockQAStore) Records() []*domain.QARecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]*domain.QARecord, len(m.records))
	copy(records, m.records)
	return records
}

func (m *MockQAStore) SetFailNext(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = fail
}
