package mocks

import (
	"context"
	"errors"
)

// MockGenerationService is a mock implementation of GenerationService for testing
type MockGenerationService struct {
	model    string
	answer   string
	failNext bool

	// Prompts records every prompt passed to Generate
	Prompts []string
}

// NewMockGenerationService creates a new MockGenerationService
func NewMockGenerationService() *MockGenerationService {
	return &MockGenerationService{
		model:  "mock-generation-model",
		answer: "mock answer",
	}
}

func (m *MockGenerationService) Generate(ctx context.Context, prompt string) (string, error) {
	if m.failNext {
		m.failNext = false
		return "", errors.New("generation transport error")
	}
	m.Prompts = append(m.Prompts, prompt)
	return m.answer, nil
}

func (m *MockGenerationService) Model() string {
	return m.model
}

func (m *MockGenerationService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockGenerationService) Close() error {
	return nil
}

// Helper methods for testing

func (m *MockGenerationService) SetAnswer(answer string) {
	m.answer = answer
}

func (m *MockGenerationService) SetFailNext(fail bool) {
	m.failNext = fail
}
