package mocks

import (
	"context"
	"sync"

	"github.com/commentflow-api/internal/service"
)

// MockSearcher is a mock implementation of the search collaborator
type MockSearcher struct {
	mu         sync.Mutex
	SearchFunc func(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error)
	Calls      []service.SearchTarget
}

// Verify interface compliance
var _ service.Searcher = (*MockSearcher)(nil)

func (m *MockSearcher) Search(ctx context.Context, target service.SearchTarget) ([]service.Candidate, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, target)
	m.mu.Unlock()
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, target)
	}
	return nil, nil
}

// MockGenerator is a mock implementation of the text-generation collaborator
type MockGenerator struct {
	mu           sync.Mutex
	GenerateFunc func(ctx context.Context, gc service.GenerationContext) (string, error)
	Calls        []service.GenerationContext
}

// Verify interface compliance
var _ service.Generator = (*MockGenerator)(nil)

func (m *MockGenerator) GenerateComment(ctx context.Context, gc service.GenerationContext) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, gc)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, gc)
	}
	return "This looks like a great fit for what you described.", nil
}
