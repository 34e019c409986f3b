package mcp

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// mockRetrievalService is a mock implementation of driving.RetrievalService.
type mockRetrievalService struct {
	results   []domain.RankedResult
	err       error
	lastQuery string
	lastScope domain.ScopeContext
}

func (m *mockRetrievalService) Retrieve(
	_ context.Context,
	query string,
	scope domain.ScopeContext,
) ([]domain.RankedResult, error) {
	m.lastQuery = query
	m.lastScope = scope
	return m.results, m.err
}

// mockCollectionService is a mock implementation of driving.CollectionService.
type mockCollectionService struct {
	collections []domain.Collection
	collection  *domain.Collection
	err         error
}

func (m *mockCollectionService) Create(_ context.Context, _ *domain.Collection) error {
	return m.err
}

func (m *mockCollectionService) Get(_ context.Context, _ string) (*domain.Collection, error) {
	return m.collection, m.err
}

func (m *mockCollectionService) List(_ context.Context, _ domain.ScopeContext) ([]domain.Collection, error) {
	return m.collections, m.err
}

func (m *mockCollectionService) Update(_ context.Context, _ *domain.Collection) error {
	return m.err
}

func (m *mockCollectionService) Delete(_ context.Context, _ string) error {
	return m.err
}
