package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
)

// Ensure CollectionStore implements the interface.
var _ driven.CollectionStore = (*CollectionStore)(nil)

// CollectionStore is an in-memory implementation of driven.CollectionStore.
// Values are copied in and out so callers never share state with the store.
type CollectionStore struct {
	mu          sync.RWMutex
	collections map[string]domain.Collection
	chunks      map[string]map[int64]domain.Chunk
}

// NewCollectionStore creates a new in-memory collection store.
func NewCollectionStore() *CollectionStore {
	return &CollectionStore{
		collections: make(map[string]domain.Collection),
		chunks:      make(map[string]map[int64]domain.Chunk),
	}
}

// SaveCollection stores or updates collection metadata.
func (s *CollectionStore) SaveCollection(_ context.Context, coll *domain.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta := *coll
	meta.Chunks = nil
	meta.ActivationTriggers = append([]string(nil), coll.ActivationTriggers...)
	s.collections[coll.ID] = meta
	return nil
}

// GetCollection retrieves collection metadata by ID.
func (s *CollectionStore) GetCollection(_ context.Context, id string) (*domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	coll, ok := s.collections[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &coll, nil
}

// ListCollections returns every collection ordered by ID.
func (s *CollectionStore) ListCollections(_ context.Context) ([]domain.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Collection, 0, len(s.collections))
	for _, coll := range s.collections {
		result = append(result, coll)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// DeleteCollection removes a collection and its chunks.
func (s *CollectionStore) DeleteCollection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.collections, id)
	delete(s.chunks, id)
	return nil
}

// SaveChunks upserts chunks by hash.
func (s *CollectionStore) SaveChunks(_ context.Context, collectionID string, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[collectionID]; !ok {
		return domain.ErrNotFound
	}
	bucket, ok := s.chunks[collectionID]
	if !ok {
		bucket = make(map[int64]domain.Chunk, len(chunks))
		s.chunks[collectionID] = bucket
	}
	for i := range chunks {
		bucket[chunks[i].Hash] = chunks[i].Clone()
	}
	return nil
}

// GetChunks returns every chunk of a collection keyed by hash.
func (s *CollectionStore) GetChunks(_ context.Context, collectionID string) (map[int64]*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.collections[collectionID]; !ok {
		return nil, domain.ErrNotFound
	}
	bucket := s.chunks[collectionID]
	result := make(map[int64]*domain.Chunk, len(bucket))
	for hash, chunk := range bucket {
		c := chunk.Clone()
		result[hash] = &c
	}
	return result, nil
}

// GetChunk retrieves a single chunk.
func (s *CollectionStore) GetChunk(_ context.Context, collectionID string, hash int64) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[collectionID][hash]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c := chunk.Clone()
	return &c, nil
}

// DeleteChunks removes chunks by hash. Unknown hashes are ignored.
func (s *CollectionStore) DeleteChunks(_ context.Context, collectionID string, hashes []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket := s.chunks[collectionID]
	for _, h := range hashes {
		delete(bucket, h)
	}
	return nil
}
