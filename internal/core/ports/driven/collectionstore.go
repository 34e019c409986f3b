package driven

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// CollectionStore persists collections and their chunks.
// Backed by SQLite for metadata storage.
type CollectionStore interface {
	// SaveCollection stores or updates collection metadata. Chunks are not written.
	SaveCollection(ctx context.Context, coll *domain.Collection) error

	// GetCollection retrieves collection metadata by ID. Chunks are not loaded.
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)

	// ListCollections returns metadata for every collection, ordered by ID.
	ListCollections(ctx context.Context) ([]domain.Collection, error)

	// DeleteCollection removes a collection and its chunks.
	DeleteCollection(ctx context.Context, id string) error

	// SaveChunks upserts chunks into a collection by hash.
	SaveChunks(ctx context.Context, collectionID string, chunks []domain.Chunk) error

	// GetChunks returns the full hash to chunk map of a collection.
	GetChunks(ctx context.Context, collectionID string) (map[int64]*domain.Chunk, error)

	// GetChunk retrieves one chunk.
	GetChunk(ctx context.Context, collectionID string, hash int64) (*domain.Chunk, error)

	// DeleteChunks removes chunks by hash.
	DeleteChunks(ctx context.Context, collectionID string, hashes []int64) error
}
