package driven

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// VectorService is the external vector-similarity service.
// Embedding is the service's concern: it accepts and queries by text.
type VectorService interface {
	// Query returns up to topK hits for text within one collection.
	// threshold is expressed in the service's native metric.
	Query(ctx context.Context, collectionID, text string, topK int, threshold float64) ([]VectorHit, error)

	// Insert indexes items into a collection. Existing hashes are replaced.
	Insert(ctx context.Context, collectionID string, items []VectorItem) error

	// Delete removes hashes from a collection.
	Delete(ctx context.Context, collectionID string, hashes []int64) error

	// ListHashes returns every hash indexed for a collection.
	ListHashes(ctx context.Context, collectionID string) ([]int64, error)

	// Metric reports the native score semantics of Query results.
	Metric() domain.ScoreMetric
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Hash is the matched chunk.
	Hash int64 `json:"hash"`

	// Score is the native score. See VectorService.Metric.
	Score float64 `json:"score"`
}

// VectorItem is a chunk text to index.
type VectorItem struct {
	Hash int64  `json:"hash"`
	Text string `json:"text"`
}
