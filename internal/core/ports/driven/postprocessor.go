package driven

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// ChunkProcessor enriches a batch of chunks during ingestion.
// Processors are chained in a pipeline (e.g., keyword synthesis, auto-linking).
type ChunkProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process receives the batch and returns it enriched.
	// coll carries the collection's already stored chunks; it is read-only.
	Process(ctx context.Context, coll *domain.Collection, batch []domain.Chunk) ([]domain.Chunk, error)
}

// ChunkPipeline chains multiple ChunkProcessors.
type ChunkPipeline interface {
	// Process runs the batch through all processors in order.
	Process(ctx context.Context, coll *domain.Collection, batch []domain.Chunk) ([]domain.Chunk, error)
}
