package driving

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// IngestReport summarises one ingestion pass.
type IngestReport struct {
	BatchID      string
	Chunks       int
	Indexed      int
	Skipped      int
	SoftLinks    int
	ForceLinks   int
	DroppedEmpty int
	Duplicates   int
}

// IngestionService enriches, stores and indexes pre-split chunks.
type IngestionService interface {
	// Ingest runs one batch through the pipeline, persists it and indexes it.
	Ingest(ctx context.Context, collectionID string, chunks []domain.Chunk) (IngestReport, error)

	// RegenerateKeywords rebuilds the derived keyword fields of one chunk.
	RegenerateKeywords(ctx context.Context, collectionID string, hash int64) (*domain.Chunk, error)

	// RegenerateCollection rebuilds the derived keyword fields of every chunk.
	RegenerateCollection(ctx context.Context, collectionID string) (int, error)
}
