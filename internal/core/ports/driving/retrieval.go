package driving

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// RetrievalService ranks chunks for a live query.
type RetrievalService interface {
	// Retrieve returns at most GlobalTopK ranked chunks for query.
	// Per-collection failures degrade to partial results, not errors.
	Retrieve(ctx context.Context, query string, scope domain.ScopeContext) ([]domain.RankedResult, error)
}
