package driving

import (
	"context"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// CollectionService manages collections.
type CollectionService interface {
	// Create stores a new collection. Returns ErrAlreadyExists on ID clash.
	Create(ctx context.Context, coll *domain.Collection) error

	// Get retrieves a collection with its chunks loaded.
	Get(ctx context.Context, id string) (*domain.Collection, error)

	// List returns collection metadata visible from scope.
	List(ctx context.Context, scope domain.ScopeContext) ([]domain.Collection, error)

	// Update replaces collection metadata.
	Update(ctx context.Context, coll *domain.Collection) error

	// Delete removes a collection, its chunks and its vector index entries.
	Delete(ctx context.Context, id string) error
}
