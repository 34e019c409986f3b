package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
	"github.com/custodia-labs/loreweave/internal/logger"
)

// Ensure CollectionService implements the interface.
var _ driving.CollectionService = (*CollectionService)(nil)

// CollectionService manages collection metadata and lifecycle.
type CollectionService struct {
	store  driven.CollectionStore
	vector driven.VectorService
}

// NewCollectionService creates a collection service. vector may be nil, in
// which case deleting a collection leaves no index to clean up.
func NewCollectionService(store driven.CollectionStore, vector driven.VectorService) *CollectionService {
	return &CollectionService{store: store, vector: vector}
}

// Create stores a new collection.
func (s *CollectionService) Create(ctx context.Context, coll *domain.Collection) error {
	if err := validateCollection(coll); err != nil {
		return err
	}

	_, err := s.store.GetCollection(ctx, coll.ID)
	if err == nil {
		return fmt.Errorf("collection %s: %w", coll.ID, domain.ErrAlreadyExists)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("get collection: %w", err)
	}

	if err := s.store.SaveCollection(ctx, coll); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	logger.Info("Created collection %s (%s)", coll.ID, coll.Scope.Key())
	return nil
}

// Get retrieves a collection with its chunks loaded.
func (s *CollectionService) Get(ctx context.Context, id string) (*domain.Collection, error) {
	coll, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", id, err)
	}
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chunks of %s: %w", id, err)
	}
	coll.Chunks = chunks
	return coll, nil
}

// List returns collection metadata visible from scope, ordered by ID.
func (s *CollectionService) List(ctx context.Context, scope domain.ScopeContext) ([]domain.Collection, error) {
	colls, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	visible := make([]domain.Collection, 0, len(colls))
	for i := range colls {
		if scope.Sees(&colls[i]) {
			visible = append(visible, colls[i])
		}
	}
	return visible, nil
}

// Update replaces collection metadata. Chunks are untouched.
func (s *CollectionService) Update(ctx context.Context, coll *domain.Collection) error {
	if err := validateCollection(coll); err != nil {
		return err
	}
	if _, err := s.store.GetCollection(ctx, coll.ID); err != nil {
		return fmt.Errorf("get collection %s: %w", coll.ID, err)
	}
	if err := s.store.SaveCollection(ctx, coll); err != nil {
		return fmt.Errorf("save collection: %w", err)
	}
	return nil
}

// Delete removes a collection, its chunks and its vector index entries.
// The index is cleared first so a failure leaves the stored chunks in place
// and the delete can be retried.
func (s *CollectionService) Delete(ctx context.Context, id string) error {
	if _, err := s.store.GetCollection(ctx, id); err != nil {
		return fmt.Errorf("get collection %s: %w", id, err)
	}

	if s.vector != nil {
		hashes, err := s.vector.ListHashes(ctx, id)
		if err != nil {
			return fmt.Errorf("list indexed hashes: %w", err)
		}
		if len(hashes) > 0 {
			if err := s.vector.Delete(ctx, id, hashes); err != nil {
				return fmt.Errorf("delete indexed hashes: %w", err)
			}
		}
		logger.Debug("Removed %d indexed hashes of %s", len(hashes), id)
	}

	if err := s.store.DeleteCollection(ctx, id); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	logger.Info("Deleted collection %s", id)
	return nil
}

func validateCollection(coll *domain.Collection) error {
	if coll == nil {
		return fmt.Errorf("%w: collection is nil", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(coll.ID) == "" {
		return fmt.Errorf("%w: collection ID is required", domain.ErrInvalidInput)
	}
	if coll.Scope.Kind == "" {
		coll.Scope = domain.GlobalScope()
	}
	if !coll.Scope.Kind.IsValid() {
		return fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, coll.Scope.Kind)
	}
	if coll.Scope.Kind != domain.ScopeGlobal && coll.Scope.Owner == "" {
		return fmt.Errorf("%w: %s scope needs an owner", domain.ErrInvalidInput, coll.Scope.Kind)
	}
	if coll.Conditions != nil {
		if l := coll.Conditions.Logic; l != "" && l != domain.ConditionAnd && l != domain.ConditionOr {
			return fmt.Errorf("%w: unknown condition logic %q", domain.ErrInvalidInput, l)
		}
	}
	return nil
}
