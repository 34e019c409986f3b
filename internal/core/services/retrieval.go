package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
	"github.com/custodia-labs/loreweave/internal/keywords"
	"github.com/custodia-labs/loreweave/internal/logger"
	"github.com/custodia-labs/loreweave/internal/ranking"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// collectionResult is what one fan-out branch brings back.
type collectionResult struct {
	collectionID string
	chunks       map[int64]*domain.Chunk
	hits         []driven.VectorHit
	ok           bool
}

// RetrievalService ranks chunks from every activated collection for a query.
//
// Stages run in a fixed order: activation gate, concurrent fan-out, merge
// and dedup, crosslink expansion, keyword fallback, link resolution,
// inclusion filtering, score fusion and sort, then top-K. Only the fan-out
// is concurrent; every later stage works on the merged set.
type RetrievalService struct {
	store  driven.CollectionStore
	vector driven.VectorService
	gate   *ranking.ActivationGate
	calc   *ranking.BoostCalculator

	mu       sync.RWMutex
	settings domain.RetrievalSettings
}

// NewRetrievalService creates a retrieval service. index and cache may be
// zero/nil, in which case the default priority index and a fresh regex
// cache are used.
func NewRetrievalService(
	store driven.CollectionStore,
	vector driven.VectorService,
	index keywords.PriorityIndex,
	cache *keywords.RegexCache,
	settings domain.RetrievalSettings,
) *RetrievalService {
	if index.Len() == 0 {
		index = keywords.DefaultPriorityIndex()
	}
	if cache == nil {
		cache = keywords.NewRegexCache()
	}
	return &RetrievalService{
		store:    store,
		vector:   vector,
		gate:     ranking.NewActivationGate(cache),
		calc:     ranking.NewBoostCalculator(index, cache),
		settings: settings,
	}
}

// UpdateSettings swaps the tuning knobs used by subsequent queries.
// Queries already running keep the settings they started with.
func (s *RetrievalService) UpdateSettings(settings domain.RetrievalSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
}

// Settings returns the current tuning knobs.
func (s *RetrievalService) Settings() domain.RetrievalSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Retrieve returns at most GlobalTopK ranked chunks for query.
func (s *RetrievalService) Retrieve(
	ctx context.Context, query string, scope domain.ScopeContext,
) ([]domain.RankedResult, error) {
	logger.Section("Retrieval")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("%v, returning no results", domain.ErrEmptyQuery)
		return []domain.RankedResult{}, nil
	}

	settings := s.Settings()

	colls, err := s.store.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	active := s.activate(colls, query, scope)
	if len(active) == 0 {
		logger.Debug("No activated collections, returning no results")
		return []domain.RankedResult{}, nil
	}

	fetched := s.fanOut(ctx, active, query, settings)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	corpus := ranking.NewCorpus()
	for _, r := range fetched {
		if r.ok {
			corpus.Add(r.collectionID, r.chunks)
		}
	}

	cands := s.mergePrimary(fetched, corpus, settings)
	primaryCount := len(cands)
	logger.Stage("Primary", primaryCount)

	q := keywords.ExtractQuery(query)
	logger.Debug("Query keywords: %v", q.Strings())

	if settings.Crosslink.Enabled && primaryCount > 0 {
		xl := ranking.DeriveCrosslinks(cands, corpus, ranking.CrosslinkOptions{
			Threshold:  settings.Crosslink.Threshold,
			Limit:      settings.Crosslink.Limit,
			BaseFactor: settings.Crosslink.BaseFactor,
		})
		cands = append(cands, xl...)
		logger.Stage("Crosslinks", len(xl))
	}

	if settings.Fallback.Enabled && primaryCount < settings.Fallback.MinResults {
		exclude := make(map[int64]bool, len(cands))
		for _, c := range cands {
			exclude[c.Hash] = true
		}
		fb := ranking.Fallback(q, query, corpus, exclude, settings.Fallback.Limit, s.calc)
		cands = append(cands, fb...)
		logger.Stage("Fallback", len(fb))
	}

	cands, soft := ranking.ResolveLinks(cands, corpus, settings.Links.ForceDiscount)
	logger.Stage("Links", len(cands))
	logger.Debug("Soft-linked targets: %d", len(soft))

	cands = ranking.FilterInclusionGroups(cands, corpus)
	logger.Stage("Inclusion groups", len(cands))

	s.calc.ApplyBoosts(cands, corpus, q, query)
	ranking.ApplyGroupBoost(cands, corpus, q, settings.GroupBoost)
	cands = ranking.Fuse(cands, corpus, ranking.FuseOptions{SoftBoost: settings.Links.SoftBoost})
	ranking.Sort(cands, settings.Fallback.Priority)

	cands = ranking.TopK(cands, corpus, settings.GlobalTopK)
	logger.Stage("Top-K", len(cands))

	results := make([]domain.RankedResult, 0, len(cands))
	for i := range cands {
		results = append(results, cands[i].ToResult())
		logger.Debug("#%d hash=%d score=%.3f %s", i+1, cands[i].Hash, cands[i].FinalScore, cands[i].Provenance)
	}

	logger.Info("Retrieved %d chunks from %d collections", len(results), len(active))
	return results, nil
}

// activate returns the visible collections whose gate opens, in ID order.
func (s *RetrievalService) activate(
	colls []domain.Collection, query string, scope domain.ScopeContext,
) []domain.Collection {
	var active []domain.Collection
	for i := range colls {
		coll := &colls[i]
		if !scope.Sees(coll) {
			continue
		}
		if ok, reason := s.gate.Activate(coll, query, scope); ok {
			logger.Debug("Collection %s active: %s", coll.ID, reason)
			active = append(active, *coll)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active
}

// fanOut queries every active collection with bounded concurrency. A
// failing collection is logged and skipped; it never fails the query. Each
// branch writes only its own slot, so results need no locking.
func (s *RetrievalService) fanOut(
	ctx context.Context, active []domain.Collection, query string, settings domain.RetrievalSettings,
) []collectionResult {
	metric := s.vector.Metric()
	threshold := ranking.NativeThreshold(metric, settings.VectorThreshold)

	results := make([]collectionResult, len(active))

	var g errgroup.Group
	g.SetLimit(max(settings.MaxConcurrency, 1))

	for i := range active {
		id := active[i].ID
		results[i].collectionID = id
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			chunks, err := s.store.GetChunks(ctx, id)
			if err != nil {
				logger.Warn("Skipping collection %s: %v", id, fmt.Errorf("%w: load chunks: %w", domain.ErrCollectionUnavailable, err))
				return nil
			}

			hits, err := s.vector.Query(ctx, id, query, settings.CollectionTopK, threshold)
			if err != nil {
				logger.Warn("Skipping collection %s: %v", id, fmt.Errorf("%w: %w", domain.ErrCollectionUnavailable, err))
				return nil
			}

			results[i].chunks = chunks
			results[i].hits = hits
			results[i].ok = true
			logger.Debug("Collection %s: %d hits, %d chunks", id, len(hits), len(chunks))
			return nil
		})
	}

	// Branches never return errors.
	_ = g.Wait()
	return results
}

// mergePrimary turns vector hits into candidates. Scores are normalised to
// higher-is-better, filtered by the threshold, deduplicated by hash keeping
// the best score, and sorted by base score with hash as tie-break. Each hit
// is resolved against its own collection's chunk; hits with no chunk, or
// pointing at a disabled chunk, are dropped. The winning collection's copy
// becomes the corpus view of the hash, and on equal scores the earlier
// collection by ID wins.
func (s *RetrievalService) mergePrimary(
	fetched []collectionResult, corpus *ranking.Corpus, settings domain.RetrievalSettings,
) []domain.Candidate {
	metric := s.vector.Metric()

	best := make(map[int64]float64)
	from := make(map[int64]string)
	for _, r := range fetched {
		if !r.ok {
			continue
		}
		for _, hit := range r.hits {
			score := ranking.NormalizeScore(metric, hit.Score)
			if score < settings.VectorThreshold {
				continue
			}
			ch, ok := corpus.Lookup(r.collectionID, hit.Hash)
			if !ok {
				logger.Debug("Dropping hit %d from %s: %v", hit.Hash, r.collectionID, domain.ErrMissingChunkMetadata)
				continue
			}
			if ch.Disabled {
				continue
			}
			if prev, seen := best[hit.Hash]; !seen || score > prev {
				best[hit.Hash] = score
				from[hit.Hash] = r.collectionID
			}
		}
	}

	cands := make([]domain.Candidate, 0, len(best))
	for h, score := range best {
		corpus.Claim(from[h], h)
		cand, _ := corpus.Candidate(h, score, false)
		cand.Note(domain.OriginVector, fmt.Sprintf("%s score=%.3f", from[h], score))
		cands = append(cands, cand)
	}
	ranking.SortByBase(cands)
	return cands
}
