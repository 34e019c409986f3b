// Package local provides an in-process VectorService for offline use and
// tests. Texts are indexed as stemmed term-frequency vectors and queried by
// cosine similarity.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/keywords"
)

// Ensure Service implements the interface.
var _ driven.VectorService = (*Service)(nil)

// IndexFileName is the snapshot file inside the data directory.
const IndexFileName = "vectors.json"

// termVector is a sparse stem to weight vector with its cached norm.
type termVector struct {
	Terms map[string]float64 `json:"terms"`
	Norm  float64            `json:"norm"`
}

// Service is a lexical stand-in for an embedding-backed vector service.
// When created with a path, every write is persisted to a JSON snapshot.
type Service struct {
	mu      sync.RWMutex
	path    string
	indexes map[string]map[int64]termVector
}

// NewService creates an in-memory service.
func NewService() *Service {
	return &Service{indexes: make(map[string]map[int64]termVector)}
}

// Open creates a service persisted under dataDir, loading any snapshot.
func Open(dataDir string) (*Service, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	s := NewService()
	s.path = filepath.Join(dataDir, IndexFileName)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading vector index: %w", err)
	}
	if err := json.Unmarshal(data, &s.indexes); err != nil {
		return nil, fmt.Errorf("parsing vector index: %w", err)
	}
	if s.indexes == nil {
		s.indexes = make(map[string]map[int64]termVector)
	}
	return s, nil
}

// Query returns up to topK hits with cosine similarity of at least threshold,
// best first with hash as tie-break.
func (s *Service) Query(
	ctx context.Context, collectionID, text string, topK int, threshold float64,
) ([]driven.VectorHit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := vectorize(text)
	if q.Norm == 0 || topK <= 0 {
		return []driven.VectorHit{}, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.VectorHit, 0)
	for h, v := range s.indexes[collectionID] {
		score := cosine(q, v)
		if score <= 0 || score < threshold {
			continue
		}
		hits = append(hits, driven.VectorHit{Hash: h, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Hash < hits[j].Hash
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Insert indexes items, replacing existing hashes.
func (s *Service) Insert(ctx context.Context, collectionID string, items []driven.VectorItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[collectionID]
	if !ok {
		idx = make(map[int64]termVector)
		s.indexes[collectionID] = idx
	}
	for _, it := range items {
		idx[it.Hash] = vectorize(it.Text)
	}
	return s.persist()
}

// Delete removes hashes. Unknown hashes are ignored.
func (s *Service) Delete(ctx context.Context, collectionID string, hashes []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexes[collectionID]
	for _, h := range hashes {
		delete(idx, h)
	}
	if len(idx) == 0 {
		delete(s.indexes, collectionID)
	}
	return s.persist()
}

// ListHashes returns every indexed hash in ascending order.
func (s *Service) ListHashes(ctx context.Context, collectionID string) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]int64, 0, len(s.indexes[collectionID]))
	for h := range s.indexes[collectionID] {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// Metric reports similarity: scores are cosines in [0,1].
func (s *Service) Metric() domain.ScoreMetric {
	return domain.ScoreMetricSimilarity
}

// persist writes the snapshot. Caller holds the write lock.
func (s *Service) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.indexes)
	if err != nil {
		return fmt.Errorf("encoding vector index: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing vector index: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing vector index: %w", err)
	}
	return nil
}

func vectorize(text string) termVector {
	terms := make(map[string]float64)
	for _, w := range keywords.ContentWords(text) {
		terms[keywords.Stem(w)]++
	}
	var sum float64
	for _, v := range terms {
		sum += v * v
	}
	return termVector{Terms: terms, Norm: math.Sqrt(sum)}
}

func cosine(a, b termVector) float64 {
	if a.Norm == 0 || b.Norm == 0 {
		return 0
	}
	small, large := a.Terms, b.Terms
	if len(small) > len(large) {
		small, large = large, small
	}
	var dot float64
	for t, v := range small {
		dot += v * large[t]
	}
	return dot / (a.Norm * b.Norm)
}
