package ranking

import (
	"sort"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// Corpus is the merged hash to chunk map of every collection touched by one
// query. Hashes are unique only within a collection, so each collection's
// copy is kept. The merged view of a hash resolves to the first collection
// added until a vector hit claims another collection's copy.
type Corpus struct {
	byCollection map[string]map[int64]*domain.Chunk
	chunks       map[int64]*domain.Chunk
	owner        map[int64]string
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		byCollection: make(map[string]map[int64]*domain.Chunk),
		chunks:       make(map[int64]*domain.Chunk),
		owner:        make(map[int64]string),
	}
}

// Add merges a collection's chunks. Hashes already in the merged view keep
// their current copy.
func (c *Corpus) Add(collectionID string, chunks map[int64]*domain.Chunk) {
	own, ok := c.byCollection[collectionID]
	if !ok {
		own = make(map[int64]*domain.Chunk, len(chunks))
		c.byCollection[collectionID] = own
	}
	for h, ch := range chunks {
		if ch == nil {
			continue
		}
		own[h] = ch
		if _, ok := c.chunks[h]; ok {
			continue
		}
		c.chunks[h] = ch
		c.owner[h] = collectionID
	}
}

// Lookup returns one collection's copy of a hash.
func (c *Corpus) Lookup(collectionID string, hash int64) (*domain.Chunk, bool) {
	ch, ok := c.byCollection[collectionID][hash]
	return ch, ok
}

// Claim makes a collection's copy the merged view of a hash. It reports
// false when that collection holds no such chunk.
func (c *Corpus) Claim(collectionID string, hash int64) bool {
	ch, ok := c.Lookup(collectionID, hash)
	if !ok {
		return false
	}
	c.chunks[hash] = ch
	c.owner[hash] = collectionID
	return true
}

// Get returns the chunk for a hash.
func (c *Corpus) Get(hash int64) (*domain.Chunk, bool) {
	ch, ok := c.chunks[hash]
	return ch, ok
}

// Owner returns the collection the chunk was taken from.
func (c *Corpus) Owner(hash int64) string {
	return c.owner[hash]
}

// Len returns the number of distinct hashes.
func (c *Corpus) Len() int {
	return len(c.chunks)
}

// Hashes returns every hash in ascending order.
func (c *Corpus) Hashes() []int64 {
	out := make([]int64, 0, len(c.chunks))
	for h := range c.chunks {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Candidate builds a candidate for a hash in the corpus.
func (c *Corpus) Candidate(hash int64, base float64, inferred bool) (domain.Candidate, bool) {
	ch, ok := c.chunks[hash]
	if !ok {
		return domain.Candidate{}, false
	}
	return domain.Candidate{
		Hash:         hash,
		CollectionID: c.owner[hash],
		Text:         ch.Text,
		BaseScore:    base,
		Inferred:     inferred,
	}, true
}

// Eligible reports whether a hash exists and is not disabled.
func (c *Corpus) Eligible(hash int64) bool {
	ch, ok := c.chunks[hash]
	return ok && !ch.Disabled
}
