package ranking

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/keywords"
)

// Crosslink scoring constants.
const (
	TagOverlapWeight = 0.25
	MaxTagOverlap    = 0.5
)

// CrosslinkOptions tunes DeriveCrosslinks.
type CrosslinkOptions struct {
	Threshold float64

	// Limit caps the number of crosslinks. Zero means unlimited.
	Limit int

	// BaseFactor scales min(1, score) into the crosslink's base score.
	BaseFactor float64
}

// CrosslinkScore rates how related x is to p:
//
//	|kw(x) ∩ kw(p)| / |kw(x)| + min(0.5, sharedTags * 0.25)
func CrosslinkScore(x, p *domain.Chunk) float64 {
	xk := normalizedKeywords(x)
	score := 0.0
	if len(xk) > 0 {
		pk := normalizedKeywords(p)
		shared := 0
		for k := range xk {
			if pk[k] {
				shared++
			}
		}
		score = float64(shared) / float64(len(xk))
	}

	sharedTags := 0
	for _, t := range x.Tags {
		if p.HasTag(t) {
			sharedTags++
		}
	}
	tagScore := float64(sharedTags) * TagOverlapWeight
	if tagScore > MaxTagOverlap {
		tagScore = MaxTagOverlap
	}
	return score + tagScore
}

// DeriveCrosslinks proposes inferred candidates related to the selected set.
// Each unselected, enabled chunk is scored against every selected chunk and
// keeps its best score; those meeting the threshold are returned best first,
// hash ascending on ties.
func DeriveCrosslinks(selected []domain.Candidate, corpus *Corpus, opts CrosslinkOptions) []domain.Candidate {
	if len(selected) == 0 {
		return nil
	}
	inSet := make(map[int64]bool, len(selected))
	var sources []*domain.Chunk
	var sourceHashes []int64
	for _, c := range selected {
		inSet[c.Hash] = true
		if ch, ok := corpus.Get(c.Hash); ok {
			sources = append(sources, ch)
			sourceHashes = append(sourceHashes, c.Hash)
		}
	}

	type scored struct {
		hash  int64
		score float64
		from  int64
	}
	var found []scored
	for _, h := range corpus.Hashes() {
		if inSet[h] || !corpus.Eligible(h) {
			continue
		}
		x, _ := corpus.Get(h)
		best, from := 0.0, int64(0)
		for i, p := range sources {
			if s := CrosslinkScore(x, p); s > best {
				best, from = s, sourceHashes[i]
			}
		}
		if best > 0 && best >= opts.Threshold {
			found = append(found, scored{hash: h, score: best, from: from})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].score != found[j].score {
			return found[i].score > found[j].score
		}
		return found[i].hash < found[j].hash
	})
	if opts.Limit > 0 && len(found) > opts.Limit {
		found = found[:opts.Limit]
	}

	out := make([]domain.Candidate, 0, len(found))
	for _, f := range found {
		cand, _ := corpus.Candidate(f.hash, clamp01(f.score)*opts.BaseFactor, true)
		cand.Note(domain.OriginCrosslink, fmt.Sprintf("from %d score=%.2f", f.from, f.score))
		out = append(out, cand)
	}
	return out
}

func normalizedKeywords(c *domain.Chunk) map[string]bool {
	active := c.ActiveKeywords()
	out := make(map[string]bool, len(active))
	for _, kw := range active {
		if n := keywords.Normalize(kw); n != "" {
			out[n] = true
		}
	}
	return out
}
