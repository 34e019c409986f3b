package ranking

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/keywords"
)

// Fallback scores every unselected, enabled chunk by keyword boost and
// returns the top limit with a positive boost, boost descending and hash
// ascending on ties. Fallback candidates carry a zero base score; their
// boost is recorded on the candidate.
func Fallback(q keywords.QueryKeywords, rawQuery string, corpus *Corpus, exclude map[int64]bool, limit int, calc *BoostCalculator) []domain.Candidate {
	if limit <= 0 {
		return nil
	}

	type scored struct {
		hash  int64
		boost Boost
	}
	var found []scored
	for _, h := range corpus.Hashes() {
		if exclude[h] || !corpus.Eligible(h) {
			continue
		}
		ch, _ := corpus.Get(h)
		b := calc.Boost(ch, q, rawQuery)
		if b.Value <= 0 {
			continue
		}
		found = append(found, scored{hash: h, boost: b})
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].boost.Value != found[j].boost.Value {
			return found[i].boost.Value > found[j].boost.Value
		}
		return found[i].hash < found[j].hash
	})
	if len(found) > limit {
		found = found[:limit]
	}

	out := make([]domain.Candidate, 0, len(found))
	for _, f := range found {
		cand, _ := corpus.Candidate(f.hash, 0, true)
		cand.KeywordBoost = f.boost.Value
		cand.Note(domain.OriginFallback, fmt.Sprintf("boost=%d", f.boost.Value))
		out = append(out, cand)
	}
	return out
}
