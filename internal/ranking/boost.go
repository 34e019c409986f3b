package ranking

import (
	"fmt"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/keywords"
)

// CustomKeywordFloor is the minimum weight of a user-added keyword match.
const CustomKeywordFloor = 100

// Match is one keyword or pattern that fired for a chunk.
type Match struct {
	Origin domain.Origin `json:"origin"`
	Value  string        `json:"value"`
	Weight int           `json:"weight"`
}

// Boost is the keyword score of one chunk against one query.
// Matches is always populated, even when Value is zero.
type Boost struct {
	Value   int     `json:"value"`
	Matches []Match `json:"matches"`
}

// Note appends every match to a candidate's provenance.
func (b Boost) Note(c *domain.Candidate) {
	for _, m := range b.Matches {
		c.Note(m.Origin, fmt.Sprintf("%s (+%d)", m.Value, m.Weight))
	}
}

// BoostCalculator scores chunks against a query's keywords and raw text.
// It is safe for concurrent use.
type BoostCalculator struct {
	index PriorityIndex
	cache *keywords.RegexCache
}

// PriorityIndex is the subset of keywords.PriorityIndex the calculator uses.
type PriorityIndex interface {
	LookupNormalized(key string) (int, bool)
}

// NewBoostCalculator creates a calculator. A nil cache gets a private one.
func NewBoostCalculator(index PriorityIndex, cache *keywords.RegexCache) *BoostCalculator {
	if cache == nil {
		cache = keywords.NewRegexCache()
	}
	return &BoostCalculator{index: index, cache: cache}
}

// Boost scores one chunk.
//
// Every active keyword (system and custom, minus disabled) whose normalised
// form matches the query adds its custom weight, else its priority index
// weight, else keywords.DefaultKeywordWeight; user-added keywords add at
// least CustomKeywordFloor. Every stored or custom regex that matches the
// raw query adds its priority. Malformed patterns are skipped.
func (b *BoostCalculator) Boost(c *domain.Chunk, q keywords.QueryKeywords, rawQuery string) Boost {
	out := Boost{Matches: []Match{}}
	if c == nil {
		return out
	}

	for _, kw := range c.ActiveKeywords() {
		if !q.Matches(kw) {
			continue
		}
		norm := keywords.Normalize(kw)
		w, ok := c.CustomWeights[norm]
		if !ok && b.index != nil {
			w, ok = b.index.LookupNormalized(norm)
		}
		if !ok {
			w = keywords.DefaultKeywordWeight
		}
		if c.IsCustomKeyword(kw) && w < CustomKeywordFloor {
			w = CustomKeywordFloor
		}
		out.Value += w
		out.Matches = append(out.Matches, Match{Origin: domain.OriginKeyword, Value: kw, Weight: w})
	}

	if rawQuery == "" {
		return out
	}
	for _, r := range c.AllRegex() {
		re, err := b.cache.Compile(r)
		if err != nil {
			continue
		}
		if !re.MatchString(rawQuery) {
			continue
		}
		w := r.EffectivePriority()
		out.Value += w
		out.Matches = append(out.Matches, Match{Origin: domain.OriginRegex, Value: r.Pattern, Weight: w})
	}
	return out
}

// ApplyBoosts scores every candidate in place and records provenance.
func (b *BoostCalculator) ApplyBoosts(cands []domain.Candidate, corpus *Corpus, q keywords.QueryKeywords, rawQuery string) {
	for i := range cands {
		ch, ok := corpus.Get(cands[i].Hash)
		if !ok {
			continue
		}
		boost := b.Boost(ch, q, rawQuery)
		cands[i].KeywordBoost = boost.Value
		boost.Note(&cands[i])
	}
}

// ApplyGroupBoost adds bonus to every candidate whose chunk group has a
// keyword matching the query. Members that require a group member only
// qualify when another candidate belongs to the same group.
func ApplyGroupBoost(cands []domain.Candidate, corpus *Corpus, q keywords.QueryKeywords, bonus int) {
	if bonus <= 0 {
		return
	}
	members := make(map[string]int)
	for _, c := range cands {
		if ch, ok := corpus.Get(c.Hash); ok && ch.ChunkGroup != nil && ch.ChunkGroup.Name != "" {
			members[ch.ChunkGroup.Name]++
		}
	}
	for i := range cands {
		ch, ok := corpus.Get(cands[i].Hash)
		if !ok || ch.ChunkGroup == nil || ch.ChunkGroup.Name == "" {
			continue
		}
		g := ch.ChunkGroup
		if g.RequiresGroupMember && members[g.Name] < 2 {
			continue
		}
		for _, kw := range g.GroupKeywords {
			if q.Matches(kw) {
				cands[i].KeywordBoost += bonus
				cands[i].Note(domain.OriginGroup, fmt.Sprintf("%s via %s (+%d)", g.Name, kw, bonus))
				break
			}
		}
	}
}
