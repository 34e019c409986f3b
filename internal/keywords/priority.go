package keywords

import "sort"

// DefaultKeywordWeight is used by the boost calculator when a keyword has
// neither a custom weight nor a priority index entry.
const DefaultKeywordWeight = 50

// PriorityIndex maps a normalised keyword to an importance weight.
// It is immutable once built and safe for concurrent use.
type PriorityIndex struct {
	weights map[string]int
}

// NewPriorityIndex builds an index. Keys are normalised; on collision the
// higher weight wins.
func NewPriorityIndex(weights map[string]int) PriorityIndex {
	idx := PriorityIndex{weights: make(map[string]int, len(weights))}
	for kw, w := range weights {
		key := Normalize(kw)
		if key == "" {
			continue
		}
		if cur, ok := idx.weights[key]; !ok || w > cur {
			idx.weights[key] = w
		}
	}
	return idx
}

// Lookup returns the weight for a keyword in any surface form.
func (p PriorityIndex) Lookup(kw string) (int, bool) {
	if p.weights == nil {
		return 0, false
	}
	w, ok := p.weights[Normalize(kw)]
	return w, ok
}

// LookupNormalized is Lookup for keys already passed through Normalize.
func (p PriorityIndex) LookupNormalized(key string) (int, bool) {
	w, ok := p.weights[key]
	return w, ok
}

// Len returns the number of entries.
func (p PriorityIndex) Len() int {
	return len(p.weights)
}

// Keys returns the normalised keys in sorted order.
func (p PriorityIndex) Keys() []string {
	out := make([]string, 0, len(p.weights))
	for k := range p.weights {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of the index with extra entries merged in.
func (p PriorityIndex) With(extra map[string]int) PriorityIndex {
	merged := make(map[string]int, len(p.weights)+len(extra))
	for k, v := range p.weights {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return NewPriorityIndex(merged)
}

// DefaultPriorityIndex returns the built-in weights for lore vocabulary.
// Entity and world-building nouns rank above generic descriptors.
func DefaultPriorityIndex() PriorityIndex {
	return NewPriorityIndex(map[string]int{
		// Magic
		"magic": 120, "spell": 120, "ritual": 110, "curse": 110, "enchantment": 110,
		"artifact": 120, "relic": 120, "rune": 100, "mana": 90,
		// Creatures
		"dragon": 120, "demon": 110, "spirit": 100, "undead": 100, "beast": 90,
		// Places
		"kingdom": 100, "empire": 100, "city": 80, "castle": 90, "temple": 90,
		"village": 70, "forest": 70, "mountain": 70, "river": 60, "dungeon": 90,
		// Society
		"faction": 100, "guild": 100, "order": 80, "church": 90, "cult": 110,
		"king": 100, "queen": 100, "emperor": 100, "prince": 90, "princess": 90,
		"noble": 80, "war": 100, "treaty": 90, "rebellion": 100,
		// History
		"history": 80, "legend": 90, "prophecy": 120, "myth": 90, "ancient": 70,
		// Relationships
		"family": 80, "sister": 90, "brother": 90, "mother": 90, "father": 90,
		"rival": 90, "lover": 90, "mentor": 90, "enemy": 90, "ally": 80,
		// Traits
		"personality": 70, "appearance": 60, "secret": 110, "fear": 80, "goal": 70,
	})
}
