package ranking

import (
	"fmt"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// FilterInclusionGroups keeps at most one member per inclusion group.
// The first member encountered holds the slot. A later member takes the
// holder's position when it is the force-link target of another candidate
// and the holder is not, or, with that equal, when it is prioritised and
// the holder is not. Ungrouped candidates always pass through.
//
// Force closure outranks group priority. When two force-link targets
// contend for one slot, the loser's sources are removed as well, so no kept
// candidate is missing a force-linked companion.
func FilterInclusionGroups(cands []domain.Candidate, corpus *Corpus) []domain.Candidate {
	members := make(map[int64]bool, len(cands))
	for _, c := range cands {
		members[c.Hash] = true
	}
	pinned := forceTargets(cands, corpus, members)

	out := make([]domain.Candidate, 0, len(cands))
	holders := make(map[string]int)
	for _, c := range cands {
		ch, ok := corpus.Get(c.Hash)
		if !ok || ch.InclusionGroup == "" {
			out = append(out, c)
			continue
		}
		idx, held := holders[ch.InclusionGroup]
		if !held {
			holders[ch.InclusionGroup] = len(out)
			out = append(out, c)
			continue
		}
		holder, _ := corpus.Get(out[idx].Hash)
		if outranks(ch, pinned[c.Hash], holder, pinned[out[idx].Hash]) {
			c.Note(domain.OriginInclusion, fmt.Sprintf("%s: replaced %d", ch.InclusionGroup, out[idx].Hash))
			out[idx] = c
		}
	}
	return dropBrokenSources(out, members, corpus)
}

func outranks(ch *domain.Chunk, chPinned bool, holder *domain.Chunk, holderPinned bool) bool {
	if chPinned != holderPinned {
		return chPinned
	}
	return ch.InclusionPrioritize && (holder == nil || !holder.InclusionPrioritize)
}

// dropBrokenSources removes kept candidates that force-link to a candidate
// the group filter removed, repeating until nothing changes.
func dropBrokenSources(kept []domain.Candidate, members map[int64]bool, corpus *Corpus) []domain.Candidate {
	removed := make(map[int64]bool)
	for h := range members {
		removed[h] = true
	}
	for _, c := range kept {
		delete(removed, c.Hash)
	}

	for changed := len(removed) > 0; changed; {
		changed = false
		next := kept[:0]
		for _, c := range kept {
			if linksToAny(c.Hash, corpus, removed) {
				removed[c.Hash] = true
				changed = true
				continue
			}
			next = append(next, c)
		}
		kept = next
	}
	return kept
}

func linksToAny(hash int64, corpus *Corpus, set map[int64]bool) bool {
	ch, ok := corpus.Get(hash)
	if !ok {
		return false
	}
	for _, l := range ch.ChunkLinks {
		if l.Mode == domain.LinkModeForce && l.TargetHash != hash && set[l.TargetHash] {
			return true
		}
	}
	return false
}
