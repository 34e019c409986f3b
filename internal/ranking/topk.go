package ranking

import "github.com/custodia-labs/loreweave/internal/core/domain"

// TopK keeps at most k candidates from a sorted slice. Candidates are taken
// in order together with their force-link closure among the input. The top
// candidate is always kept; when its closure exceeds k the closure is cut in
// breadth-first order. A later candidate whose closure does not fit in the
// remaining room is skipped, and so is a candidate that entered only through
// a force link from another input candidate: it rides along with its source
// or not at all. Output keeps input order.
func TopK(sorted []domain.Candidate, corpus *Corpus, k int) []domain.Candidate {
	if k <= 0 {
		return nil
	}
	if len(sorted) <= k {
		return sorted
	}

	members := make(map[int64]bool, len(sorted))
	for _, c := range sorted {
		members[c.Hash] = true
	}
	targets := forceTargets(sorted, corpus, members)

	keep := make(map[int64]bool, k)
	for _, c := range sorted {
		if len(keep) >= k {
			break
		}
		if keep[c.Hash] {
			continue
		}
		if len(keep) > 0 && targets[c.Hash] && forceOnly(&c) {
			continue
		}
		var unit []int64
		for _, h := range ForceClosure(c.Hash, corpus, members) {
			if !keep[h] {
				unit = append(unit, h)
			}
		}
		if len(keep)+len(unit) > k {
			if len(keep) > 0 {
				continue
			}
			unit = unit[:k]
		}
		for _, h := range unit {
			keep[h] = true
		}
	}

	out := make([]domain.Candidate, 0, len(keep))
	for _, c := range sorted {
		if keep[c.Hash] {
			out = append(out, c)
		}
	}
	return out
}

// forceTargets returns the members that another member force-links to.
func forceTargets(cands []domain.Candidate, corpus *Corpus, members map[int64]bool) map[int64]bool {
	out := make(map[int64]bool)
	for _, c := range cands {
		ch, ok := corpus.Get(c.Hash)
		if !ok {
			continue
		}
		for _, l := range ch.ChunkLinks {
			if l.Mode == domain.LinkModeForce && l.TargetHash != c.Hash && members[l.TargetHash] {
				out[l.TargetHash] = true
			}
		}
	}
	return out
}

// forceOnly reports whether a candidate was added by link resolution rather
// than by a retrieval stage.
func forceOnly(c *domain.Candidate) bool {
	return len(c.Provenance) > 0 && c.Provenance[0].Origin == domain.OriginForceLink
}
