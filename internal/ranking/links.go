package ranking

import (
	"fmt"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// ResolveLinks follows declared chunk links from every candidate.
//
// A force link appends its target when absent, breadth first, so targets
// pulled in by force links have their own links followed too. Disabled or
// unknown targets are skipped. The present set doubles as the visited set,
// so cycles terminate. Force-added targets get the source's base score
// times forceDiscount.
//
// A soft link never adds anything: when its target is present after force
// resolution the target is marked SoftLinked. The marked hashes are also
// returned.
func ResolveLinks(cands []domain.Candidate, corpus *Corpus, forceDiscount float64) ([]domain.Candidate, map[int64]bool) {
	out := append([]domain.Candidate(nil), cands...)
	present := make(map[int64]int, len(out))
	for i, c := range out {
		present[c.Hash] = i
	}

	for i := 0; i < len(out); i++ {
		src, ok := corpus.Get(out[i].Hash)
		if !ok {
			continue
		}
		for _, l := range src.ChunkLinks {
			if l.Mode != domain.LinkModeForce {
				continue
			}
			if _, ok := present[l.TargetHash]; ok || !corpus.Eligible(l.TargetHash) {
				continue
			}
			cand, _ := corpus.Candidate(l.TargetHash, out[i].BaseScore*forceDiscount, true)
			cand.Note(domain.OriginForceLink, fmt.Sprintf("from %d", out[i].Hash))
			present[l.TargetHash] = len(out)
			out = append(out, cand)
		}
	}

	soft := make(map[int64]bool)
	for _, c := range out {
		src, ok := corpus.Get(c.Hash)
		if !ok {
			continue
		}
		for _, l := range src.ChunkLinks {
			if l.Mode != domain.LinkModeSoft || l.TargetHash == c.Hash {
				continue
			}
			idx, ok := present[l.TargetHash]
			if !ok || soft[l.TargetHash] {
				continue
			}
			soft[l.TargetHash] = true
			out[idx].SoftLinked = true
			out[idx].Note(domain.OriginSoftLink, fmt.Sprintf("from %d", c.Hash))
		}
	}
	return out, soft
}

// ForceClosure returns hash plus every hash reachable from it through force
// links, restricted to members. Order is breadth first from hash.
func ForceClosure(hash int64, corpus *Corpus, members map[int64]bool) []int64 {
	out := []int64{hash}
	seen := map[int64]bool{hash: true}
	for i := 0; i < len(out); i++ {
		ch, ok := corpus.Get(out[i])
		if !ok {
			continue
		}
		for _, l := range ch.ChunkLinks {
			if l.Mode != domain.LinkModeForce || seen[l.TargetHash] || !members[l.TargetHash] {
				continue
			}
			seen[l.TargetHash] = true
			out = append(out, l.TargetHash)
		}
	}
	return out
}
