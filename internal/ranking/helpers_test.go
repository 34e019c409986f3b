package ranking

import (
	"github.com/custodia-labs/loreweave/internal/core/domain"
)

func newTestCorpus(collectionID string, chunks ...*domain.Chunk) *Corpus {
	m := make(map[int64]*domain.Chunk, len(chunks))
	for _, c := range chunks {
		m[c.Hash] = c
	}
	corpus := NewCorpus()
	corpus.Add(collectionID, m)
	return corpus
}

func cand(hash int64, base float64) domain.Candidate {
	return domain.Candidate{Hash: hash, BaseScore: base}
}

func hashes(cands []domain.Candidate) []int64 {
	out := make([]int64, len(cands))
	for i, c := range cands {
		out[i] = c.Hash
	}
	return out
}

func force(target int64) domain.ChunkLink {
	return domain.ChunkLink{TargetHash: target, Mode: domain.LinkModeForce}
}

func soft(target int64) domain.ChunkLink {
	return domain.ChunkLink{TargetHash: target, Mode: domain.LinkModeSoft}
}

func intPtr(v int) *int { return &v }
