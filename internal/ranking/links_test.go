package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

func TestResolveLinks_ForceChain(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{force(2)}},
		&domain.Chunk{Hash: 2, ChunkLinks: []domain.ChunkLink{force(3)}},
		&domain.Chunk{Hash: 3},
	)

	out, softSet := ResolveLinks([]domain.Candidate{cand(1, 0.8)}, corpus, 0.5)

	require.Equal(t, []int64{1, 2, 3}, hashes(out))
	assert.InDelta(t, 0.4, out[1].BaseScore, 1e-9)
	assert.InDelta(t, 0.2, out[2].BaseScore, 1e-9)
	assert.True(t, out[1].Inferred)
	assert.True(t, out[2].HasOrigin(domain.OriginForceLink))
	assert.Empty(t, softSet)
}

func TestResolveLinks_Cycle(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{force(2)}},
		&domain.Chunk{Hash: 2, ChunkLinks: []domain.ChunkLink{force(1), force(2)}},
	)

	out, _ := ResolveLinks([]domain.Candidate{cand(1, 1)}, corpus, 0.9)

	assert.Equal(t, []int64{1, 2}, hashes(out))
}

func TestResolveLinks_DisabledTargetNeverAdded(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{force(4), force(99)}},
		&domain.Chunk{Hash: 4, Disabled: true},
	)

	out, _ := ResolveLinks([]domain.Candidate{cand(1, 1)}, corpus, 0.9)

	assert.Equal(t, []int64{1}, hashes(out))
}

func TestResolveLinks_SoftOnlyMarksPresent(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{soft(2), soft(3), soft(1)}},
		&domain.Chunk{Hash: 2},
		&domain.Chunk{Hash: 3},
	)

	out, softSet := ResolveLinks([]domain.Candidate{cand(1, 1), cand(2, 0.5)}, corpus, 0.9)

	require.Equal(t, []int64{1, 2}, hashes(out), "soft links never add chunks")
	assert.Equal(t, map[int64]bool{2: true}, softSet)
	assert.False(t, out[0].SoftLinked, "self links ignored")
	assert.True(t, out[1].SoftLinked)
	assert.True(t, out[1].HasOrigin(domain.OriginSoftLink))
}

func TestResolveLinks_SoftAfterForce(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{soft(2), force(2)}},
		&domain.Chunk{Hash: 2},
	)

	out, softSet := ResolveLinks([]domain.Candidate{cand(1, 1)}, corpus, 0.9)

	require.Equal(t, []int64{1, 2}, hashes(out))
	assert.True(t, softSet[2])
}

func TestResolveLinks_DoesNotMutateInput(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{soft(2)}},
		&domain.Chunk{Hash: 2},
	)
	in := []domain.Candidate{cand(1, 1), cand(2, 1)}

	_, _ = ResolveLinks(in, corpus, 0.9)

	assert.False(t, in[1].SoftLinked)
}

func TestForceClosure(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, ChunkLinks: []domain.ChunkLink{force(2), soft(4)}},
		&domain.Chunk{Hash: 2, ChunkLinks: []domain.ChunkLink{force(3), force(1)}},
		&domain.Chunk{Hash: 3},
		&domain.Chunk{Hash: 4},
	)
	members := map[int64]bool{1: true, 2: true, 3: true, 4: true}

	assert.Equal(t, []int64{1, 2, 3}, ForceClosure(1, corpus, members))
	assert.Equal(t, []int64{1, 2}, ForceClosure(1, corpus, map[int64]bool{1: true, 2: true}))
	assert.Equal(t, []int64{4}, ForceClosure(4, corpus, members))
}
