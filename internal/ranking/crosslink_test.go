package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

func TestCrosslinkScore(t *testing.T) {
	p := &domain.Chunk{SystemKeywords: []string{"dragon", "fire", "ash"}, Tags: []string{"war", "north", "ice"}}

	tests := []struct {
		name     string
		x        *domain.Chunk
		expected float64
	}{
		{"half keywords shared", &domain.Chunk{SystemKeywords: []string{"dragons", "river"}}, 0.5},
		{"all keywords shared", &domain.Chunk{SystemKeywords: []string{"fire"}}, 1.0},
		{"one tag", &domain.Chunk{Tags: []string{"WAR"}}, 0.25},
		{"tag bonus capped", &domain.Chunk{Tags: []string{"war", "north", "ice"}}, 0.5},
		{"keywords plus tags", &domain.Chunk{SystemKeywords: []string{"ash", "snow"}, Tags: []string{"north"}}, 0.75},
		{"disabled keyword not counted", &domain.Chunk{SystemKeywords: []string{"ash", "snow"}, DisabledKeywords: []string{"snow"}}, 1.0},
		{"nothing shared", &domain.Chunk{SystemKeywords: []string{"tavern"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, CrosslinkScore(tt.x, p), 1e-9)
		})
	}
}

func TestDeriveCrosslinks(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, Text: "selected", SystemKeywords: []string{"dragon", "fire"}},
		&domain.Chunk{Hash: 2, SystemKeywords: []string{"dragon"}},                    // 1.0
		&domain.Chunk{Hash: 3, SystemKeywords: []string{"fire", "ice", "snow", "sky"}}, // 0.25
		&domain.Chunk{Hash: 4, SystemKeywords: []string{"fire", "ice", "snow"}},        // 0.33
		&domain.Chunk{Hash: 5, SystemKeywords: []string{"dragon"}, Disabled: true},
		&domain.Chunk{Hash: 6, SystemKeywords: []string{"tavern"}},
		&domain.Chunk{Hash: 7, SystemKeywords: []string{"fire", "ice", "snow", "sky", "sea"}}, // 0.2
	)
	selected := []domain.Candidate{cand(1, 0.9)}

	out := DeriveCrosslinks(selected, corpus, CrosslinkOptions{Threshold: 0.25, BaseFactor: 0.5})

	require.Equal(t, []int64{2, 4, 3}, hashes(out))
	assert.InDelta(t, 0.5, out[0].BaseScore, 1e-9)
	assert.True(t, out[0].Inferred)
	assert.Equal(t, "c", out[0].CollectionID)
	assert.True(t, out[0].HasOrigin(domain.OriginCrosslink))

	limited := DeriveCrosslinks(selected, corpus, CrosslinkOptions{Threshold: 0.25, Limit: 1, BaseFactor: 0.5})
	assert.Equal(t, []int64{2}, hashes(limited))
}

func TestDeriveCrosslinks_BestSourceWins(t *testing.T) {
	corpus := newTestCorpus("c",
		&domain.Chunk{Hash: 1, SystemKeywords: []string{"ice"}},
		&domain.Chunk{Hash: 2, SystemKeywords: []string{"fire", "ice"}},
		&domain.Chunk{Hash: 3, SystemKeywords: []string{"fire", "ice"}},
	)

	out := DeriveCrosslinks([]domain.Candidate{cand(1, 1), cand(2, 1)}, corpus, CrosslinkOptions{Threshold: 0.25, BaseFactor: 0.5})

	require.Len(t, out, 1)
	assert.Equal(t, int64(3), out[0].Hash)
	assert.Contains(t, out[0].Provenance[0].Detail, "from 2")
}

func TestDeriveCrosslinks_EmptySelection(t *testing.T) {
	corpus := newTestCorpus("c", &domain.Chunk{Hash: 1, SystemKeywords: []string{"x"}})
	assert.Nil(t, DeriveCrosslinks(nil, corpus, CrosslinkOptions{Threshold: 0.25}))
}
