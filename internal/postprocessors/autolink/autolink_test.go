package autolink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

func TestThresholds_Mode(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		count int
		mode  domain.LinkMode
		ok    bool
	}{
		{0, "", false},
		{2, "", false},
		{3, domain.LinkModeSoft, true},
		{6, domain.LinkModeSoft, true},
		{7, domain.LinkModeForce, true},
		{40, domain.LinkModeForce, true},
	}
	for _, tt := range tests {
		mode, ok := th.Mode(tt.count)
		assert.Equal(t, tt.ok, ok, "count %d", tt.count)
		assert.Equal(t, tt.mode, mode, "count %d", tt.count)
	}
}

func TestThresholds_Validate(t *testing.T) {
	assert.NoError(t, DefaultThresholds().Validate())
	assert.ErrorIs(t, Thresholds{Soft: 0, Force: 3}.Validate(), domain.ErrInvalidInput)
	assert.ErrorIs(t, Thresholds{Soft: 5, Force: 4}.Validate(), domain.ErrInvalidInput)
}

func TestLink(t *testing.T) {
	batch := []domain.Chunk{
		{Hash: 1, Section: "Dragons", SectionMentions: map[string]int{"River Guard": 8, "Harbor": 3, "Nowhere": 9}},
		{Hash: 2, Section: "River Guard", SectionMentions: map[string]int{"dragons": 2}},
		{Hash: 3, Section: "river guard"},
		{Hash: 4, Section: "Harbor"},
	}

	out := Link(batch, DefaultThresholds())

	require.Len(t, out, 4)
	assert.Equal(t, []domain.ChunkLink{
		{TargetHash: 4, Mode: domain.LinkModeSoft},
		{TargetHash: 2, Mode: domain.LinkModeForce},
	}, out[0].ChunkLinks, "sections in name order, first chunk of a section is the target")
	assert.Empty(t, out[1].ChunkLinks, "below soft threshold")
	assert.Empty(t, batch[0].ChunkLinks, "input is not modified")
}

func TestLink_NoSelfOrDuplicateLinks(t *testing.T) {
	batch := []domain.Chunk{
		{Hash: 1, Section: "Dragons", SectionMentions: map[string]int{"Dragons": 10, "Keep": 9},
			ChunkLinks: []domain.ChunkLink{{TargetHash: 2, Mode: domain.LinkModeSoft}}},
		{Hash: 2, Section: "Keep"},
	}

	out := Link(batch, DefaultThresholds())

	assert.Equal(t, []domain.ChunkLink{{TargetHash: 2, Mode: domain.LinkModeSoft}}, out[0].ChunkLinks)
}

func TestProcessor(t *testing.T) {
	p := New(Thresholds{Soft: 1, Force: 2})
	assert.Equal(t, "autolink", p.Name())

	out, err := p.Process(context.Background(), nil, []domain.Chunk{
		{Hash: 1, Section: "A", SectionMentions: map[string]int{"B": 1}},
		{Hash: 2, Section: "B"},
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.ChunkLink{{TargetHash: 2, Mode: domain.LinkModeSoft}}, out[0].ChunkLinks)
}
