package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorityIndex_Lookup(t *testing.T) {
	idx := NewPriorityIndex(map[string]int{
		"Dragon":  120,
		"dragons": 90,
		"castle":  80,
		"":        10,
	})

	w, ok := idx.Lookup("dragon")
	assert.True(t, ok)
	assert.Equal(t, 120, w, "higher weight wins on normalisation collision")

	w, ok = idx.Lookup("CASTLES")
	assert.True(t, ok)
	assert.Equal(t, 80, w)

	_, ok = idx.Lookup("moat")
	assert.False(t, ok)

	assert.Equal(t, 2, idx.Len())
	assert.Equal(t, []string{"castl", "dragon"}, idx.Keys())
}

func TestPriorityIndex_ZeroValue(t *testing.T) {
	var idx PriorityIndex
	_, ok := idx.Lookup("dragon")
	assert.False(t, ok)
	assert.Equal(t, 0, idx.Len())
}

func TestPriorityIndex_With(t *testing.T) {
	base := NewPriorityIndex(map[string]int{"dragon": 120})
	extended := base.With(map[string]int{"wyvern": 70})

	_, ok := base.Lookup("wyvern")
	assert.False(t, ok, "original index is immutable")

	w, ok := extended.Lookup("wyvern")
	assert.True(t, ok)
	assert.Equal(t, 70, w)
	w, _ = extended.Lookup("dragon")
	assert.Equal(t, 120, w)
}

func TestDefaultPriorityIndex(t *testing.T) {
	idx := DefaultPriorityIndex()

	assert.Greater(t, idx.Len(), 20)
	w, ok := idx.Lookup("dragons")
	assert.True(t, ok)
	assert.Equal(t, 120, w)
}
