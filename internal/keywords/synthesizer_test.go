package keywords

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

const dragonText = `The Northern Kingdom sends its "silver knights" against the kingdom of ash. ` +
	`The kingdom burns. Dragon fire, dragon ash.`

func TestSynthesizer_Synthesize(t *testing.T) {
	s := NewSynthesizer(DefaultPriorityIndex(), DefaultKeywordGroups())

	md := s.Synthesize(SynthesisInput{
		Text:          dragonText,
		Section:       "Dragons",
		KnownSections: []string{"Dragons", "Northern Kingdom"},
	})

	assert.Equal(t, []string{"dragon", "silver knights", "ash"}, md.SystemKeywords)
	assert.Equal(t, map[string]int{"Northern Kingdom": 4}, md.SectionMentions)

	// Priority index outranks the derived weight for "dragon".
	assert.Equal(t, 120, md.CustomWeights["dragon"])
	assert.Equal(t, 50, md.CustomWeights[Normalize("silver knights")])
	assert.Equal(t, 25, md.CustomWeights["ash"])

	require.Len(t, md.Regex, 1)
	assert.Equal(t, `\bsilver[\s-]+knights\b`, md.Regex[0].Pattern)
	assert.Equal(t, domain.RegexSourcePhrase, md.Regex[0].Source)
	assert.Empty(t, md.GroupTags)
}

func TestSynthesizer_OtherSectionWordsExcluded(t *testing.T) {
	s := NewSynthesizer(NewPriorityIndex(nil), nil)

	md := s.Synthesize(SynthesisInput{
		Text:          "kingdom kingdom kingdom castle castle castle",
		Section:       "Castles",
		KnownSections: []string{"Northern Kingdom"},
	})

	assert.NotContains(t, md.SystemKeywords, "kingdom")
	assert.Contains(t, md.SystemKeywords, "castle")
	assert.Equal(t, 3, md.SectionMentions["Northern Kingdom"])
}

func TestSynthesizer_OwnSectionWordsKept(t *testing.T) {
	s := NewSynthesizer(NewPriorityIndex(nil), nil)

	md := s.Synthesize(SynthesisInput{
		Text:          "The kingdom taxes the kingdom again.",
		Section:       "Kingdom Politics",
		KnownSections: []string{"Kingdom Politics", "Kingdom Wars"},
	})

	assert.Contains(t, md.SystemKeywords, "kingdom")
	assert.Equal(t, 2, md.SectionMentions["Kingdom Wars"])
}

func TestSynthesizer_GroupsFromLabelsOnly(t *testing.T) {
	s := NewSynthesizer(NewPriorityIndex(nil), DefaultKeywordGroups())

	body := s.Synthesize(SynthesisInput{
		Text:    "magic magic spell spell arcane",
		Section: "Tavern",
	})
	assert.Empty(t, body.GroupTags, "body vocabulary never selects a group")

	labelled := s.Synthesize(SynthesisInput{
		Text:    "The tower hums at night.",
		Section: "Arcane Arts",
	})
	assert.Equal(t, []string{"group:magic"}, labelled.GroupTags)
	assert.Contains(t, labelled.SystemKeywords, "spell")
	assert.Equal(t, 110, labelled.CustomWeights["spell"])

	var groupRegex int
	for _, r := range labelled.Regex {
		if r.Source == domain.RegexSourceGroup {
			groupRegex++
		}
	}
	assert.Equal(t, 2, groupRegex)
}

func TestSynthesizer_FamilyRegex(t *testing.T) {
	s := NewSynthesizer(NewPriorityIndex(nil), nil)

	md := s.Synthesize(SynthesisInput{
		Text: "myth myth mythic mythic mythical mythical",
	})

	require.Len(t, md.Regex, 1)
	assert.Equal(t, `\bmyth(?:ical|ic)?\b`, md.Regex[0].Pattern)
	assert.Equal(t, domain.DefaultRegexPriority, md.Regex[0].Priority)
}

func TestSynthesizer_Deterministic(t *testing.T) {
	s := NewSynthesizer(DefaultPriorityIndex(), DefaultKeywordGroups())
	in := SynthesisInput{Text: dragonText, Section: "Dragons", KnownSections: []string{"Northern Kingdom"}}

	first := s.Synthesize(in)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, s.Synthesize(in))
	}
}

func TestMetadata_Apply(t *testing.T) {
	c := &domain.Chunk{
		Text:           "unchanged",
		Tags:           []string{"group:magic"},
		CustomKeywords: []string{"mine"},
		CustomRegex:    []domain.KeywordRegex{{Pattern: "keep"}},
	}
	md := Metadata{
		SystemKeywords:  []string{"spell"},
		CustomWeights:   map[string]int{"spell": 110},
		Regex:           []domain.KeywordRegex{{Pattern: `\bspell\b`}},
		GroupTags:       []string{"group:magic", "group:history"},
		SectionMentions: map[string]int{"Wars": 3},
	}

	md.Apply(c)

	assert.Equal(t, "unchanged", c.Text)
	assert.Equal(t, []string{"spell"}, c.SystemKeywords)
	assert.Equal(t, []string{"mine"}, c.CustomKeywords)
	assert.Len(t, c.CustomRegex, 1)
	assert.Equal(t, []string{"group:magic", "group:history"}, c.Tags)
	assert.Equal(t, 3, c.SectionMentions["Wars"])

	md.CustomWeights["spell"] = 1
	assert.Equal(t, 110, c.CustomWeights["spell"], "weights are copied")
}

func TestCountMentions(t *testing.T) {
	mentions, exclude := CountMentions(
		"The river guards cross the river. Guard duty.",
		[]string{"River Guard", "Sky", "Mountains"},
	)

	assert.Equal(t, map[string]int{"River Guard": 4}, mentions)
	assert.True(t, exclude["river"])
	assert.True(t, exclude[Stem("guard")])
	assert.False(t, exclude["sky"], "short title words are not counted")
	assert.True(t, exclude[Stem("mountains")])
}

func TestSynthesizer_WithLimits(t *testing.T) {
	base := NewSynthesizer(NewPriorityIndex(nil), nil)
	text := "amber basalt cobalt dune ember amber basalt cobalt dune ember"

	limited := base.WithLimits(2, 0)
	md := limited.Synthesize(SynthesisInput{Text: text})
	assert.Len(t, md.SystemKeywords, 2)

	strict := base.WithLimits(0, 5)
	md = strict.Synthesize(SynthesisInput{Text: text})
	assert.Empty(t, md.SystemKeywords)

	md = base.Synthesize(SynthesisInput{Text: text})
	assert.Len(t, md.SystemKeywords, 5, "original is unchanged")
}
