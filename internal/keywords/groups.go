package keywords

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// GroupTagPrefix prefixes the tag added to chunks whose labels match a group.
const GroupTagPrefix = "group:"

// KeywordGroup is a curated vocabulary attached to chunks whose section or
// topic label matches. It never inspects chunk bodies.
type KeywordGroup struct {
	Name string

	// LabelSubstrings match case-insensitively against "section topic".
	LabelSubstrings []string

	// LabelPattern is an optional regex over the same label string.
	LabelPattern *regexp.Regexp

	// Keywords are added to the chunk's system keywords.
	Keywords []string

	// Regex are added to the chunk's keyword regex with source group.
	Regex []string

	// Priority is the weight of the curated keywords and regex.
	Priority int
}

// Tag returns the chunk tag for this group.
func (g KeywordGroup) Tag() string {
	return GroupTagPrefix + g.Name
}

// MatchesLabel reports whether the group applies to the given labels.
func (g KeywordGroup) MatchesLabel(section, topic string) bool {
	label := strings.ToLower(strings.TrimSpace(section + " " + topic))
	if label == "" {
		return false
	}
	for _, s := range g.LabelSubstrings {
		if s != "" && strings.Contains(label, strings.ToLower(s)) {
			return true
		}
	}
	return g.LabelPattern != nil && g.LabelPattern.MatchString(label)
}

// RegexEntries serialises the group's regex.
func (g KeywordGroup) RegexEntries() []domain.KeywordRegex {
	out := make([]domain.KeywordRegex, 0, len(g.Regex))
	for _, p := range g.Regex {
		out = append(out, domain.KeywordRegex{
			Pattern:  p,
			Flags:    "i",
			Priority: g.Priority,
			Source:   domain.RegexSourceGroup,
		})
	}
	return out
}

// MatchGroups returns the groups that apply to the labels, in table order.
func MatchGroups(groups []KeywordGroup, section, topic string) []KeywordGroup {
	var out []KeywordGroup
	for _, g := range groups {
		if g.MatchesLabel(section, topic) {
			out = append(out, g)
		}
	}
	return out
}

// DefaultKeywordGroups returns the built-in table for lore sections.
func DefaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{
			Name:            "magic",
			LabelSubstrings: []string{"magic", "spell", "arcane", "sorcery"},
			Keywords:        []string{"magic", "spell", "mana"},
			Regex:           []string{`\b(?:cast|casts|casting)\s+(?:a\s+)?spell`, `\bincantations?\b`},
			Priority:        110,
		},
		{
			Name:            "combat",
			LabelSubstrings: []string{"combat", "battle", "weapon", "fighting"},
			LabelPattern:    regexp.MustCompile(`\bwars?\b`),
			Keywords:        []string{"fight", "weapon", "battle"},
			Regex:           []string{`\b(?:sword|blade|spear|bow)s?\b`},
			Priority:        100,
		},
		{
			Name:            "geography",
			LabelSubstrings: []string{"location", "geography", "region", "place"},
			LabelPattern:    regexp.MustCompile(`\b(?:city|town|realm|kingdom)\b`),
			Keywords:        []string{"travel", "journey", "map"},
			Priority:        90,
		},
		{
			Name:            "history",
			LabelSubstrings: []string{"history", "timeline", "legend", "lore"},
			Keywords:        []string{"history", "legend", "ancient"},
			Regex:           []string{`\b(?:years?|centuries|ages?)\s+ago\b`},
			Priority:        90,
		},
		{
			Name:            "relationships",
			LabelSubstrings: []string{"relationship", "family", "friends"},
			Keywords:        []string{"family", "friend", "relationship"},
			Priority:        95,
		},
		{
			Name:            "faction",
			LabelSubstrings: []string{"faction", "guild", "organization", "organisation", "order"},
			Keywords:        []string{"faction", "member", "leader"},
			Priority:        100,
		},
	}
}
