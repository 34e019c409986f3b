package keywords

import (
	"strings"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// MinMentionWordLength is the shortest section-title word counted as a mention.
const MinMentionWordLength = 4

// SynthesisInput is everything the synthesizer looks at for one chunk.
type SynthesisInput struct {
	Text    string
	Section string
	Topic   string
	Tags    []string

	// KnownSections are the section labels of the whole collection.
	// The chunk's own section is ignored.
	KnownSections []string
}

// Metadata is the derived keyword state of one chunk.
type Metadata struct {
	// Keywords are the extracted entries before curated group keywords.
	Keywords []WeightedKeyword

	SystemKeywords  []string
	CustomWeights   map[string]int
	Regex           []domain.KeywordRegex
	GroupTags       []string
	SectionMentions map[string]int
	Patterns        []Pattern
}

// Synthesizer derives chunk metadata. It holds only immutable inputs and is
// safe for concurrent use.
type Synthesizer struct {
	index  PriorityIndex
	groups []KeywordGroup
	opts   ExtractOptions
}

// NewSynthesizer creates a synthesizer over an index and a keyword-group table.
func NewSynthesizer(index PriorityIndex, groups []KeywordGroup) *Synthesizer {
	return &Synthesizer{
		index:  index,
		groups: groups,
		opts:   DefaultExtractOptions(),
	}
}

// WithLimits returns a copy that keeps at most maxKeywords entries with a
// weight of at least minWeight. Non-positive arguments keep the current value.
func (s *Synthesizer) WithLimits(maxKeywords int, minWeight float64) *Synthesizer {
	out := *s
	if maxKeywords > 0 {
		out.opts.MaxKeywords = maxKeywords
	}
	if minWeight > 0 {
		out.opts.MinWeight = minWeight
	}
	return &out
}

// Index returns the priority index in use.
func (s *Synthesizer) Index() PriorityIndex {
	return s.index
}

// Synthesize derives keywords, weights, regex, group tags and cross-section
// mention counts. It is a pure function of its input.
func (s *Synthesizer) Synthesize(in SynthesisInput) Metadata {
	own := strings.ToLower(strings.TrimSpace(in.Section))
	var others []string
	seen := map[string]bool{own: true}
	for _, sec := range in.KnownSections {
		key := strings.ToLower(strings.TrimSpace(sec))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		others = append(others, sec)
	}

	mentions, exclude := CountMentions(in.Text, others)
	for _, w := range ContentWords(in.Section + " " + in.Topic) {
		delete(exclude, Stem(w))
	}

	opts := s.opts
	opts.Headers = append([]string{in.Section, in.Topic}, userTags(in.Tags)...)
	opts.Exclude = exclude
	extracted := Extract(in.Text, opts)

	md := Metadata{
		Keywords:      extracted,
		CustomWeights: make(map[string]int),
	}
	if len(mentions) > 0 {
		md.SectionMentions = mentions
	}

	present := make(map[string]bool)
	var plain []string
	for _, kw := range extracted {
		// Surface forms stay distinct; forms sharing a stem share a weight.
		norm := Normalize(kw.Keyword)
		present[norm] = true
		md.SystemKeywords = append(md.SystemKeywords, kw.Keyword)
		plain = append(plain, kw.Keyword)

		w := WeightToPriority(kw.Weight)
		if p, ok := s.index.LookupNormalized(norm); ok && p > w {
			w = p
		}
		if w > md.CustomWeights[norm] {
			md.CustomWeights[norm] = w
		}
	}

	md.Patterns = SynthesizePatterns(plain)
	md.Regex = PatternsToRegex(md.Patterns, domain.DefaultRegexPriority)

	for _, g := range MatchGroups(s.groups, in.Section, in.Topic) {
		md.GroupTags = append(md.GroupTags, g.Tag())
		for _, kw := range g.Keywords {
			norm := Normalize(kw)
			if norm == "" {
				continue
			}
			if !present[norm] {
				present[norm] = true
				md.SystemKeywords = append(md.SystemKeywords, strings.ToLower(kw))
			}
			if g.Priority > md.CustomWeights[norm] {
				md.CustomWeights[norm] = g.Priority
			}
		}
		md.Regex = append(md.Regex, g.RegexEntries()...)
	}
	return md
}

// Apply writes derived metadata onto a chunk. Custom and disabled keywords,
// custom regex, links and text are left as they are.
func (md Metadata) Apply(c *domain.Chunk) {
	c.SystemKeywords = append([]string(nil), md.SystemKeywords...)
	c.KeywordRegex = append([]domain.KeywordRegex(nil), md.Regex...)
	c.CustomWeights = nil
	if len(md.CustomWeights) > 0 {
		c.CustomWeights = make(map[string]int, len(md.CustomWeights))
		for k, v := range md.CustomWeights {
			c.CustomWeights[k] = v
		}
	}
	c.SectionMentions = nil
	if len(md.SectionMentions) > 0 {
		c.SectionMentions = make(map[string]int, len(md.SectionMentions))
		for k, v := range md.SectionMentions {
			c.SectionMentions[k] = v
		}
	}
	for _, tag := range md.GroupTags {
		if !c.HasTag(tag) {
			c.Tags = append(c.Tags, tag)
		}
	}
}

// CountMentions counts, per section label, how often the label's content
// words occur in text. It also returns the stems of every counted word so
// callers can keep them out of the chunk's own keywords.
func CountMentions(text string, sections []string) (map[string]int, map[string]bool) {
	counts := make(map[string]int)
	for _, tok := range Tokenize(text) {
		counts[Stem(tok)]++
	}

	mentions := make(map[string]int)
	exclude := make(map[string]bool)
	for _, sec := range sections {
		total := 0
		used := make(map[string]bool)
		for _, w := range ContentWords(sec) {
			if len([]rune(w)) < MinMentionWordLength {
				continue
			}
			stem := Stem(w)
			exclude[stem] = true
			if used[stem] {
				continue
			}
			used[stem] = true
			total += counts[stem]
		}
		if total > 0 {
			mentions[sec] = total
		}
	}
	return mentions, exclude
}

func userTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if !strings.HasPrefix(t, GroupTagPrefix) {
			out = append(out, t)
		}
	}
	return out
}
