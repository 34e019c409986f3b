package keywords

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// Signal weights of the shared extraction algorithm.
const (
	HeaderWeight = 3.0
	QuoteWeight  = 2.0
	WordWeight   = 0.5
)

// Extraction limits.
const (
	DefaultMinWeight   = 1.0
	DefaultMaxKeywords = 12
	QueryMaxKeywords   = 48
)

var quotePattern = regexp.MustCompile(`"([^"\n]{2,64})"|“([^”\n]{2,64})”`)

// WeightedKeyword is one extracted keyword with its accumulated weight.
type WeightedKeyword struct {
	Keyword string  `json:"keyword"`
	Weight  float64 `json:"weight"`
}

// ExtractOptions configures Extract.
type ExtractOptions struct {
	// Headers are label strings (section, topic). Their content words that
	// also occur in the text receive HeaderWeight.
	Headers []string

	// MinWeight discards entries with a lower weight. Zero keeps everything.
	MinWeight float64

	// MaxKeywords caps the result. Zero means unlimited.
	MaxKeywords int

	// Exclude drops keywords whose normalised form is present.
	Exclude map[string]bool
}

// DefaultExtractOptions returns the ingestion-time options.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		MinWeight:   DefaultMinWeight,
		MaxKeywords: DefaultMaxKeywords,
	}
}

// Extract combines three weighted signals over text: header words whose
// stem occurs in the text, quoted substrings, and content-word frequency. Entries are
// merged by lowercase key and returned by weight descending, keyword
// ascending.
func Extract(text string, opts ExtractOptions) []WeightedKeyword {
	weights := make(map[string]float64)

	tokens := ContentWords(text)
	// stem -> first surface form in the text
	present := make(map[string]string, len(tokens))
	for _, tok := range tokens {
		stem := Stem(tok)
		if _, ok := present[stem]; !ok {
			present[stem] = tok
		}
		weights[tok] += WordWeight
	}

	seenHeader := make(map[string]bool)
	for _, h := range opts.Headers {
		for _, w := range ContentWords(h) {
			stem := Stem(w)
			surface, ok := present[stem]
			if !ok || seenHeader[stem] {
				continue
			}
			seenHeader[stem] = true
			weights[surface] += HeaderWeight
		}
	}

	for _, q := range quotedPhrases(text) {
		weights[q] += QuoteWeight
	}

	out := make([]WeightedKeyword, 0, len(weights))
	for kw, w := range weights {
		if w < opts.MinWeight || w <= 0 {
			continue
		}
		if opts.Exclude != nil && opts.Exclude[Normalize(kw)] {
			continue
		}
		out = append(out, WeightedKeyword{Keyword: kw, Weight: w})
	}
	sortWeighted(out)
	if opts.MaxKeywords > 0 && len(out) > opts.MaxKeywords {
		out = out[:opts.MaxKeywords]
	}
	return out
}

// quotedPhrases returns lowercase, whitespace-collapsed quoted substrings
// that contain at least one content word.
func quotedPhrases(text string) []string {
	var out []string
	for _, m := range quotePattern.FindAllStringSubmatch(text, -1) {
		q := m[1]
		if q == "" {
			q = m[2]
		}
		q = strings.Join(strings.Fields(strings.ToLower(q)), " ")
		q = strings.Trim(q, ".,;:!?'")
		if q == "" || len(ContentWords(q)) == 0 {
			continue
		}
		out = append(out, q)
	}
	return out
}

func sortWeighted(kws []WeightedKeyword) {
	sort.Slice(kws, func(i, j int) bool {
		if kws[i].Weight != kws[j].Weight {
			return kws[i].Weight > kws[j].Weight
		}
		return kws[i].Keyword < kws[j].Keyword
	})
}

// WeightToPriority maps an extraction weight onto the [1,200] priority scale.
// One header hit (3.0) maps to 75; six occurrences of a word also reach 75.
func WeightToPriority(w float64) int {
	p := int(math.Round(w * 25))
	if p < 1 {
		return 1
	}
	if p > 200 {
		return 200
	}
	return p
}

// QueryKeywords is the keyword view of one live query.
type QueryKeywords struct {
	// Keywords are the extracted entries, highest weight first.
	Keywords []WeightedKeyword

	set        map[string]bool
	normalized string
}

// ExtractQuery applies the shared algorithm to query text. Queries have no
// labels, and every content word counts regardless of frequency.
func ExtractQuery(text string) QueryKeywords {
	kws := Extract(text, ExtractOptions{MaxKeywords: QueryMaxKeywords})
	q := QueryKeywords{
		Keywords:   kws,
		set:        make(map[string]bool, len(kws)),
		normalized: Normalize(text),
	}
	for _, kw := range kws {
		q.set[Normalize(kw.Keyword)] = true
	}
	return q
}

// Has reports whether a normalised keyword was extracted from the query.
func (q QueryKeywords) Has(normalized string) bool {
	return q.set[normalized]
}

// ContainsPhrase reports whether a normalised multi-word phrase occurs in the
// normalised query on word boundaries.
func (q QueryKeywords) ContainsPhrase(normalized string) bool {
	if normalized == "" || q.normalized == "" {
		return false
	}
	return strings.Contains(" "+q.normalized+" ", " "+normalized+" ")
}

// Matches reports whether a chunk keyword matches the query: its normalised
// form is an extracted keyword, or a multi-word form occurs in the text.
func (q QueryKeywords) Matches(keyword string) bool {
	norm := Normalize(keyword)
	if norm == "" {
		return false
	}
	if q.set[norm] {
		return true
	}
	return strings.Contains(norm, " ") && q.ContainsPhrase(norm)
}

// IsEmpty reports whether nothing was extracted.
func (q QueryKeywords) IsEmpty() bool {
	return len(q.Keywords) == 0
}

// Strings returns the extracted keywords in rank order.
func (q QueryKeywords) Strings() []string {
	out := make([]string, len(q.Keywords))
	for i, kw := range q.Keywords {
		out[i] = kw.Keyword
	}
	return out
}
