package keywords

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// MinFamilyRoot is the shortest shared prefix that groups keywords into a family.
const MinFamilyRoot = 4

// Pattern is a keyword matcher built at ingestion time. It is one of
// Literal, FamilyRegex or PhraseRegex.
type Pattern interface {
	// Regex returns the serialised form, or false for plain literals.
	Regex(priority int, source domain.RegexSource) (domain.KeywordRegex, bool)

	isPattern()
}

// Literal is a single keyword matched through the keyword set, not a regex.
type Literal struct {
	Keyword string
}

// FamilyRegex matches a shared root followed by any one of its suffixes.
type FamilyRegex struct {
	Root     string
	Suffixes []string
}

// PhraseRegex matches a multi-word phrase with flexible whitespace or
// hyphens between words. Variants are alternative phrasings.
type PhraseRegex struct {
	Base     string
	Variants []string
}

func (Literal) isPattern()     {}
func (FamilyRegex) isPattern() {}
func (PhraseRegex) isPattern() {}

// Regex implements Pattern.
func (Literal) Regex(int, domain.RegexSource) (domain.KeywordRegex, bool) {
	return domain.KeywordRegex{}, false
}

// Regex implements Pattern.
func (f FamilyRegex) Regex(priority int, source domain.RegexSource) (domain.KeywordRegex, bool) {
	if f.Root == "" {
		return domain.KeywordRegex{}, false
	}
	var b strings.Builder
	b.WriteString(`\b`)
	b.WriteString(regexp.QuoteMeta(f.Root))
	if len(f.Suffixes) > 0 {
		quoted := make([]string, len(f.Suffixes))
		for i, s := range f.Suffixes {
			quoted[i] = regexp.QuoteMeta(s)
		}
		b.WriteString("(?:")
		b.WriteString(strings.Join(quoted, "|"))
		b.WriteString(")?")
	}
	b.WriteString(`\b`)
	return domain.KeywordRegex{Pattern: b.String(), Flags: "i", Priority: priority, Source: source}, true
}

// Regex implements Pattern.
func (p PhraseRegex) Regex(priority int, source domain.RegexSource) (domain.KeywordRegex, bool) {
	forms := make([]string, 0, 1+len(p.Variants))
	for _, phrase := range append([]string{p.Base}, p.Variants...) {
		words := strings.Fields(phrase)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		forms = append(forms, strings.Join(words, `[\s-]+`))
	}
	if len(forms) == 0 {
		return domain.KeywordRegex{}, false
	}
	body := forms[0]
	if len(forms) > 1 {
		body = "(?:" + strings.Join(forms, "|") + ")"
	}
	return domain.KeywordRegex{Pattern: `\b` + body + `\b`, Flags: "i", Priority: priority, Source: source}, true
}

// SynthesizePatterns groups keywords into patterns. Single words sharing a
// prefix of at least MinFamilyRoot characters become one FamilyRegex,
// multi-word keywords become PhraseRegex, and the rest stay Literal.
// Output order is deterministic: families, phrases, literals, each sorted.
func SynthesizePatterns(keywords []string) []Pattern {
	var singles, phrases []string
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		if strings.Contains(kw, " ") {
			phrases = append(phrases, kw)
		} else {
			singles = append(singles, kw)
		}
	}
	sort.Strings(singles)
	sort.Strings(phrases)

	var families, literals []Pattern
	used := make([]bool, len(singles))
	for i, w := range singles {
		if used[i] {
			continue
		}
		root := w
		members := []string{w}
		for j := i + 1; j < len(singles); j++ {
			if used[j] {
				continue
			}
			lcp := commonPrefix(root, singles[j])
			if len([]rune(lcp)) < MinFamilyRoot {
				continue
			}
			root = lcp
			members = append(members, singles[j])
			used[j] = true
		}
		used[i] = true
		if len(members) < 2 {
			literals = append(literals, Literal{Keyword: w})
			continue
		}
		families = append(families, FamilyRegex{Root: root, Suffixes: suffixes(root, members)})
	}

	out := make([]Pattern, 0, len(families)+len(phrases)+len(literals))
	out = append(out, families...)
	for _, p := range phrases {
		out = append(out, PhraseRegex{Base: p})
	}
	return append(out, literals...)
}

// PatternsToRegex serialises every non-literal pattern.
func PatternsToRegex(patterns []Pattern, priority int) []domain.KeywordRegex {
	var out []domain.KeywordRegex
	for _, p := range patterns {
		source := domain.RegexSourceFamily
		if _, ok := p.(PhraseRegex); ok {
			source = domain.RegexSourcePhrase
		}
		if r, ok := p.Regex(priority, source); ok {
			out = append(out, r)
		}
	}
	return out
}

func commonPrefix(a, b string) string {
	ar, br := []rune(a), []rune(b)
	n := len(ar)
	if len(br) < n {
		n = len(br)
	}
	i := 0
	for i < n && ar[i] == br[i] {
		i++
	}
	return string(ar[:i])
}

// suffixes returns the distinct non-empty member suffixes after root,
// longest first so the alternation prefers the fullest match.
func suffixes(root string, members []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range members {
		s := strings.TrimPrefix(m, root)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}
