package keywords

import (
	"strings"
	"unicode"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// MinWordLength is the shortest token treated as a content word.
const MinWordLength = 3

// Tokenize splits text into lowercase word tokens. Letters, digits and
// inner apostrophes are kept; everything else separates words.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if strings.HasSuffix(f, "'s") {
			f = strings.TrimSuffix(f, "'s")
		}
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Stem returns the Porter stem of a single lowercase word.
func Stem(word string) string {
	if word == "" {
		return ""
	}
	if !isASCII(word) {
		return word
	}
	return porterstemmer.StemString(word)
}

// Normalize lowercases s, strips punctuation and stems every word.
// Multi-word input is re-joined with single spaces.
func Normalize(s string) string {
	tokens := Tokenize(s)
	for i, tok := range tokens {
		tokens[i] = Stem(tok)
	}
	return strings.Join(tokens, " ")
}

// IsContentWord reports whether a lowercase token carries meaning:
// long enough, not a stop word, not a number.
func IsContentWord(w string) bool {
	if len([]rune(w)) < MinWordLength {
		return false
	}
	if stopWords[w] {
		return false
	}
	allDigits := true
	for _, r := range w {
		if !unicode.IsDigit(r) {
			allDigits = false
			break
		}
	}
	return !allDigits
}

// ContentWords returns the content-word tokens of text in order.
func ContentWords(text string) []string {
	var out []string
	for _, tok := range Tokenize(text) {
		if IsContentWord(tok) {
			out = append(out, tok)
		}
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}

// stopWords are common words filtered out during keyword extraction.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "had": true,
	"her": true, "was": true, "one": true, "our": true, "out": true,
	"has": true, "his": true, "how": true, "its": true, "may": true,
	"new": true, "now": true, "old": true, "see": true, "way": true,
	"who": true, "did": true, "get": true, "got": true, "let": true,
	"say": true, "she": true, "too": true, "use": true, "him": true,
	"any": true, "own": true, "yet": true, "off": true, "per": true,
	"this": true, "that": true, "with": true, "have": true, "from": true,
	"they": true, "been": true, "said": true, "each": true, "which": true,
	"their": true, "will": true, "other": true, "about": true, "many": true,
	"then": true, "them": true, "these": true, "some": true, "would": true,
	"make": true, "like": true, "into": true, "than": true, "more": true,
	"very": true, "when": true, "what": true, "your": true, "just": true,
	"also": true, "there": true, "where": true, "here": true, "were": true,
	"could": true, "should": true, "does": true, "only": true, "over": true,
	"such": true, "after": true, "before": true, "while": true, "being": true,
	"both": true, "most": true, "much": true, "even": true, "well": true,
	"back": true, "because": true, "through": true, "upon": true, "onto": true,
	"those": true, "again": true, "ever": true, "every": true, "still": true,
	"might": true, "must": true, "shall": true, "himself": true, "herself": true,
	"itself": true, "themselves": true, "whom": true, "whose": true, "why": true,
	"between": true, "under": true, "above": true, "below": true, "within": true,
	"without": true, "across": true, "against": true, "among": true, "around": true,
	"until": true, "during": true, "though": true, "although": true, "since": true,
	"yes": true, "okay": true, "really": true, "thing": true, "things": true,
	"want": true, "know": true, "think": true, "tell": true, "going": true,
	"don't": true, "can't": true, "won't": true, "it's": true, "i'm": true,
}
