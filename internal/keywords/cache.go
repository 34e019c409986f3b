package keywords

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/logger"
)

type cacheEntry struct {
	re  *regexp.Regexp
	err error
}

// RegexCache compiles stored keyword regexes lazily and remembers both
// successes and failures. Safe for concurrent use.
type RegexCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

// NewRegexCache creates an empty cache.
func NewRegexCache() *RegexCache {
	return &RegexCache{entries: make(map[string]cacheEntry)}
}

// Compile returns the compiled form of r. Unsupported syntax yields an error
// wrapping domain.ErrMalformedRegex; the failure is logged once.
func (c *RegexCache) Compile(r domain.KeywordRegex) (*regexp.Regexp, error) {
	flags := GoFlags(r.Flags)
	key := flags + "\x00" + r.Pattern

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return e.re, e.err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.re, e.err
	}

	if strings.TrimSpace(r.Pattern) == "" {
		e = cacheEntry{err: fmt.Errorf("empty pattern: %w", domain.ErrMalformedRegex)}
	} else {
		re, err := regexp.Compile(flags + r.Pattern)
		if err != nil {
			e = cacheEntry{err: fmt.Errorf("pattern %q: %v: %w", r.Pattern, err, domain.ErrMalformedRegex)}
		} else {
			e = cacheEntry{re: re}
		}
	}
	if e.err != nil {
		logger.Warn("skipping keyword regex: %v", e.err)
	}
	c.entries[key] = e
	return e.re, e.err
}

// Len returns the number of cached entries, failures included.
func (c *RegexCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GoFlags converts stored flag letters into a Go inline flag group.
// Only i, m and s carry over; others (g, u, y) have no RE2 meaning.
func GoFlags(flags string) string {
	var set []string
	seen := make(map[rune]bool)
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's':
			if !seen[f] {
				seen[f] = true
				set = append(set, string(f))
			}
		}
	}
	if len(set) == 0 {
		return ""
	}
	sort.Strings(set)
	return "(?" + strings.Join(set, "") + ")"
}
