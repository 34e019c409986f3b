package domain

import (
	"sort"
	"strings"
)

// ScopeKind identifies who owns a collection.
type ScopeKind string

// Available scope kinds.
const (
	ScopeGlobal    ScopeKind = "global"
	ScopeCharacter ScopeKind = "character"
	ScopeSession   ScopeKind = "session"
)

// IsValid returns true if the scope kind is recognised.
func (k ScopeKind) IsValid() bool {
	switch k {
	case ScopeGlobal, ScopeCharacter, ScopeSession:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ScopeKind) String() string {
	return string(k)
}

// Scope places a collection in exactly one of global, character or session.
type Scope struct {
	Kind ScopeKind `json:"kind"`

	// Owner is the character or session ID. Empty for global collections.
	Owner string `json:"owner,omitempty"`
}

// GlobalScope returns the global scope.
func GlobalScope() Scope {
	return Scope{Kind: ScopeGlobal}
}

// Key returns an opaque, stable key for the scope.
func (s Scope) Key() string {
	if s.Kind == ScopeGlobal || s.Kind == "" {
		return string(ScopeGlobal)
	}
	return string(s.Kind) + ":" + s.Owner
}

// ScopeContext describes who is asking. It selects which collections are visible.
type ScopeContext struct {
	CharacterID string
	SessionID   string

	// Libraries restricts visibility to the named libraries when non-empty.
	Libraries []string
}

// Sees reports whether a collection is visible from this context.
func (sc ScopeContext) Sees(c *Collection) bool {
	switch c.Scope.Kind {
	case ScopeCharacter:
		if c.Scope.Owner == "" || c.Scope.Owner != sc.CharacterID {
			return false
		}
	case ScopeSession:
		if c.Scope.Owner == "" || c.Scope.Owner != sc.SessionID {
			return false
		}
	}
	if len(sc.Libraries) == 0 {
		return true
	}
	for _, lib := range sc.Libraries {
		if lib == c.Library {
			return true
		}
	}
	return false
}

// ConditionLogic combines condition rules.
type ConditionLogic string

// Available condition logics.
const (
	ConditionAnd ConditionLogic = "and"
	ConditionOr  ConditionLogic = "or"
)

// ConditionKind selects what a rule tests.
type ConditionKind string

// Available condition kinds.
const (
	// ConditionKeyword tests for a lowercased substring of the query.
	ConditionKeyword ConditionKind = "keyword"

	// ConditionRegex tests the query against a case-insensitive regex.
	ConditionRegex ConditionKind = "regex"

	// ConditionMinLength tests that the query has at least Value runes.
	ConditionMinLength ConditionKind = "min_length"

	// ConditionCharacter tests the asking character ID.
	ConditionCharacter ConditionKind = "character"

	// ConditionSession tests the asking session ID.
	ConditionSession ConditionKind = "session"
)

// ConditionRule is one test in a Conditions block.
type ConditionRule struct {
	Kind   ConditionKind `json:"kind"`
	Value  string        `json:"value"`
	Negate bool          `json:"negate,omitempty"`
}

// Conditions is an optional activation predicate on a collection.
type Conditions struct {
	Logic ConditionLogic  `json:"logic,omitempty"`
	Rules []ConditionRule `json:"rules"`
}

// IsEmpty returns true when there is nothing to evaluate.
func (c *Conditions) IsEmpty() bool {
	return c == nil || len(c.Rules) == 0
}

// Collection is a named, scoped set of chunks keyed by hash.
type Collection struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Scope       Scope  `json:"scope"`

	// Library groups collections for ScopeContext.Libraries filtering.
	Library string `json:"library,omitempty"`

	// ActivationTriggers are substrings of the lowercased query that activate the collection.
	ActivationTriggers []string `json:"activationTriggers,omitempty"`

	// AlwaysActive bypasses triggers and conditions.
	AlwaysActive bool `json:"alwaysActive,omitempty"`

	Conditions *Conditions `json:"conditions,omitempty"`

	Chunks map[int64]*Chunk `json:"-"`
}

// NewCollection creates an empty global collection.
func NewCollection(id, name string) *Collection {
	return &Collection{
		ID:     id,
		Name:   name,
		Scope:  GlobalScope(),
		Chunks: make(map[int64]*Chunk),
	}
}

// ChunkCount returns the number of chunks.
func (c *Collection) ChunkCount() int {
	return len(c.Chunks)
}

// Hashes returns chunk hashes in ascending order.
func (c *Collection) Hashes() []int64 {
	out := make([]int64, 0, len(c.Chunks))
	for h := range c.Chunks {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MatchesTrigger reports whether any activation trigger occurs in the query.
// The query is expected to be lowercased already.
func (c *Collection) MatchesTrigger(lowerQuery string) (string, bool) {
	for _, trig := range c.ActivationTriggers {
		t := strings.ToLower(strings.TrimSpace(trig))
		if t == "" {
			continue
		}
		if strings.Contains(lowerQuery, t) {
			return trig, true
		}
	}
	return "", false
}
