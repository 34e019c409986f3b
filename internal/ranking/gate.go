package ranking

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/keywords"
)

// ActivationGate decides which collections a query touches.
type ActivationGate struct {
	cache *keywords.RegexCache
}

// NewActivationGate creates a gate. A nil cache gets a private one.
func NewActivationGate(cache *keywords.RegexCache) *ActivationGate {
	if cache == nil {
		cache = keywords.NewRegexCache()
	}
	return &ActivationGate{cache: cache}
}

// Activate reports whether coll should be queried and why. A collection is
// active when it is always active, when its conditions hold, or when one of
// its triggers occurs in the lowercased query. With no triggers and no
// conditions a collection never activates unless always active.
func (g *ActivationGate) Activate(coll *domain.Collection, query string, scope domain.ScopeContext) (bool, string) {
	if coll.AlwaysActive {
		return true, "always active"
	}
	lower := strings.ToLower(query)
	if !coll.Conditions.IsEmpty() && g.Evaluate(coll.Conditions, lower, scope) {
		return true, "conditions"
	}
	if trig, ok := coll.MatchesTrigger(lower); ok {
		return true, "trigger " + trig
	}
	return false, ""
}

// Evaluate runs a conditions block against a lowercased query.
// Logic defaults to and.
func (g *ActivationGate) Evaluate(cond *domain.Conditions, lowerQuery string, scope domain.ScopeContext) bool {
	if cond.IsEmpty() {
		return false
	}
	or := cond.Logic == domain.ConditionOr
	for _, rule := range cond.Rules {
		ok := g.rule(rule, lowerQuery, scope)
		if rule.Negate {
			ok = !ok
		}
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

func (g *ActivationGate) rule(r domain.ConditionRule, lowerQuery string, scope domain.ScopeContext) bool {
	switch r.Kind {
	case domain.ConditionKeyword:
		v := strings.ToLower(strings.TrimSpace(r.Value))
		return v != "" && strings.Contains(lowerQuery, v)
	case domain.ConditionRegex:
		re, err := g.cache.Compile(domain.KeywordRegex{Pattern: r.Value, Flags: "i"})
		return err == nil && re.MatchString(lowerQuery)
	case domain.ConditionMinLength:
		n, err := strconv.Atoi(strings.TrimSpace(r.Value))
		return err == nil && utf8.RuneCountInString(lowerQuery) >= n
	case domain.ConditionCharacter:
		return scope.CharacterID != "" && scope.CharacterID == r.Value
	case domain.ConditionSession:
		return scope.SessionID != "" && scope.SessionID == r.Value
	default:
		return false
	}
}
