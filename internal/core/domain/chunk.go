package domain

import "strings"

// Importance bounds. Importance is a percentage multiplier on the fused score.
const (
	MinImportance     = 0
	DefaultImportance = 100
	MaxImportance     = 200
)

// Keyword priority bounds for CustomWeights.
const (
	MinKeywordPriority = 1
	MaxKeywordPriority = 200
)

// LinkMode defines how a declared chunk link behaves at query time.
type LinkMode string

// Available link modes.
const (
	// LinkModeForce unconditionally pulls the target into the result set.
	LinkModeForce LinkMode = "force"

	// LinkModeSoft boosts the target only when it is already a candidate.
	LinkModeSoft LinkMode = "soft"
)

// IsValid returns true if the link mode is recognised.
func (m LinkMode) IsValid() bool {
	return m == LinkModeForce || m == LinkModeSoft
}

// String returns the string representation.
func (m LinkMode) String() string {
	return string(m)
}

// ChunkLink is a directed relation from one chunk to another in the same collection.
type ChunkLink struct {
	TargetHash int64    `json:"targetHash"`
	Mode       LinkMode `json:"mode"`
}

// RegexSource records where a keyword regex came from.
type RegexSource string

// Regex sources.
const (
	RegexSourceFamily RegexSource = "family"
	RegexSourcePhrase RegexSource = "phrase"
	RegexSourceGroup  RegexSource = "group"
	RegexSourceCustom RegexSource = "custom"
)

// Default regex priorities used by the boost calculator when a pattern
// carries no explicit priority.
const (
	DefaultRegexPriority = 80
	CustomRegexPriority  = 100
)

// KeywordRegex is a serialised regex matched against the raw query text.
type KeywordRegex struct {
	Pattern  string      `json:"pattern"`
	Flags    string      `json:"flags,omitempty"`
	Priority int         `json:"priority,omitempty"`
	Source   RegexSource `json:"source,omitempty"`
}

// EffectivePriority returns the declared priority or the source default.
func (r KeywordRegex) EffectivePriority() int {
	if r.Priority > 0 {
		return r.Priority
	}
	if r.Source == RegexSourceCustom {
		return CustomRegexPriority
	}
	return DefaultRegexPriority
}

// ChunkGroup is a cooperative boosting group. Members are never mutually exclusive.
type ChunkGroup struct {
	Name                string   `json:"name"`
	GroupKeywords       []string `json:"groupKeywords,omitempty"`
	RequiresGroupMember bool     `json:"requiresGroupMember,omitempty"`
}

// Chunk is a retrievable fragment of text plus its matching metadata.
type Chunk struct {
	// Hash is the stable identity of the chunk within its collection.
	Hash int64 `json:"hash"`

	// Text is injected verbatim into the prompt.
	Text string `json:"text"`

	// Section and Topic are human readable labels.
	Section string `json:"section,omitempty"`
	Topic   string `json:"topic,omitempty"`

	// Tags are free-form annotations, including detected keyword-group tags.
	Tags []string `json:"tags,omitempty"`

	// SystemKeywords are derived at ingestion and fully replaced on regeneration.
	SystemKeywords []string `json:"systemKeywords,omitempty"`

	// CustomKeywords are user-added keywords.
	CustomKeywords []string `json:"customKeywords,omitempty"`

	// DisabledKeywords are suppressed from matching.
	DisabledKeywords []string `json:"disabledKeywords,omitempty"`

	// CustomWeights maps a normalised keyword to a priority in [1,200].
	CustomWeights map[string]int `json:"customWeights,omitempty"`

	// KeywordRegex holds patterns synthesised from keyword families.
	KeywordRegex []KeywordRegex `json:"keywordRegex,omitempty"`

	// CustomRegex holds user-added patterns.
	CustomRegex []KeywordRegex `json:"customRegex,omitempty"`

	ChunkLinks []ChunkLink `json:"chunkLinks,omitempty"`

	InclusionGroup      string `json:"inclusionGroup,omitempty"`
	InclusionPrioritize bool   `json:"inclusionPrioritize,omitempty"`

	ChunkGroup *ChunkGroup `json:"chunkGroup,omitempty"`

	// Disabled chunks are never emitted.
	Disabled bool `json:"disabled,omitempty"`

	// Importance is a 0-200 percentage multiplier. Nil means DefaultImportance.
	Importance *int `json:"importance,omitempty"`

	// SectionMentions counts how often other sections' title words occur in
	// Text. Written by keyword synthesis, consumed by the auto-linker.
	SectionMentions map[string]int `json:"sectionMentions,omitempty"`

	// BatchID identifies the ingestion pass that produced the chunk.
	BatchID string `json:"batchId,omitempty"`
}

// EffectiveImportance returns the clamped importance multiplier.
func (c *Chunk) EffectiveImportance() int {
	if c.Importance == nil {
		return DefaultImportance
	}
	v := *c.Importance
	if v < MinImportance {
		return MinImportance
	}
	if v > MaxImportance {
		return MaxImportance
	}
	return v
}

// IsCustomKeyword reports whether kw was added by the user.
func (c *Chunk) IsCustomKeyword(kw string) bool {
	for _, k := range c.CustomKeywords {
		if strings.EqualFold(k, kw) {
			return true
		}
	}
	return false
}

// IsDisabledKeyword reports whether kw is suppressed for matching.
func (c *Chunk) IsDisabledKeyword(kw string) bool {
	for _, k := range c.DisabledKeywords {
		if strings.EqualFold(k, kw) {
			return true
		}
	}
	return false
}

// ActiveKeywords returns system and custom keywords minus disabled ones,
// deduplicated case-insensitively, system keywords first.
func (c *Chunk) ActiveKeywords() []string {
	seen := make(map[string]bool, len(c.SystemKeywords)+len(c.CustomKeywords))
	out := make([]string, 0, len(c.SystemKeywords)+len(c.CustomKeywords))
	add := func(kw string) {
		key := strings.ToLower(strings.TrimSpace(kw))
		if key == "" || seen[key] || c.IsDisabledKeyword(kw) {
			return
		}
		seen[key] = true
		out = append(out, kw)
	}
	for _, kw := range c.SystemKeywords {
		add(kw)
	}
	for _, kw := range c.CustomKeywords {
		add(kw)
	}
	return out
}

// AllRegex returns synthesised and custom patterns in match order.
func (c *Chunk) AllRegex() []KeywordRegex {
	out := make([]KeywordRegex, 0, len(c.KeywordRegex)+len(c.CustomRegex))
	out = append(out, c.KeywordRegex...)
	for _, r := range c.CustomRegex {
		if r.Source == "" {
			r.Source = RegexSourceCustom
		}
		out = append(out, r)
	}
	return out
}

// HasTag reports whether the chunk carries tag (case-insensitive).
func (c *Chunk) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// HasLink reports whether the chunk already links to target.
func (c *Chunk) HasLink(target int64) bool {
	for _, l := range c.ChunkLinks {
		if l.TargetHash == target {
			return true
		}
	}
	return false
}

// ResetKeywords clears every regenerable keyword field. Text, labels, links
// and group membership are untouched.
func (c *Chunk) ResetKeywords() {
	c.SystemKeywords = nil
	c.CustomKeywords = nil
	c.DisabledKeywords = nil
	c.CustomWeights = nil
	c.KeywordRegex = nil
	c.SectionMentions = nil
}

// Clone returns a deep copy of the chunk.
func (c Chunk) Clone() Chunk {
	out := c
	out.Tags = append([]string(nil), c.Tags...)
	out.SystemKeywords = append([]string(nil), c.SystemKeywords...)
	out.CustomKeywords = append([]string(nil), c.CustomKeywords...)
	out.DisabledKeywords = append([]string(nil), c.DisabledKeywords...)
	out.KeywordRegex = append([]KeywordRegex(nil), c.KeywordRegex...)
	out.CustomRegex = append([]KeywordRegex(nil), c.CustomRegex...)
	out.ChunkLinks = append([]ChunkLink(nil), c.ChunkLinks...)
	if c.CustomWeights != nil {
		out.CustomWeights = make(map[string]int, len(c.CustomWeights))
		for k, v := range c.CustomWeights {
			out.CustomWeights[k] = v
		}
	}
	if c.SectionMentions != nil {
		out.SectionMentions = make(map[string]int, len(c.SectionMentions))
		for k, v := range c.SectionMentions {
			out.SectionMentions[k] = v
		}
	}
	if c.ChunkGroup != nil {
		g := *c.ChunkGroup
		g.GroupKeywords = append([]string(nil), c.ChunkGroup.GroupKeywords...)
		out.ChunkGroup = &g
	}
	if c.Importance != nil {
		v := *c.Importance
		out.Importance = &v
	}
	return out
}
