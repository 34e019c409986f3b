package domain

import "strings"

// Origin records which mechanism contributed to a candidate.
type Origin string

// Candidate origins.
const (
	OriginVector    Origin = "vector"
	OriginCrosslink Origin = "crosslink"
	OriginFallback  Origin = "fallback"
	OriginForceLink Origin = "force_link"
	OriginSoftLink  Origin = "soft_link"
	OriginKeyword   Origin = "keyword"
	OriginRegex     Origin = "regex"
	OriginGroup     Origin = "group"
	OriginInclusion Origin = "inclusion"
)

// Provenance is one explainability note attached to a candidate.
// It never affects ranking.
type Provenance struct {
	Origin Origin `json:"origin"`
	Detail string `json:"detail,omitempty"`
}

// String renders "origin: detail".
func (p Provenance) String() string {
	if p.Detail == "" {
		return string(p.Origin)
	}
	return string(p.Origin) + ": " + p.Detail
}

// Candidate is an ephemeral scored chunk produced during one query.
type Candidate struct {
	Hash         int64
	CollectionID string
	Text         string

	// BaseScore is the normalised, higher-is-better similarity in [0,1].
	BaseScore float64

	// KeywordBoost is the summed keyword, regex and group boost.
	KeywordBoost int

	// SoftLinked is set when a selected chunk soft-links to this one.
	SoftLinked bool

	FinalScore float64

	// Inferred marks candidates not returned by the vector service.
	Inferred bool

	Provenance []Provenance
}

// Note appends a provenance entry.
func (c *Candidate) Note(origin Origin, detail string) {
	c.Provenance = append(c.Provenance, Provenance{Origin: origin, Detail: detail})
}

// HasOrigin reports whether any provenance entry has the given origin.
func (c *Candidate) HasOrigin(origin Origin) bool {
	for _, p := range c.Provenance {
		if p.Origin == origin {
			return true
		}
	}
	return false
}

// ToResult converts the candidate into its public form.
func (c *Candidate) ToResult() RankedResult {
	return RankedResult{
		Hash:         c.Hash,
		CollectionID: c.CollectionID,
		Text:         c.Text,
		FinalScore:   c.FinalScore,
		Inferred:     c.Inferred,
		Provenance:   append([]Provenance(nil), c.Provenance...),
	}
}

// RankedResult is one entry of a retrieval, consumed by the injection layer.
type RankedResult struct {
	Hash         int64        `json:"hash"`
	CollectionID string       `json:"collectionId"`
	Text         string       `json:"text"`
	FinalScore   float64      `json:"finalScore"`
	Inferred     bool         `json:"inferred"`
	Provenance   []Provenance `json:"provenance,omitempty"`
}

// Explain joins the provenance entries into one line.
func (r RankedResult) Explain() string {
	parts := make([]string, len(r.Provenance))
	for i, p := range r.Provenance {
		parts[i] = p.String()
	}
	return strings.Join(parts, "; ")
}
