package ranking

import (
	"math"
	"sort"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// NormalizeScore maps a native vector score onto higher-is-better [0,1].
// Similarities are clamped; distances map through 1/(1+d).
func NormalizeScore(metric domain.ScoreMetric, raw float64) float64 {
	if math.IsNaN(raw) {
		return 0
	}
	if metric == domain.ScoreMetricDistance {
		if raw < 0 {
			raw = 0
		}
		return 1 / (1 + raw)
	}
	return clamp01(raw)
}

// NativeThreshold converts a normalised threshold into the service's native
// metric. A threshold of zero or less means no filtering in both metrics.
func NativeThreshold(metric domain.ScoreMetric, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if metric == domain.ScoreMetricDistance {
		if t >= 1 {
			return 0
		}
		return 1/t - 1
	}
	return clamp01(t)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FuseOptions tunes Fuse.
type FuseOptions struct {
	SoftBoost float64
}

// Fuse computes FinalScore for every candidate:
//
//	(base + keywordBoost/100 + softBoost) * importance/100
//
// Candidates whose chunk has importance 0, or that are missing from the
// corpus, are dropped.
func Fuse(cands []domain.Candidate, corpus *Corpus, opts FuseOptions) []domain.Candidate {
	out := cands[:0]
	for _, c := range cands {
		ch, ok := corpus.Get(c.Hash)
		if !ok {
			continue
		}
		imp := ch.EffectiveImportance()
		if imp == 0 {
			continue
		}
		score := c.BaseScore + float64(c.KeywordBoost)/100
		if c.SoftLinked {
			score += opts.SoftBoost
		}
		c.FinalScore = score * float64(imp) / 100
		out = append(out, c)
	}
	return out
}

// Sort orders candidates by fused score descending with hash ascending as a
// total tie-break. With fallbackFirst, fallback-sourced candidates lead.
func Sort(cands []domain.Candidate, fallbackFirst bool) {
	sort.SliceStable(cands, func(i, j int) bool {
		if fallbackFirst {
			fi, fj := cands[i].HasOrigin(domain.OriginFallback), cands[j].HasOrigin(domain.OriginFallback)
			if fi != fj {
				return fi
			}
		}
		if cands[i].FinalScore != cands[j].FinalScore {
			return cands[i].FinalScore > cands[j].FinalScore
		}
		return cands[i].Hash < cands[j].Hash
	})
}

// SortByBase orders candidates by base score descending, hash ascending.
func SortByBase(cands []domain.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].BaseScore != cands[j].BaseScore {
			return cands[i].BaseScore > cands[j].BaseScore
		}
		return cands[i].Hash < cands[j].Hash
	})
}
