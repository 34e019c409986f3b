// Package autolink provides the ingestion processor that turns cross-section
// mention counts into chunk links.
package autolink

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
)

// Name is the registry name of the processor.
const Name = "autolink"

// Default mention thresholds.
const (
	DefaultSoftThreshold  = 3
	DefaultForceThreshold = 7
)

// Thresholds decide the link mode from a mention count.
type Thresholds struct {
	Soft  int
	Force int
}

// DefaultThresholds returns soft at 3 mentions and force at 7.
func DefaultThresholds() Thresholds {
	return Thresholds{Soft: DefaultSoftThreshold, Force: DefaultForceThreshold}
}

// Validate checks 1 <= Soft <= Force.
func (t Thresholds) Validate() error {
	if t.Soft < 1 || t.Force < t.Soft {
		return fmt.Errorf("%w: autolink thresholds soft=%d force=%d", domain.ErrInvalidInput, t.Soft, t.Force)
	}
	return nil
}

// Mode returns the link mode for count, or false when below Soft.
func (t Thresholds) Mode(count int) (domain.LinkMode, bool) {
	switch {
	case count >= t.Force:
		return domain.LinkModeForce, true
	case count >= t.Soft:
		return domain.LinkModeSoft, true
	default:
		return "", false
	}
}

// Link adds links between chunks of one batch from their SectionMentions.
// The target of a mentioned section is the first chunk of the batch carrying
// that section label. Self links and links to a target the source already
// links to are skipped. Chunks outside the batch are never linked. Input
// chunks are not modified.
func Link(batch []domain.Chunk, th Thresholds) []domain.Chunk {
	first := make(map[string]int64)
	for i := range batch {
		key := sectionKey(batch[i].Section)
		if key == "" {
			continue
		}
		if _, ok := first[key]; !ok {
			first[key] = batch[i].Hash
		}
	}

	out := make([]domain.Chunk, len(batch))
	for i := range batch {
		c := batch[i].Clone()

		sections := make([]string, 0, len(c.SectionMentions))
		for sec := range c.SectionMentions {
			sections = append(sections, sec)
		}
		sort.Strings(sections)

		for _, sec := range sections {
			mode, ok := th.Mode(c.SectionMentions[sec])
			if !ok {
				continue
			}
			target, ok := first[sectionKey(sec)]
			if !ok || target == c.Hash || c.HasLink(target) {
				continue
			}
			c.ChunkLinks = append(c.ChunkLinks, domain.ChunkLink{TargetHash: target, Mode: mode})
		}
		out[i] = c
	}
	return out
}

// Ensure Processor implements the interface.
var _ driven.ChunkProcessor = (*Processor)(nil)

// Processor is the auto-linker as a pipeline stage.
type Processor struct {
	th Thresholds
}

// New creates an auto-link processor.
func New(th Thresholds) *Processor {
	return &Processor{th: th}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process links the batch. The collection is not consulted.
func (p *Processor) Process(_ context.Context, _ *domain.Collection, batch []domain.Chunk) ([]domain.Chunk, error) {
	return Link(batch, p.th), nil
}

func sectionKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
