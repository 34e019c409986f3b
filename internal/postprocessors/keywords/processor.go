// Package keywords provides the ingestion processor that derives keyword
// metadata for every chunk of a batch.
package keywords

import (
	"context"
	"strings"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/keywords"
)

// Name is the registry name of the processor.
const Name = "keywords"

// Ensure Processor implements the interface.
var _ driven.ChunkProcessor = (*Processor)(nil)

// Processor runs the synthesizer over a batch.
type Processor struct {
	synth *keywords.Synthesizer
}

// New creates a keyword processor.
func New(synth *keywords.Synthesizer) *Processor {
	return &Processor{synth: synth}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process synthesises keywords for each chunk. Known sections are collected
// from the collection's stored chunks and the batch, so mention counts see
// every section label. Input chunks are not modified.
func (p *Processor) Process(ctx context.Context, coll *domain.Collection, batch []domain.Chunk) ([]domain.Chunk, error) {
	sections := KnownSections(coll, batch)

	out := make([]domain.Chunk, len(batch))
	for i := range batch {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := batch[i].Clone()
		md := p.synth.Synthesize(keywords.SynthesisInput{
			Text:          c.Text,
			Section:       c.Section,
			Topic:         c.Topic,
			Tags:          c.Tags,
			KnownSections: sections,
		})
		md.Apply(&c)
		out[i] = c
	}
	return out, nil
}

// KnownSections returns the distinct section labels of the stored chunks
// (in hash order) followed by those of the batch, compared case-insensitively.
func KnownSections(coll *domain.Collection, batch []domain.Chunk) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(sec string) {
		key := strings.ToLower(strings.TrimSpace(sec))
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, sec)
	}
	if coll != nil {
		for _, h := range coll.Hashes() {
			add(coll.Chunks[h].Section)
		}
	}
	for i := range batch {
		add(batch[i].Section)
	}
	return out
}
