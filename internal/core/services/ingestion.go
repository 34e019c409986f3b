package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
	"github.com/custodia-labs/loreweave/internal/keywords"
	"github.com/custodia-labs/loreweave/internal/logger"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// contentHashMask keeps derived hashes within the integer range JSON
// consumers can represent exactly.
const contentHashMask = 1<<53 - 1

// IngestionService enriches pre-split chunks, persists them and indexes
// their text in the vector service.
type IngestionService struct {
	store    driven.CollectionStore
	vector   driven.VectorService
	pipeline driven.ChunkPipeline
	synth    *keywords.Synthesizer
}

// NewIngestionService creates an ingestion service.
// The vector service and pipeline are optional: without a vector service
// chunks are stored but not indexed, without a pipeline they are stored as
// given. A nil synth uses the default priority index and keyword groups.
func NewIngestionService(
	store driven.CollectionStore,
	vector driven.VectorService,
	pipeline driven.ChunkPipeline,
	synth *keywords.Synthesizer,
) *IngestionService {
	if synth == nil {
		synth = keywords.NewSynthesizer(keywords.DefaultPriorityIndex(), keywords.DefaultKeywordGroups())
	}
	return &IngestionService{
		store:    store,
		vector:   vector,
		pipeline: pipeline,
		synth:    synth,
	}
}

// Ingest runs one batch through the pipeline, persists it and indexes it.
// The batch is the auto-linker's boundary: links are only drawn between
// chunks of the same call.
func (s *IngestionService) Ingest(
	ctx context.Context, collectionID string, chunks []domain.Chunk,
) (driving.IngestReport, error) {
	report := driving.IngestReport{BatchID: uuid.New().String()}

	coll, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return report, err
	}

	batch, err := s.prepareBatch(chunks, report.BatchID, &report)
	if err != nil {
		return report, err
	}
	if len(batch) == 0 {
		logger.Info("Nothing to ingest into %s", collectionID)
		return report, nil
	}

	if s.pipeline != nil {
		batch, err = s.pipeline.Process(ctx, coll, batch)
		if err != nil {
			return report, fmt.Errorf("process batch: %w", err)
		}
	}

	if err := s.store.SaveChunks(ctx, collectionID, batch); err != nil {
		return report, fmt.Errorf("save chunks: %w", err)
	}
	report.Chunks = len(batch)

	for i := range batch {
		for _, l := range batch[i].ChunkLinks {
			switch l.Mode {
			case domain.LinkModeForce:
				report.ForceLinks++
			case domain.LinkModeSoft:
				report.SoftLinks++
			}
		}
	}

	if err := s.index(ctx, collectionID, batch, &report); err != nil {
		return report, err
	}

	logger.Info("Ingested %d chunks into %s (batch %s, %d indexed, %d already indexed)",
		report.Chunks, collectionID, report.BatchID, report.Indexed, report.Skipped)
	return report, nil
}

// prepareBatch drops empty chunks, fills in content hashes, stamps the
// batch ID and checks field ranges. A hash repeated within the batch keeps
// its first occurrence.
func (s *IngestionService) prepareBatch(
	chunks []domain.Chunk, batchID string, report *driving.IngestReport,
) ([]domain.Chunk, error) {
	seen := make(map[int64]bool, len(chunks))
	batch := make([]domain.Chunk, 0, len(chunks))
	for i := range chunks {
		c := chunks[i].Clone()
		if strings.TrimSpace(c.Text) == "" {
			report.DroppedEmpty++
			continue
		}
		if c.Hash == 0 {
			c.Hash = ContentHash(c.Text)
		}
		if seen[c.Hash] {
			report.Duplicates++
			continue
		}
		if err := validateChunk(&c); err != nil {
			return nil, err
		}
		seen[c.Hash] = true
		c.BatchID = batchID
		batch = append(batch, c)
	}
	return batch, nil
}

// index inserts the texts of hashes the vector service does not know yet.
func (s *IngestionService) index(
	ctx context.Context, collectionID string, batch []domain.Chunk, report *driving.IngestReport,
) error {
	if s.vector == nil {
		logger.Debug("No vector service, %d chunks stored unindexed", len(batch))
		return nil
	}

	known, err := s.vector.ListHashes(ctx, collectionID)
	if err != nil {
		return fmt.Errorf("list indexed hashes: %w", err)
	}
	indexed := make(map[int64]bool, len(known))
	for _, h := range known {
		indexed[h] = true
	}

	var items []driven.VectorItem
	for i := range batch {
		if indexed[batch[i].Hash] {
			report.Skipped++
			continue
		}
		items = append(items, driven.VectorItem{Hash: batch[i].Hash, Text: batch[i].Text})
	}
	if len(items) == 0 {
		return nil
	}

	if err := s.vector.Insert(ctx, collectionID, items); err != nil {
		return fmt.Errorf("index chunks: %w", err)
	}
	report.Indexed = len(items)
	return nil
}

// RegenerateKeywords rebuilds the derived keyword fields of one chunk.
// System keywords, regex, weights, custom and disabled keywords are all
// replaced. Text, labels and links are kept.
func (s *IngestionService) RegenerateKeywords(
	ctx context.Context, collectionID string, hash int64,
) (*domain.Chunk, error) {
	coll, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}

	stored, ok := coll.Chunks[hash]
	if !ok {
		return nil, fmt.Errorf("chunk %d in %s: %w", hash, collectionID, domain.ErrNotFound)
	}

	c := s.regenerate(stored, collectionSections(coll))
	if err := s.store.SaveChunks(ctx, collectionID, []domain.Chunk{c}); err != nil {
		return nil, fmt.Errorf("save chunk: %w", err)
	}

	logger.Info("Regenerated keywords for chunk %d in %s", hash, collectionID)
	return &c, nil
}

// RegenerateCollection rebuilds the derived keyword fields of every chunk
// and returns how many chunks were rewritten.
func (s *IngestionService) RegenerateCollection(ctx context.Context, collectionID string) (int, error) {
	coll, err := s.loadCollection(ctx, collectionID)
	if err != nil {
		return 0, err
	}

	sections := collectionSections(coll)
	out := make([]domain.Chunk, 0, len(coll.Chunks))
	for _, h := range coll.Hashes() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		out = append(out, s.regenerate(coll.Chunks[h], sections))
	}

	if len(out) > 0 {
		if err := s.store.SaveChunks(ctx, collectionID, out); err != nil {
			return 0, fmt.Errorf("save chunks: %w", err)
		}
	}

	logger.Info("Regenerated keywords for %d chunks in %s", len(out), collectionID)
	return len(out), nil
}

func (s *IngestionService) regenerate(stored *domain.Chunk, sections []string) domain.Chunk {
	c := stored.Clone()
	c.ResetKeywords()
	md := s.synth.Synthesize(keywords.SynthesisInput{
		Text:          c.Text,
		Section:       c.Section,
		Topic:         c.Topic,
		Tags:          c.Tags,
		KnownSections: sections,
	})
	md.Apply(&c)
	return c
}

// loadCollection returns collection metadata with its chunks attached.
func (s *IngestionService) loadCollection(ctx context.Context, id string) (*domain.Collection, error) {
	coll, err := s.store.GetCollection(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get collection %s: %w", id, err)
	}
	chunks, err := s.store.GetChunks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get chunks of %s: %w", id, err)
	}
	coll.Chunks = chunks
	return coll, nil
}

// ContentHash derives a stable chunk hash from its text.
func ContentHash(text string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	v := int64(h.Sum64() & contentHashMask)
	if v == 0 {
		return 1
	}
	return v
}

// collectionSections returns the distinct section labels in hash order.
func collectionSections(coll *domain.Collection) []string {
	seen := make(map[string]bool)
	var out []string
	for _, h := range coll.Hashes() {
		sec := coll.Chunks[h].Section
		key := strings.ToLower(strings.TrimSpace(sec))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sec)
	}
	return out
}

func validateChunk(c *domain.Chunk) error {
	if c.Importance != nil && (*c.Importance < domain.MinImportance || *c.Importance > domain.MaxImportance) {
		return fmt.Errorf("%w: chunk %d importance %d outside [%d,%d]",
			domain.ErrInvalidInput, c.Hash, *c.Importance, domain.MinImportance, domain.MaxImportance)
	}
	for kw, w := range c.CustomWeights {
		if w < domain.MinKeywordPriority || w > domain.MaxKeywordPriority {
			return fmt.Errorf("%w: chunk %d weight %q=%d outside [%d,%d]",
				domain.ErrInvalidInput, c.Hash, kw, w, domain.MinKeywordPriority, domain.MaxKeywordPriority)
		}
	}
	for _, l := range c.ChunkLinks {
		if !l.Mode.IsValid() {
			return fmt.Errorf("%w: chunk %d link to %d has mode %q", domain.ErrInvalidInput, c.Hash, l.TargetHash, l.Mode)
		}
	}
	return nil
}
