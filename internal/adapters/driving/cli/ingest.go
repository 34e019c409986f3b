package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [collection-id] [file]",
	Short: "Ingest pre-split chunks from a JSON file",
	Long: `Reads chunks from a JSON file and ingests them into a collection as one batch.

The file holds either an array of chunks or an object with a "chunks"
array. Each chunk needs at least "text"; "hash" is derived from the text
when omitted. Keywords are synthesised, chunks mentioning each other's
sections are linked, and new chunks are indexed in the vector service.`,
	Args: cobra.ExactArgs(2),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	collectionID, path := args[0], args[1]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read chunk file: %w", err)
	}

	chunks, err := parseChunkFile(data)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cmd.Printf("Ingesting %s chunks (%s) into %s...\n",
		humanize.Comma(int64(len(chunks))), humanize.Bytes(uint64(len(data))), collectionID)

	report, err := ingestionService.Ingest(cmd.Context(), collectionID, chunks)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	st := stylesFor(cmd.OutOrStdout())
	cmd.Println(st.Success.Render(fmt.Sprintf("Batch %s ingested.", report.BatchID)))
	cmd.Printf("  Stored:   %s\n", humanize.Comma(int64(report.Chunks)))
	cmd.Printf("  Indexed:  %s (%s already indexed)\n",
		humanize.Comma(int64(report.Indexed)), humanize.Comma(int64(report.Skipped)))
	cmd.Printf("  Links:    %d force, %d soft\n", report.ForceLinks, report.SoftLinks)
	if report.DroppedEmpty > 0 || report.Duplicates > 0 {
		cmd.Println(st.Warning.Render(fmt.Sprintf("  Dropped:  %d empty, %d duplicate",
			report.DroppedEmpty, report.Duplicates)))
	}
	return nil
}

// parseChunkFile accepts a JSON array of chunks or {"chunks": [...]}.
func parseChunkFile(data []byte) ([]domain.Chunk, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidInput)
	}

	if strings.HasPrefix(trimmed, "[") {
		var chunks []domain.Chunk
		if err := json.Unmarshal(data, &chunks); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
		}
		return chunks, nil
	}

	var doc struct {
		Chunks []domain.Chunk `json:"chunks"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if doc.Chunks == nil {
		return nil, fmt.Errorf("%w: no chunks array", domain.ErrInvalidInput)
	}
	return doc.Chunks, nil
}
