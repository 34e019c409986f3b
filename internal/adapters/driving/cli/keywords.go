package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "Manage derived chunk keywords",
}

var keywordsRegenerateCmd = &cobra.Command{
	Use:   "regenerate [collection-id] [hash]",
	Short: "Rebuild system keywords",
	Long: `Rebuilds the system keywords, weights, patterns and section mentions of one
chunk, or of every chunk in the collection when no hash is given.
Custom keywords, custom patterns and links are left untouched.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runKeywordsRegenerate,
}

func init() {
	keywordsCmd.AddCommand(keywordsRegenerateCmd)
	rootCmd.AddCommand(keywordsCmd)
}

func runKeywordsRegenerate(cmd *cobra.Command, args []string) error {
	if ingestionService == nil {
		return errors.New("ingestion service not configured")
	}

	collectionID := args[0]

	if len(args) == 1 {
		n, err := ingestionService.RegenerateCollection(cmd.Context(), collectionID)
		if err != nil {
			return fmt.Errorf("regeneration failed: %w", err)
		}
		cmd.Printf("Regenerated keywords for %d chunks in %s.\n", n, collectionID)
		return nil
	}

	hash, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chunk hash %q: %w", args[1], err)
	}

	chunk, err := ingestionService.RegenerateKeywords(cmd.Context(), collectionID, hash)
	if err != nil {
		return fmt.Errorf("regeneration failed: %w", err)
	}

	cmd.Printf("Regenerated keywords for chunk #%d.\n", chunk.Hash)
	if kws := chunk.ActiveKeywords(); len(kws) > 0 {
		cmd.Printf("  Keywords: %s\n", strings.Join(kws, ", "))
	}
	if len(chunk.KeywordRegex) > 0 {
		cmd.Printf("  Patterns: %d\n", len(chunk.KeywordRegex))
	}
	return nil
}
