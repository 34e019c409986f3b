package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/loreweave/internal/core/domain"
)

// snippetLength caps the chunk text shown per result in table output.
const snippetLength = 160

var (
	retrieveCharacter string
	retrieveSession   string
	retrieveLibraries []string
	retrieveJSON      bool
	retrieveExplain   bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query...]",
	Short: "Rank lore chunks for a query",
	Long: `Runs the full retrieval pipeline for a query and prints the ranked chunks.

Collections are filtered by scope and activated by their triggers and
conditions before vector hits, crosslinks, keyword fallback and chunk
links are merged and scored. The result size is bounded by the
retrieval.global_top_k setting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().StringVar(&retrieveCharacter, "character", "", "character ID for character-scoped collections")
	retrieveCmd.Flags().StringVar(&retrieveSession, "session", "", "session ID for session-scoped collections")
	retrieveCmd.Flags().StringSliceVar(&retrieveLibraries, "library", nil, "restrict to these libraries")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output results as JSON")
	retrieveCmd.Flags().BoolVar(&retrieveExplain, "explain", false, "show why each chunk was selected")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	if retrievalService == nil {
		return errors.New("retrieval service not configured")
	}

	query := strings.Join(args, " ")
	scope := domain.ScopeContext{
		CharacterID: retrieveCharacter,
		SessionID:   retrieveSession,
		Libraries:   retrieveLibraries,
	}

	results, err := retrievalService.Retrieve(cmd.Context(), query, scope)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if retrieveJSON {
		return outputRetrieveJSON(cmd, results)
	}

	outputRetrieveTable(cmd, results)
	return nil
}

func outputRetrieveJSON(cmd *cobra.Command, results []domain.RankedResult) error {
	if !retrieveExplain {
		stripped := make([]domain.RankedResult, len(results))
		for i := range results {
			stripped[i] = results[i]
			stripped[i].Provenance = nil
		}
		results = stripped
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func outputRetrieveTable(cmd *cobra.Command, results []domain.RankedResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	st := stylesFor(cmd.OutOrStdout())

	cmd.Println(st.Title.Render("Results:"))
	cmd.Println()
	for i := range results {
		r := &results[i]

		// Format: [N] collection #hash (score) [inferred]
		line := fmt.Sprintf("  [%d] %s #%d %s", i+1, r.CollectionID, r.Hash,
			st.Score.Render(fmt.Sprintf("(%.3f)", r.FinalScore)))
		if r.Inferred {
			line += " " + st.Inferred.Render("inferred")
		}
		cmd.Println(line)
		cmd.Printf("      %s\n", snippet(r.Text, snippetLength))
		if retrieveExplain {
			for _, p := range r.Provenance {
				cmd.Printf("      %s\n", st.Muted.Render("- "+p.String()))
			}
		}
		cmd.Println()
	}
}

// snippet collapses whitespace and truncates to at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
