// Package cli provides the cobra command tree for loreweave.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
	"github.com/custodia-labs/loreweave/internal/logger"
)

// version is set at build time or by SetVersion.
var version = "dev"

var verbose bool

// Service instances injected by the composition root.
var (
	retrievalService  driving.RetrievalService
	ingestionService  driving.IngestionService
	collectionService driving.CollectionService
	settingsService   driving.SettingsService
	configWatcher     ConfigWatcher
)

// ConfigWatcher reloads settings while a long-running command is active.
type ConfigWatcher interface {
	Start() error
	Stop()
}

// Services holds everything the commands need. Nil fields disable the
// commands that depend on them.
type Services struct {
	Retrieval  driving.RetrievalService
	Ingestion  driving.IngestionService
	Collection driving.CollectionService
	Settings   driving.SettingsService
	Watcher    ConfigWatcher
}

var rootCmd = &cobra.Command{
	Use:   "loreweave",
	Short: "Hybrid lore retrieval for conversational agents",
	Long: `loreweave ranks pre-split lore chunks for a live conversation.

It combines vector similarity, keyword boosts, chunk links and keyword
fallback across every activated collection, and returns a bounded,
deterministic list of chunks to inject into a prompt.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline diagnostics to stderr")
}

// SetServices injects the service implementations.
func SetServices(s Services) {
	retrievalService = s.Retrieval
	ingestionService = s.Ingestion
	collectionService = s.Collection
	settingsService = s.Settings
	configWatcher = s.Watcher
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
