// Command loreweave ranks lore chunks for conversational agents.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/loreweave/internal/adapters/driven/config/file"
	"github.com/custodia-labs/loreweave/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/loreweave/internal/adapters/driven/vector/local"
	"github.com/custodia-labs/loreweave/internal/adapters/driven/vector/remote"
	"github.com/custodia-labs/loreweave/internal/adapters/driving/cli"
	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/core/services"
	"github.com/custodia-labs/loreweave/internal/keywords"
	"github.com/custodia-labs/loreweave/internal/logger"
	"github.com/custodia-labs/loreweave/internal/postprocessors"
)

// version is injected with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	closeFn, err := wire()
	if err != nil {
		fmt.Fprintf(os.Stderr, "loreweave: %v\n", err)
		os.Exit(1)
	}

	err = cli.Execute()
	closeFn()
	if err != nil {
		os.Exit(1)
	}
}

// wire builds every adapter and service and hands them to the CLI.
// The returned function releases the stores.
func wire() (func(), error) {
	configDir, err := file.DefaultConfigDir()
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	dataDir := filepath.Join(configDir, "data")
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	vector, err := newVectorService(settings.Vector, dataDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	index := keywords.DefaultPriorityIndex()
	pipelineCfg := settingsService.GetPipelineConfig()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry, index)
	pipeline, err := postprocessors.Build(registry, pipelineCfg)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build ingestion pipeline: %w", err)
	}

	// Regeneration uses the same limits as the keyword processor.
	kwCfg := pipelineCfg.GetProcessorConfig("keywords")
	synth := keywords.NewSynthesizer(index, keywords.DefaultKeywordGroups()).
		WithLimits(configInt(kwCfg, "max_keywords"), configFloat(kwCfg, "min_weight"))

	collections := store.CollectionStore()
	retrieval := services.NewRetrievalService(collections, vector, index, keywords.NewRegexCache(), settings.Retrieval)

	watcher, err := file.NewWatcher(configStore, func() {
		updated, err := settingsService.Get()
		if err != nil {
			logger.Warn("reload settings: %v", err)
			return
		}
		if err := settingsService.Validate(); err != nil {
			logger.Warn("ignoring invalid settings: %v", err)
			return
		}
		retrieval.UpdateSettings(updated.Retrieval)
		logger.Info("settings reloaded")
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Retrieval:  retrieval,
		Ingestion:  services.NewIngestionService(collections, vector, pipeline, synth),
		Collection: services.NewCollectionService(collections, vector),
		Settings:   settingsService,
		Watcher:    watcher,
	})

	return func() {
		if err := store.Close(); err != nil {
			logger.Warn("close store: %v", err)
		}
	}, nil
}

// newVectorService selects the remote service when a base URL is configured
// and the in-process lexical service otherwise.
func newVectorService(cfg domain.VectorSettings, dataDir string) (driven.VectorService, error) {
	if cfg.IsRemote() {
		client, err := remote.NewClient(remote.Config{
			BaseURL:           cfg.BaseURL,
			Metric:            cfg.Metric,
			Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
			RequestsPerSecond: cfg.RequestsPerSecond,
		})
		if err != nil {
			return nil, fmt.Errorf("create vector client: %w", err)
		}
		return client, nil
	}

	svc, err := local.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open local vector index: %w", err)
	}
	return svc, nil
}

func configInt(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func configFloat(cfg map[string]any, key string) float64 {
	switch v := cfg[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return 0
}
