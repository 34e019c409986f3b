package driving

import "github.com/custodia-labs/loreweave/internal/core/domain"

// SettingEntry is one configuration key with its effective value.
type SettingEntry struct {
	Key   string
	Value string
}

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save validates and persists application settings.
	Save(settings *domain.AppSettings) error

	// Set updates one setting by its config key.
	// The value is parsed according to the key's type.
	Set(key, value string) error

	// Entries lists every known key with its effective value, in key order.
	Entries() ([]SettingEntry, error)

	// Validate checks the current settings.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// GetPipelineConfig returns the ingestion processor pipeline configuration.
	GetPipelineConfig() domain.PipelineConfig
}
