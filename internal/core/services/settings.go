package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/loreweave/internal/core/domain"
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyGlobalTopK       = "retrieval.global_top_k"
	keyCollectionTopK   = "retrieval.collection_top_k"
	keyVectorThreshold  = "retrieval.vector_threshold"
	keyMaxConcurrency   = "retrieval.max_concurrency"
	keyGroupBoost       = "retrieval.group_boost"
	keyCrosslinkEnabled = "retrieval.crosslink.enabled"
	keyCrosslinkThresh  = "retrieval.crosslink.threshold"
	keyCrosslinkLimit   = "retrieval.crosslink.limit"
	keyCrosslinkFactor  = "retrieval.crosslink.base_factor"
	keyFallbackEnabled  = "retrieval.fallback.enabled"
	keyFallbackMin      = "retrieval.fallback.min_results"
	keyFallbackLimit    = "retrieval.fallback.limit"
	keyFallbackPriority = "retrieval.fallback.priority"
	keySoftBoost        = "retrieval.links.soft_boost"
	keyForceDiscount    = "retrieval.links.force_discount"
	keyVectorBaseURL    = "vector.base_url"
	keyVectorMetric     = "vector.score_metric"
	keyVectorRPS        = "vector.requests_per_second"
	keyVectorTimeout    = "vector.timeout_seconds"

	keyPipelineProcessors = "pipeline.processors"
)

// binding ties a config key to a field of AppSettings. field returns one of
// *int, *float64, *bool, *string or *domain.ScoreMetric.
type binding struct {
	key   string
	field func(s *domain.AppSettings) any
}

var bindings = []binding{
	{keyGlobalTopK, func(s *domain.AppSettings) any { return &s.Retrieval.GlobalTopK }},
	{keyCollectionTopK, func(s *domain.AppSettings) any { return &s.Retrieval.CollectionTopK }},
	{keyVectorThreshold, func(s *domain.AppSettings) any { return &s.Retrieval.VectorThreshold }},
	{keyMaxConcurrency, func(s *domain.AppSettings) any { return &s.Retrieval.MaxConcurrency }},
	{keyGroupBoost, func(s *domain.AppSettings) any { return &s.Retrieval.GroupBoost }},
	{keyCrosslinkEnabled, func(s *domain.AppSettings) any { return &s.Retrieval.Crosslink.Enabled }},
	{keyCrosslinkThresh, func(s *domain.AppSettings) any { return &s.Retrieval.Crosslink.Threshold }},
	{keyCrosslinkLimit, func(s *domain.AppSettings) any { return &s.Retrieval.Crosslink.Limit }},
	{keyCrosslinkFactor, func(s *domain.AppSettings) any { return &s.Retrieval.Crosslink.BaseFactor }},
	{keyFallbackEnabled, func(s *domain.AppSettings) any { return &s.Retrieval.Fallback.Enabled }},
	{keyFallbackMin, func(s *domain.AppSettings) any { return &s.Retrieval.Fallback.MinResults }},
	{keyFallbackLimit, func(s *domain.AppSettings) any { return &s.Retrieval.Fallback.Limit }},
	{keyFallbackPriority, func(s *domain.AppSettings) any { return &s.Retrieval.Fallback.Priority }},
	{keySoftBoost, func(s *domain.AppSettings) any { return &s.Retrieval.Links.SoftBoost }},
	{keyForceDiscount, func(s *domain.AppSettings) any { return &s.Retrieval.Links.ForceDiscount }},
	{keyVectorBaseURL, func(s *domain.AppSettings) any { return &s.Vector.BaseURL }},
	{keyVectorMetric, func(s *domain.AppSettings) any { return &s.Vector.Metric }},
	{keyVectorRPS, func(s *domain.AppSettings) any { return &s.Vector.RequestsPerSecond }},
	{keyVectorTimeout, func(s *domain.AppSettings) any { return &s.Vector.TimeoutSeconds }},
}

// processorConfigKeys are the per-processor options read from pipeline.<name>.<key>.
var processorConfigKeys = []string{"soft_threshold", "force_threshold", "max_keywords", "min_weight"}

var validate = validator.New()

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Keys absent from the store
// keep their defaults; an unknown score metric falls back to the default.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	settings := domain.DefaultAppSettings()

	for _, b := range bindings {
		if _, exists := s.configStore.Get(b.key); !exists {
			continue
		}
		switch p := b.field(&settings).(type) {
		case *int:
			*p = s.configStore.GetInt(b.key)
		case *float64:
			*p = s.configStore.GetFloat(b.key)
		case *bool:
			*p = s.configStore.GetBool(b.key)
		case *string:
			*p = s.configStore.GetString(b.key)
		case *domain.ScoreMetric:
			if m := domain.ScoreMetric(s.configStore.GetString(b.key)); m.IsValid() {
				*p = m
			}
		}
	}

	return &settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := validateSettings(settings); err != nil {
		return err
	}

	for _, b := range bindings {
		var value any
		switch p := b.field(settings).(type) {
		case *int:
			value = *p
		case *float64:
			value = *p
		case *bool:
			value = *p
		case *string:
			value = *p
		case *domain.ScoreMetric:
			value = p.String()
		}
		if err := s.configStore.Set(b.key, value); err != nil {
			return fmt.Errorf("save %s: %w", b.key, err)
		}
	}

	return nil
}

// Set parses value according to the type of key and persists the result.
func (s *SettingsService) Set(key, value string) error {
	b, ok := findBinding(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch p := b.field(settings).(type) {
	case *int:
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects an integer: %q", domain.ErrInvalidInput, key, value)
		}
		*p = v
	case *float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s expects a number: %q", domain.ErrInvalidInput, key, value)
		}
		*p = v
	case *bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false: %q", domain.ErrInvalidInput, key, value)
		}
		*p = v
	case *string:
		*p = value
	case *domain.ScoreMetric:
		m := domain.ScoreMetric(strings.ToLower(value))
		if !m.IsValid() {
			return fmt.Errorf("%w: invalid score metric: %s", domain.ErrInvalidInput, value)
		}
		*p = m
	}

	return s.Save(settings)
}

// Entries lists every known key with its effective value.
func (s *SettingsService) Entries() ([]driving.SettingEntry, error) {
	settings, err := s.Get()
	if err != nil {
		return nil, err
	}

	entries := make([]driving.SettingEntry, 0, len(bindings))
	for _, b := range bindings {
		var value string
		switch p := b.field(settings).(type) {
		case *int:
			value = strconv.Itoa(*p)
		case *float64:
			value = strconv.FormatFloat(*p, 'g', -1, 64)
		case *bool:
			value = strconv.FormatBool(*p)
		case *string:
			value = *p
		case *domain.ScoreMetric:
			value = p.String()
		}
		entries = append(entries, driving.SettingEntry{Key: b.key, Value: value})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// Validate checks the stored settings.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return validateSettings(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// GetPipelineConfig returns the ingestion processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	if processors := s.configStore.GetStringSlice(keyPipelineProcessors); len(processors) > 0 {
		defaults.Processors = processors
	}

	for _, name := range defaults.Processors {
		cfg := s.loadProcessorConfig("pipeline." + name + ".")
		if len(cfg) == 0 {
			continue
		}
		if defaults.ProcessorConfigs == nil {
			defaults.ProcessorConfigs = make(map[string]map[string]any)
		}
		existing := defaults.ProcessorConfigs[name]
		if existing == nil {
			existing = make(map[string]any)
		}
		for k, v := range cfg {
			existing[k] = v
		}
		defaults.ProcessorConfigs[name] = existing
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)
	for _, key := range processorConfigKeys {
		if val, exists := s.configStore.Get(prefix + key); exists {
			cfg[key] = val
		}
	}
	return cfg
}

// SettingKeys returns every settable key in sorted order.
func SettingKeys() []string {
	keys := make([]string, 0, len(bindings))
	for _, b := range bindings {
		keys = append(keys, b.key)
	}
	sort.Strings(keys)
	return keys
}

func findBinding(key string) (binding, bool) {
	for _, b := range bindings {
		if b.key == key {
			return b, true
		}
	}
	return binding{}, false
}

// validateSettings runs struct-tag validation and flattens the result into
// one error wrapping domain.ErrInvalidInput.
func validateSettings(settings *domain.AppSettings) error {
	err := validate.Struct(settings)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate settings: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, formatValidationError(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "AppSettings.")
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a URL", field)
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
