package domain

const unknownDescription = "Unknown"

// ScoreMetric defines the native score semantics of the vector service.
type ScoreMetric string

// Available score metrics.
const (
	// ScoreMetricSimilarity means higher is better, nominally in [0,1].
	ScoreMetricSimilarity ScoreMetric = "similarity"

	// ScoreMetricDistance means lower is better, in [0,inf).
	ScoreMetricDistance ScoreMetric = "distance"
)

// IsValid returns true if the metric is recognised.
func (m ScoreMetric) IsValid() bool {
	return m == ScoreMetricSimilarity || m == ScoreMetricDistance
}

// String returns the string representation.
func (m ScoreMetric) String() string {
	return string(m)
}

// Description returns a human-readable description of the metric.
func (m ScoreMetric) Description() string {
	switch m {
	case ScoreMetricSimilarity:
		return "Similarity (higher is better)"
	case ScoreMetricDistance:
		return "Distance (lower is better)"
	default:
		return unknownDescription
	}
}

// CrosslinkSettings tunes the crosslink deriver.
type CrosslinkSettings struct {
	Enabled    bool
	Threshold  float64 `validate:"gte=0,lte=2"`
	Limit      int     `validate:"gte=0"`
	BaseFactor float64 `validate:"gte=0,lte=1"`
}

// FallbackSettings tunes the keyword fallback retriever.
type FallbackSettings struct {
	Enabled bool

	// MinResults is the primary hit count below which fallback activates.
	MinResults int `validate:"gte=0"`

	// Limit is the maximum number of fallback candidates.
	Limit int `validate:"gte=0"`

	// Priority places fallback candidates ahead of everything else.
	Priority bool
}

// LinkSettings tunes the link resolver's scoring side effects.
type LinkSettings struct {
	// SoftBoost is added to the fused score of soft-linked targets.
	SoftBoost float64 `validate:"gte=0,lte=1"`

	// ForceDiscount scales the source's base score for force-added targets.
	ForceDiscount float64 `validate:"gte=0,lte=1"`
}

// RetrievalSettings holds every tuning knob of the ranking pipeline.
type RetrievalSettings struct {
	// GlobalTopK caps the final result set. Applied after all expansion.
	GlobalTopK int `validate:"gte=1"`

	// CollectionTopK is sent to the vector service for each collection.
	CollectionTopK int `validate:"gte=1"`

	// VectorThreshold is the minimum normalised similarity for a primary hit.
	VectorThreshold float64 `validate:"gte=0,lte=1"`

	// MaxConcurrency bounds the fan-out worker pool.
	MaxConcurrency int `validate:"gte=1"`

	// GroupBoost is added to a chunk's keyword boost when its chunk group fires.
	GroupBoost int `validate:"gte=0"`

	Crosslink CrosslinkSettings
	Fallback  FallbackSettings
	Links     LinkSettings
}

// DefaultRetrievalSettings returns the tuned defaults.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		GlobalTopK:      10,
		CollectionTopK:  15,
		VectorThreshold: 0.25,
		MaxConcurrency:  4,
		GroupBoost:      15,
		Crosslink: CrosslinkSettings{
			Enabled:    true,
			Threshold:  0.25,
			Limit:      3,
			BaseFactor: 0.5,
		},
		Fallback: FallbackSettings{
			Enabled:    true,
			MinResults: 3,
			Limit:      5,
		},
		Links: LinkSettings{
			SoftBoost:     0.1,
			ForceDiscount: 0.9,
		},
	}
}

// VectorSettings holds vector-similarity service configuration.
type VectorSettings struct {
	// BaseURL is the remote service endpoint. Empty selects the local service.
	BaseURL string `validate:"omitempty,url"`

	// Metric is the native score semantics of the service.
	Metric ScoreMetric `validate:"oneof=similarity distance"`

	// RequestsPerSecond throttles outgoing requests.
	RequestsPerSecond float64 `validate:"gte=0"`

	// TimeoutSeconds bounds each request.
	TimeoutSeconds int `validate:"gte=1"`
}

// IsRemote returns true when a remote vector service is configured.
func (v VectorSettings) IsRemote() bool {
	return v.BaseURL != ""
}

// DefaultVectorSettings returns local-service defaults.
func DefaultVectorSettings() VectorSettings {
	return VectorSettings{
		Metric:            ScoreMetricSimilarity,
		RequestsPerSecond: 20,
		TimeoutSeconds:    15,
	}
}

// AppSettings holds all application settings.
type AppSettings struct {
	Retrieval RetrievalSettings
	Vector    VectorSettings
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Retrieval: DefaultRetrievalSettings(),
		Vector:    DefaultVectorSettings(),
	}
}

// AllScoreMetrics returns all available score metrics.
func AllScoreMetrics() []ScoreMetric {
	return []ScoreMetric{ScoreMetricSimilarity, ScoreMetricDistance}
}

// PipelineConfig holds ingestion processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default ingestion pipeline:
// keyword synthesis followed by auto-linking.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"keywords", "autolink"},
		ProcessorConfigs: map[string]map[string]any{
			"autolink": {
				"soft_threshold":  3,
				"force_threshold": 7,
			},
		},
	}
}
