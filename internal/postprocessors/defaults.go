package postprocessors

import (
	"github.com/custodia-labs/loreweave/internal/core/ports/driven"
	"github.com/custodia-labs/loreweave/internal/keywords"
	"github.com/custodia-labs/loreweave/internal/postprocessors/autolink"
	kwproc "github.com/custodia-labs/loreweave/internal/postprocessors/keywords"
)

// RegisterDefaults registers all built-in processors with the registry.
// The keyword processor synthesises against index and the default keyword groups.
func RegisterDefaults(r *Registry, index keywords.PriorityIndex) {
	r.Register(kwproc.Name, func(cfg map[string]any) (driven.ChunkProcessor, error) {
		return buildKeywords(index, cfg), nil
	})
	r.Register(autolink.Name, buildAutolink)
}

// buildKeywords creates the keyword synthesis processor.
// Supported config keys:
//   - max_keywords (int): keywords kept per chunk (default: 12)
//   - min_weight (float): minimum accumulated weight (default: 1.0)
func buildKeywords(index keywords.PriorityIndex, cfg map[string]any) driven.ChunkProcessor {
	synth := keywords.NewSynthesizer(index, keywords.DefaultKeywordGroups())
	synth = synth.WithLimits(getIntFromConfig(cfg, "max_keywords"), getFloatFromConfig(cfg, "min_weight"))
	return kwproc.New(synth)
}

// buildAutolink creates the auto-linker processor.
// Supported config keys:
//   - soft_threshold (int): mentions needed for a soft link (default: 3)
//   - force_threshold (int): mentions needed for a force link (default: 7)
func buildAutolink(cfg map[string]any) (driven.ChunkProcessor, error) {
	th := autolink.DefaultThresholds()
	if v := getIntFromConfig(cfg, "soft_threshold"); v > 0 {
		th.Soft = v
	}
	if v := getIntFromConfig(cfg, "force_threshold"); v > 0 {
		th.Force = v
	}
	if err := th.Validate(); err != nil {
		return nil, err
	}
	return autolink.New(th), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig is getIntFromConfig for float values.
func getFloatFromConfig(cfg map[string]any, key string) float64 {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
