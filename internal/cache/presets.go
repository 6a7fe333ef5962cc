package cache

import (
	"fmt"
	"time"
)

// Preset bundles cache sizing and compression parameters under a name
// selectable via CACHE_PRESET. The ai-* presets additionally apply the
// per-operation TTL policy.
type Preset struct {
	Name                 string        `json:"name"`
	Enabled              bool          `json:"enabled"`
	MaxSize              int           `json:"max_size"`
	DefaultTTL           time.Duration `json:"default_ttl"`
	CompressionThreshold int           `json:"compression_threshold"`
	CompressionLevel     int           `json:"compression_level"`
	OperationTTLs        bool          `json:"operation_ttls"`
}

var cachePresets = map[string]Preset{
	"disabled": {
		Name: "disabled",
	},
	"development": {
		Name:                 "development",
		Enabled:              true,
		MaxSize:              100,
		DefaultTTL:           600 * time.Second,
		CompressionThreshold: DefaultCompressionThreshold,
		CompressionLevel:     1,
	},
	"production": {
		Name:                 "production",
		Enabled:              true,
		MaxSize:              DefaultMemoryMaxSize,
		DefaultTTL:           DefaultTTL,
		CompressionThreshold: DefaultCompressionThreshold,
		CompressionLevel:     DefaultCompressionLevel,
	},
	"ai-development": {
		Name:                 "ai-development",
		Enabled:              true,
		MaxSize:              200,
		DefaultTTL:           600 * time.Second,
		CompressionThreshold: DefaultCompressionThreshold,
		CompressionLevel:     1,
		OperationTTLs:        true,
	},
	"ai-production": {
		Name:                 "ai-production",
		Enabled:              true,
		MaxSize:              DefaultMemoryMaxSize,
		DefaultTTL:           DefaultTTL,
		CompressionThreshold: DefaultCompressionThreshold,
		CompressionLevel:     DefaultCompressionLevel,
		OperationTTLs:        true,
	},
}

// ResolvePreset looks up a cache preset by name.
func ResolvePreset(name string) (Preset, error) {
	preset, ok := cachePresets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown cache preset %q", name)
	}
	return preset, nil
}

// PresetNames lists the available cache presets.
func PresetNames() []string {
	return []string{"disabled", "development", "production", "ai-development", "ai-production"}
}
