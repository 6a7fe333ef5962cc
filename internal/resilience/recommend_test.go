package resilience

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommendPresetExact(t *testing.T) {
	tests := []struct {
		environment string
		preset      string
	}{
		{"production", "production"},
		{"prod", "production"},
		{"staging", "production"},
		{"development", "development"},
		{"dev", "development"},
		{"testing", "development"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			rec := RecommendPreset(tt.environment, false)
			assert.Equal(t, tt.preset, rec.PresetName)
			assert.GreaterOrEqual(t, rec.Confidence, 0.85)
			assert.NotEmpty(t, rec.Reasoning)
			assert.Equal(t, tt.environment, rec.EnvironmentDetected)
		})
	}
}

func TestRecommendPresetPattern(t *testing.T) {
	tests := []struct {
		environment string
		preset      string
	}{
		{"eu-production-1", "production"},
		{"live-us", "production"},
		{"pre-staging", "production"},
		{"dev-local", "development"},
	}

	for _, tt := range tests {
		t.Run(tt.environment, func(t *testing.T) {
			rec := RecommendPreset(tt.environment, false)
			assert.Equal(t, tt.preset, rec.PresetName)
			assert.GreaterOrEqual(t, rec.Confidence, 0.70)
			assert.Less(t, rec.Confidence, 0.85)
		})
	}
}

func TestRecommendPresetUnknown(t *testing.T) {
	rec := RecommendPreset("quux", false)
	assert.Equal(t, "simple", rec.PresetName)
	assert.Equal(t, 0.50, rec.Confidence)
}

func TestRecommendPresetNormalizesInput(t *testing.T) {
	rec := RecommendPreset("  PRODUCTION ", false)
	assert.Equal(t, "production", rec.PresetName)
	assert.Equal(t, "production", rec.EnvironmentDetected)
}

func TestRecommendPresetSecurityEnforcement(t *testing.T) {
	// Security enforcement upgrades a development recommendation.
	rec := RecommendPreset("dev", true)
	assert.Equal(t, "production", rec.PresetName)

	rec = RecommendPreset("production", true)
	assert.Equal(t, "production", rec.PresetName)
}
