package resilience

import (
	"fmt"
	"regexp"
	"strings"
)

// Recommendation maps an environment name to a preset with a confidence
// score and human-readable reasoning.
type Recommendation struct {
	PresetName          string  `json:"preset_name"`
	Confidence          float64 `json:"confidence"`
	Reasoning           string  `json:"reasoning"`
	EnvironmentDetected string  `json:"environment_detected"`
}

// exactRecommendations cover unambiguous environment names.
var exactRecommendations = map[string]string{
	"production":  "production",
	"prod":        "production",
	"staging":     "production",
	"stage":       "production",
	"development": "development",
	"dev":         "development",
	"testing":     "development",
	"test":        "development",
}

var patternRecommendations = []struct {
	pattern *regexp.Regexp
	preset  string
}{
	{regexp.MustCompile(`(?i)prod`), "production"},
	{regexp.MustCompile(`(?i)live`), "production"},
	{regexp.MustCompile(`(?i)staging`), "production"},
	{regexp.MustCompile(`(?i)dev`), "development"},
	{regexp.MustCompile(`(?i)test`), "development"},
}

// RecommendPreset is a pure function from an environment name (and an
// optional security hint) to a preset recommendation. Exact matches score
// 0.90, pattern matches 0.75, anything else falls back to simple at 0.50.
func RecommendPreset(environment string, securityEnforcement bool) Recommendation {
	detected := strings.ToLower(strings.TrimSpace(environment))

	if preset, ok := exactRecommendations[detected]; ok {
		rec := Recommendation{
			PresetName:          preset,
			Confidence:          0.90,
			Reasoning:           fmt.Sprintf("environment %q matches the %s preset exactly", detected, preset),
			EnvironmentDetected: detected,
		}
		return applySecurityHint(rec, securityEnforcement)
	}

	for _, candidate := range patternRecommendations {
		if candidate.pattern.MatchString(detected) {
			rec := Recommendation{
				PresetName:          candidate.preset,
				Confidence:          0.75,
				Reasoning:           fmt.Sprintf("environment %q resembles a %s-class environment", detected, candidate.preset),
				EnvironmentDetected: detected,
			}
			return applySecurityHint(rec, securityEnforcement)
		}
	}

	return Recommendation{
		PresetName:          "simple",
		Confidence:          0.50,
		Reasoning:           fmt.Sprintf("environment %q is unrecognized; the simple preset is safe everywhere", detected),
		EnvironmentDetected: detected,
	}
}

// applySecurityHint upgrades a development recommendation when security
// enforcement is forced on: strict environments should not run the
// fail-fast development preset.
func applySecurityHint(rec Recommendation, securityEnforcement bool) Recommendation {
	if securityEnforcement && rec.PresetName == "development" {
		rec.PresetName = "production"
		rec.Reasoning += "; security enforcement is active, so the production preset applies"
	}
	return rec
}
