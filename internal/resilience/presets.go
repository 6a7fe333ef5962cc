package resilience

import (
	"encoding/json"
	"fmt"
)

// Preset is an immutable, serializable bundle of resilience parameters.
// Presets are loaded once at startup and refreshed only on explicit reload.
type Preset struct {
	Name                    string              `json:"name"`
	Description             string              `json:"description"`
	RetryAttempts           int                 `json:"retry_attempts"`
	CircuitBreakerThreshold int                 `json:"circuit_breaker_threshold"`
	RecoveryTimeoutSeconds  int                 `json:"recovery_timeout_seconds"`
	DefaultStrategy         Strategy            `json:"default_strategy"`
	OperationOverrides      map[string]Strategy `json:"operation_overrides"`
	EnvironmentContexts     []string            `json:"environment_contexts"`
}

// StrategyFor resolves the effective strategy for an operation.
func (p Preset) StrategyFor(operation string) Strategy {
	if s, ok := p.OperationOverrides[operation]; ok {
		return s
	}
	return p.DefaultStrategy
}

// Clone returns a deep copy so callers can overlay without mutating the
// registry.
func (p Preset) Clone() Preset {
	out := p
	out.OperationOverrides = make(map[string]Strategy, len(p.OperationOverrides))
	for k, v := range p.OperationOverrides {
		out.OperationOverrides[k] = v
	}
	out.EnvironmentContexts = append([]string(nil), p.EnvironmentContexts...)
	return out
}

var presetRegistry = map[string]Preset{
	"simple": {
		Name:                    "simple",
		Description:             "Balanced defaults suitable for any environment",
		RetryAttempts:           3,
		CircuitBreakerThreshold: 5,
		RecoveryTimeoutSeconds:  60,
		DefaultStrategy:         StrategyBalanced,
		OperationOverrides:      map[string]Strategy{},
		EnvironmentContexts:     []string{"development", "testing", "staging", "production"},
	},
	"development": {
		Name:                    "development",
		Description:             "Fast failure for rapid iteration against local or shared dev models",
		RetryAttempts:           2,
		CircuitBreakerThreshold: 3,
		RecoveryTimeoutSeconds:  30,
		DefaultStrategy:         StrategyAggressive,
		OperationOverrides: map[string]Strategy{
			"sentiment": StrategyAggressive,
			"qa":        StrategyBalanced,
		},
		EnvironmentContexts: []string{"development", "testing"},
	},
	"production": {
		Name:                    "production",
		Description:             "Patient retries and a high trip threshold for paid upstream capacity",
		RetryAttempts:           5,
		CircuitBreakerThreshold: 10,
		RecoveryTimeoutSeconds:  120,
		DefaultStrategy:         StrategyConservative,
		OperationOverrides: map[string]Strategy{
			"qa":        StrategyCritical,
			"sentiment": StrategyAggressive,
		},
		EnvironmentContexts: []string{"staging", "production"},
	},
}

// PresetNames lists the shipped presets in a stable order.
func PresetNames() []string {
	return []string{"simple", "development", "production"}
}

// GetPreset looks up a shipped preset by name, returning a copy.
func GetPreset(name string) (Preset, error) {
	p, ok := presetRegistry[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown resilience preset %q", name)
	}
	return p.Clone(), nil
}

// ApplyCustomConfig overlays a RESILIENCE_CUSTOM_CONFIG JSON object onto a
// preset. Only fields present in the JSON are replaced.
func ApplyCustomConfig(base Preset, rawJSON string) (Preset, error) {
	if rawJSON == "" {
		return base, nil
	}

	out := base.Clone()
	if err := json.Unmarshal([]byte(rawJSON), &out); err != nil {
		return Preset{}, fmt.Errorf("parsing RESILIENCE_CUSTOM_CONFIG: %w", err)
	}
	// The overlay keeps the base name so metrics stay attributable.
	out.Name = base.Name
	return out, nil
}
