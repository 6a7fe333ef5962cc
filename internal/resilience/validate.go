package resilience

import "fmt"

// Documented ranges for preset numeric fields.
const (
	MinRetryAttempts   = 1
	MaxRetryAttempts   = 10
	MinBreakerThresh   = 1
	MaxBreakerThresh   = 20
	MinRecoverySeconds = 10
	MaxRecoverySeconds = 600
)

var knownContexts = map[string]bool{
	"development": true,
	"testing":     true,
	"staging":     true,
	"production":  true,
}

// ValidationResult reports whether a preset is usable and why not.
type ValidationResult struct {
	IsValid     bool     `json:"is_valid"`
	Errors      []string `json:"errors"`
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// ValidatePreset checks every documented constraint on a preset. It is pure:
// no logging, no mutation.
func ValidatePreset(p Preset) ValidationResult {
	result := ValidationResult{Errors: []string{}, Warnings: []string{}, Suggestions: []string{}}

	if p.Name == "" {
		result.Errors = append(result.Errors, "name must not be empty")
	}
	if p.RetryAttempts < MinRetryAttempts || p.RetryAttempts > MaxRetryAttempts {
		result.Errors = append(result.Errors,
			fmt.Sprintf("retry_attempts must be within [%d, %d], got %d", MinRetryAttempts, MaxRetryAttempts, p.RetryAttempts))
	}
	if p.CircuitBreakerThreshold < MinBreakerThresh || p.CircuitBreakerThreshold > MaxBreakerThresh {
		result.Errors = append(result.Errors,
			fmt.Sprintf("circuit_breaker_threshold must be within [%d, %d], got %d", MinBreakerThresh, MaxBreakerThresh, p.CircuitBreakerThreshold))
	}
	if p.RecoveryTimeoutSeconds < MinRecoverySeconds || p.RecoveryTimeoutSeconds > MaxRecoverySeconds {
		result.Errors = append(result.Errors,
			fmt.Sprintf("recovery_timeout_seconds must be within [%d, %d], got %d", MinRecoverySeconds, MaxRecoverySeconds, p.RecoveryTimeoutSeconds))
	}
	if !p.DefaultStrategy.Valid() {
		result.Errors = append(result.Errors, fmt.Sprintf("default_strategy %q is not a known strategy", p.DefaultStrategy))
	}
	for op, strategy := range p.OperationOverrides {
		if !strategy.Valid() {
			result.Errors = append(result.Errors,
				fmt.Sprintf("operation_overrides[%s] references unknown strategy %q", op, strategy))
		}
	}
	if len(p.EnvironmentContexts) == 0 {
		result.Errors = append(result.Errors, "environment_contexts must not be empty")
	}
	for _, ctx := range p.EnvironmentContexts {
		if !knownContexts[ctx] {
			result.Errors = append(result.Errors, fmt.Sprintf("environment_contexts contains unknown environment %q", ctx))
		}
	}

	if p.DefaultStrategy == StrategyAggressive && p.RecoveryTimeoutSeconds > 300 {
		result.Warnings = append(result.Warnings,
			"aggressive strategy with a long recovery timeout keeps the breaker open far longer than callers will wait")
	}
	if p.CircuitBreakerThreshold > 0 && p.RetryAttempts > 0 && p.CircuitBreakerThreshold < p.RetryAttempts {
		result.Warnings = append(result.Warnings,
			"circuit_breaker_threshold below retry_attempts means a single request can trip the breaker")
		result.Suggestions = append(result.Suggestions,
			fmt.Sprintf("raise circuit_breaker_threshold to at least %d", p.RetryAttempts))
	}
	if containsContext(p.EnvironmentContexts, "production") && p.DefaultStrategy == StrategyAggressive {
		result.Suggestions = append(result.Suggestions,
			"consider balanced or conservative as the default strategy for production contexts")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func containsContext(contexts []string, want string) bool {
	for _, c := range contexts {
		if c == want {
			return true
		}
	}
	return false
}
