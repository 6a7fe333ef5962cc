// Package config loads gateway settings from environment variables and
// exposes the environment classifier consumed by auth and the resilience
// preset recommender.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ConfigurationError indicates invalid or missing startup configuration.
// It is fatal at startup and should never surface mid-request.
type ConfigurationError struct {
	Setting string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Setting == "" {
		return e.Message
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Setting, e.Message)
}

// NewConfigurationError creates a ConfigurationError for a named setting.
func NewConfigurationError(setting, message string) *ConfigurationError {
	return &ConfigurationError{Setting: setting, Message: message}
}

// AuthConfig holds API key authentication settings.
type AuthConfig struct {
	APIKey             string `mapstructure:"api_key"`
	AdditionalAPIKeys  string `mapstructure:"additional_api_keys"`
	Mode               string `mapstructure:"auth_mode"`
	EnforceAuth        bool   `mapstructure:"enforce_auth"`
	EnableUserTracking bool   `mapstructure:"enable_user_tracking"`
	EnableRequestLog   bool   `mapstructure:"enable_request_logging"`
}

// Keys returns every configured key, whitespace-trimmed, empties dropped.
func (a AuthConfig) Keys() []string {
	var keys []string
	if k := strings.TrimSpace(a.APIKey); k != "" {
		keys = append(keys, k)
	}
	for _, k := range strings.Split(a.AdditionalAPIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// CacheConfig holds cache tier settings.
type CacheConfig struct {
	Preset        string `mapstructure:"cache_preset"`
	RedisURL      string `mapstructure:"cache_redis_url"`
	EncryptionKey string `mapstructure:"redis_encryption_key"`
	EnableAICache bool   `mapstructure:"enable_ai_cache"`
}

// LLMConfig holds upstream provider settings.
type LLMConfig struct {
	Provider       string `mapstructure:"llm_provider"`
	OpenAIAPIKey   string `mapstructure:"openai_api_key"`
	OpenAIBaseURL  string `mapstructure:"openai_base_url"`
	Model          string `mapstructure:"llm_model"`
	BedrockModelID string `mapstructure:"bedrock_model_id"`
	AWSRegion      string `mapstructure:"aws_region"`
}

// Settings is the complete gateway configuration.
type Settings struct {
	Environment    Environment
	Features       FeatureContext
	Auth           AuthConfig
	Cache          CacheConfig
	LLM            LLMConfig
	ListenAddress  string
	ResiliencePre  string
	ResilienceJSON string
	InputMaxLength int
	BatchConcur    int
	RateLimiting   bool
}

// Defaults applied when the environment is silent.
const (
	DefaultInputMaxLength   = 2048
	DefaultBatchConcurrency = 10
	DefaultListenAddress    = ":8080"
)

// Load reads settings from the environment via viper. It validates nothing
// beyond shape; policy checks (e.g. production key enforcement) belong to
// the subsystems that own them.
func Load() (*Settings, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("AUTH_MODE", "simple")
	v.SetDefault("RESILIENCE_PRESET", "simple")
	v.SetDefault("CACHE_PRESET", "development")
	v.SetDefault("LLM_PROVIDER", "mock")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("INPUT_MAX_LENGTH", DefaultInputMaxLength)
	v.SetDefault("BATCH_CONCURRENCY", DefaultBatchConcurrency)
	v.SetDefault("LISTEN_ADDRESS", DefaultListenAddress)

	env := EnvDevelopment
	for _, name := range environmentVars {
		if raw := v.GetString(name); raw != "" {
			env = ClassifyEnvironment(raw)
			break
		}
	}

	settings := &Settings{
		Environment: env,
		Features: FeatureContext{
			AIEnabled:           ParseBool(v.GetString("AI_ENABLED")),
			SecurityEnforcement: ParseBool(v.GetString("SECURITY_ENFORCEMENT")),
		},
		Auth: AuthConfig{
			APIKey:             v.GetString("API_KEY"),
			AdditionalAPIKeys:  v.GetString("ADDITIONAL_API_KEYS"),
			Mode:               strings.ToLower(v.GetString("AUTH_MODE")),
			EnforceAuth:        ParseBool(v.GetString("ENFORCE_AUTH")),
			EnableUserTracking: ParseBool(v.GetString("ENABLE_USER_TRACKING")),
			EnableRequestLog:   ParseBool(v.GetString("ENABLE_REQUEST_LOGGING")),
		},
		Cache: CacheConfig{
			Preset:        strings.ToLower(v.GetString("CACHE_PRESET")),
			RedisURL:      v.GetString("CACHE_REDIS_URL"),
			EncryptionKey: v.GetString("REDIS_ENCRYPTION_KEY"),
			EnableAICache: ParseBool(v.GetString("ENABLE_AI_CACHE")),
		},
		LLM: LLMConfig{
			Provider:       strings.ToLower(v.GetString("LLM_PROVIDER")),
			OpenAIAPIKey:   v.GetString("OPENAI_API_KEY"),
			OpenAIBaseURL:  v.GetString("OPENAI_BASE_URL"),
			Model:          v.GetString("LLM_MODEL"),
			BedrockModelID: v.GetString("BEDROCK_MODEL_ID"),
			AWSRegion:      v.GetString("AWS_REGION"),
		},
		ListenAddress:  v.GetString("LISTEN_ADDRESS"),
		ResiliencePre:  strings.ToLower(v.GetString("RESILIENCE_PRESET")),
		ResilienceJSON: v.GetString("RESILIENCE_CUSTOM_CONFIG"),
		InputMaxLength: v.GetInt("INPUT_MAX_LENGTH"),
		BatchConcur:    v.GetInt("BATCH_CONCURRENCY"),
		RateLimiting:   ParseBool(v.GetString("RATE_LIMITING_ENABLED")),
	}

	if settings.InputMaxLength <= 0 {
		settings.InputMaxLength = DefaultInputMaxLength
	}
	if settings.BatchConcur <= 0 {
		settings.BatchConcur = DefaultBatchConcurrency
	}
	if settings.Auth.Mode != "simple" && settings.Auth.Mode != "advanced" {
		return nil, NewConfigurationError("AUTH_MODE", fmt.Sprintf("must be simple or advanced, got %q", settings.Auth.Mode))
	}

	return settings, nil
}

// ParseBool accepts the gateway's boolean spellings: true|1|yes|enabled.
// Everything else, including empty, is false.
func ParseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "enabled":
		return true
	}
	return false
}
