package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyEnvironment(t *testing.T) {
	tests := []struct {
		raw  string
		want Environment
	}{
		{"production", EnvProduction},
		{"PROD", EnvProduction},
		{"live", EnvProduction},
		{"staging", EnvStaging},
		{"preprod", EnvStaging},
		{"test", EnvTesting},
		{"ci", EnvTesting},
		{"dev", EnvDevelopment},
		{"local", EnvDevelopment},
		{"", EnvDevelopment},
		{"something-else", EnvDevelopment},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyEnvironment(tt.raw), "raw=%q", tt.raw)
	}
}

func TestParseBool(t *testing.T) {
	for _, truthy := range []string{"true", "TRUE", "1", "yes", "Enabled", " true "} {
		assert.True(t, ParseBool(truthy), "value=%q", truthy)
	}
	for _, falsy := range []string{"", "false", "0", "no", "disabled", "on"} {
		assert.False(t, ParseBool(falsy), "value=%q", falsy)
	}
}

func TestAuthConfigKeys(t *testing.T) {
	cfg := AuthConfig{APIKey: " primary-key ", AdditionalAPIKeys: "second, third ,,  "}
	assert.Equal(t, []string{"primary-key", "second", "third"}, cfg.Keys())

	empty := AuthConfig{}
	assert.Empty(t, empty.Keys())
}

func TestLoadDefaults(t *testing.T) {
	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultInputMaxLength, settings.InputMaxLength)
	assert.Equal(t, DefaultBatchConcurrency, settings.BatchConcur)
	assert.Equal(t, "simple", settings.Auth.Mode)
	assert.Equal(t, "simple", settings.ResiliencePre)
}

func TestLoadEnvironmentPrecedence(t *testing.T) {
	t.Setenv("FLASK_ENV", "production")
	t.Setenv("NODE_ENV", "staging")
	t.Setenv("ENVIRONMENT", "test")

	settings, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvTesting, settings.Environment)
}

func TestLoadRejectsUnknownAuthMode(t *testing.T) {
	t.Setenv("AUTH_MODE", "oauth")

	_, err := Load()
	require.Error(t, err)
	var ce *ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "AUTH_MODE", ce.Setting)
}

func TestFeatureContextStrictSecurity(t *testing.T) {
	assert.True(t, FeatureContext{}.StrictSecurity(EnvProduction))
	assert.False(t, FeatureContext{}.StrictSecurity(EnvDevelopment))
	assert.True(t, FeatureContext{SecurityEnforcement: true}.StrictSecurity(EnvDevelopment))
}
