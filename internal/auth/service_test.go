package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/observability"
)

func newTestService(t *testing.T, cfg config.AuthConfig, env config.Environment, features config.FeatureContext) *Service {
	t.Helper()
	cfgCopy := cfg
	if cfgCopy.Mode == "" {
		cfgCopy.Mode = "simple"
	}
	s, err := NewService(cfgCopy, env, features, observability.NewNoopLogger())
	require.NoError(t, err)
	return s
}

func TestVerifyKnownKey(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "test-key-12345678"}, config.EnvDevelopment, config.FeatureContext{})

	p, err := s.Verify("test-key-12345678")
	require.NoError(t, err)
	assert.Equal(t, "test-key...", p.Display)
	assert.False(t, p.Permissive)
}

func TestVerifyRejectsUnknownKey(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "test-key-12345678"}, config.EnvDevelopment, config.FeatureContext{})

	_, err := s.Verify("other-key")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)

	_, err = s.Verify("")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestVerifyIsCaseSensitive(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "Test-Key-12345678"}, config.EnvDevelopment, config.FeatureContext{})

	_, err := s.Verify("test-key-12345678")
	assert.ErrorIs(t, err, ErrInvalidAPIKey)
}

func TestAdditionalKeysLoaded(t *testing.T) {
	s := newTestService(t, config.AuthConfig{
		APIKey:            "primary-key-0001",
		AdditionalAPIKeys: "second-key-0002, third-key-0003",
	}, config.EnvDevelopment, config.FeatureContext{})

	for _, key := range []string{"primary-key-0001", "second-key-0002", "third-key-0003"} {
		_, err := s.Verify(key)
		assert.NoError(t, err, "key=%q", key)
	}
}

func TestProductionRequiresKeys(t *testing.T) {
	_, err := NewService(config.AuthConfig{Mode: "simple"}, config.EnvProduction, config.FeatureContext{}, observability.NewNoopLogger())
	require.Error(t, err)

	var ce *config.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "API_KEY", ce.Setting)
	assert.Contains(t, ce.Error(), "production security policy")
}

func TestSecurityEnforcementForcesStrict(t *testing.T) {
	_, err := NewService(config.AuthConfig{Mode: "simple"}, config.EnvDevelopment,
		config.FeatureContext{SecurityEnforcement: true}, observability.NewNoopLogger())
	assert.Error(t, err)
}

func TestPermissiveModeInDevelopment(t *testing.T) {
	s := newTestService(t, config.AuthConfig{}, config.EnvDevelopment, config.FeatureContext{})
	require.True(t, s.Permissive())

	p, err := s.Verify("")
	require.NoError(t, err)
	assert.Equal(t, "development", p.Display)
	assert.True(t, p.Permissive)
}

func TestAdvancedModeMetadata(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "admin-key-123456", Mode: "advanced"},
		config.EnvDevelopment, config.FeatureContext{})

	s.SetKeyMetadata("admin-key-123456", KeyMetadata{Role: "admin", Permissions: []string{"process", "batch"}})

	p, err := s.Verify("admin-key-123456")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Role)
	assert.Equal(t, []string{"process", "batch"}, p.Permissions)
}

func TestSimpleModeIgnoresMetadata(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "plain-key-123456"}, config.EnvDevelopment, config.FeatureContext{})

	s.SetKeyMetadata("plain-key-123456", KeyMetadata{Role: "admin"})

	p, err := s.Verify("plain-key-123456")
	require.NoError(t, err)
	assert.Empty(t, p.Role)
}

func TestExtractKey(t *testing.T) {
	assert.Equal(t, "abc", ExtractKey("Bearer abc", ""))
	assert.Equal(t, "raw-token", ExtractKey("raw-token", ""))
	assert.Equal(t, "header-key", ExtractKey("", "header-key"))
	assert.Equal(t, "", ExtractKey("", ""))
}

func TestUsageTracking(t *testing.T) {
	s := newTestService(t, config.AuthConfig{
		APIKey:             "tracked-key-0001",
		EnableUserTracking: true,
	}, config.EnvDevelopment, config.FeatureContext{})

	require.True(t, s.TracksUsers())

	for i := 0; i < 3; i++ {
		_, err := s.Verify("tracked-key-0001")
		require.NoError(t, err)
	}
	_, err := s.Verify("wrong-key")
	require.Error(t, err)

	assert.Equal(t, uint64(3), s.UsageFor("tracked-..."))
	assert.Zero(t, s.UsageFor("wrong-ke..."))
}

func TestUsageTrackingDisabledByDefault(t *testing.T) {
	s := newTestService(t, config.AuthConfig{APIKey: "plain-key-123456"}, config.EnvDevelopment, config.FeatureContext{})

	_, err := s.Verify("plain-key-123456")
	require.NoError(t, err)

	assert.False(t, s.TracksUsers())
	assert.Zero(t, s.UsageFor("plain-ke..."))
}
