// Package auth provides API key authentication for the gateway.
//
// Two modes exist: simple (a flat key set) and advanced (keys carry role and
// permission metadata that rides along in the request context). In
// production, or whenever the security_enforcement feature flag is set, the
// service refuses to start without at least one key. In development with
// zero keys it runs permissive: every request is authenticated as the
// "development" principal.
package auth

import (
	"errors"
	"strings"
	"sync"

	"github.com/meshworks/textgate/internal/config"
	"github.com/meshworks/textgate/internal/observability"
)

// Common errors.
var (
	ErrNoAPIKey      = errors.New("no API key provided")
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// Mode selects between simple and advanced key handling.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeAdvanced Mode = "advanced"
)

// KeyMetadata is attached to a key in advanced mode. It never changes the
// authentication decision, only what the request context carries.
type KeyMetadata struct {
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Principal is the authenticated identity exposed to the rest of the
// gateway. Display carries only a truncated key prefix; the raw key never
// leaves this package.
type Principal struct {
	Display     string   `json:"api_key_prefix"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Permissive  bool     `json:"-"`
}

// Service validates API keys.
type Service struct {
	mode        Mode
	environment config.Environment
	permissive  bool
	trackUsers  bool
	logRequests bool
	logger      observability.Logger

	mu    sync.RWMutex
	keys  map[string]KeyMetadata
	usage map[string]uint64
}

// NewService builds the auth service and applies the environment-driven
// security policy.
func NewService(cfg config.AuthConfig, env config.Environment, features config.FeatureContext, logger observability.Logger) (*Service, error) {
	keys := cfg.Keys()
	strict := features.StrictSecurity(env) || cfg.EnforceAuth

	if strict && len(keys) == 0 {
		return nil, config.NewConfigurationError("API_KEY",
			"at least one API key is required: production security policy forbids running without credentials (set API_KEY or ADDITIONAL_API_KEYS)")
	}

	s := &Service{
		mode:        Mode(cfg.Mode),
		environment: env,
		permissive:  !strict && len(keys) == 0,
		trackUsers:  cfg.EnableUserTracking,
		logRequests: cfg.EnableRequestLog,
		logger:      logger,
		keys:        make(map[string]KeyMetadata, len(keys)),
		usage:       make(map[string]uint64),
	}

	for _, key := range keys {
		s.keys[key] = KeyMetadata{}
	}

	if s.permissive {
		logger.Warn("auth running in permissive mode: no API keys configured", map[string]interface{}{
			"environment": string(env),
		})
	} else {
		logger.Info("auth initialized", map[string]interface{}{
			"environment": string(env),
			"mode":        string(s.mode),
			"key_count":   len(keys),
		})
	}

	return s, nil
}

// SetKeyMetadata attaches metadata to an existing key (advanced mode).
// Unknown keys are ignored so callers can apply metadata declaratively.
func (s *Service) SetKeyMetadata(key string, meta KeyMetadata) {
	if s.mode != ModeAdvanced {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key]; ok {
		s.keys[key] = meta
	}
}

// Permissive reports whether the service accepts uncredentialed requests.
func (s *Service) Permissive() bool {
	return s.permissive
}

// Environment returns the environment the service was initialized with.
func (s *Service) Environment() config.Environment {
	return s.environment
}

// Verify checks a raw API key. Lookup is O(1) and case-sensitive; keys were
// trimmed at load. The returned principal is safe to log and display.
func (s *Service) Verify(key string) (*Principal, error) {
	if key == "" {
		if s.permissive {
			return s.recordUsage(&Principal{Display: "development", Permissive: true}), nil
		}
		return nil, ErrNoAPIKey
	}

	s.mu.RLock()
	meta, ok := s.keys[key]
	s.mu.RUnlock()

	if !ok {
		if s.permissive {
			return s.recordUsage(&Principal{Display: "development", Permissive: true}), nil
		}
		return nil, ErrInvalidAPIKey
	}

	p := &Principal{Display: keyPrefix(key)}
	if s.mode == ModeAdvanced {
		p.Role = meta.Role
		p.Permissions = meta.Permissions
	}
	return s.recordUsage(p), nil
}

// recordUsage counts successful verifications per principal when user
// tracking is enabled. Only the displayable prefix is ever stored.
func (s *Service) recordUsage(p *Principal) *Principal {
	if s.trackUsers {
		s.mu.Lock()
		s.usage[p.Display]++
		s.mu.Unlock()
	}
	return p
}

// UsageFor returns the number of authenticated requests recorded for a
// principal. Always zero when user tracking is disabled.
func (s *Service) UsageFor(display string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.usage[display]
}

// TracksUsers reports whether per-principal usage counting is enabled.
func (s *Service) TracksUsers() bool {
	return s.trackUsers
}

// keyPrefix renders the displayable form of a key: first 8 chars + "...".
func keyPrefix(key string) string {
	if len(key) <= 8 {
		return key + "..."
	}
	return key[:8] + "..."
}

// ExtractKey pulls the API key from the Authorization or X-API-Key headers.
// Returns the empty string when no credentials were provided.
func ExtractKey(authorization, apiKeyHeader string) string {
	if authorization != "" {
		if strings.HasPrefix(authorization, "Bearer ") {
			return strings.TrimPrefix(authorization, "Bearer ")
		}
		return authorization
	}
	return apiKeyHeader
}
