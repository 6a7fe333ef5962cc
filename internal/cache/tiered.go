package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/meshworks/textgate/internal/observability"
	"github.com/meshworks/textgate/pkg/models"
)

// healthCheckKey is the well-known key round-tripped by HealthCheck.
const healthCheckKey = "_health_check_test"

// TieredConfig selects and configures the active tier.
type TieredConfig struct {
	PresetName    string
	RedisURL      string
	EncryptionKey string
	// Strict makes Redis initialization failures fatal instead of falling
	// back to memory-only.
	Strict bool
}

// TieredCache is the cache facade the pipeline talks to. At initialization
// it promotes Redis over memory when a Redis URL is configured and
// reachable; otherwise it degrades to memory-only and keeps serving.
type TieredCache struct {
	cacheType string
	active    Cache
	memory    *MemoryCache
	ttlPolicy TTLPolicy
	preset    Preset
	logger    observability.Logger
}

// NewTieredCache builds the cache per the configured preset. In non-strict
// mode it never returns an error for Redis problems, only for an unknown
// preset name.
func NewTieredCache(cfg TieredConfig, logger observability.Logger) (*TieredCache, error) {
	preset, err := ResolvePreset(cfg.PresetName)
	if err != nil {
		return nil, err
	}

	t := &TieredCache{preset: preset, logger: logger}
	if preset.OperationTTLs {
		t.ttlPolicy = AITTLPolicy()
	} else {
		t.ttlPolicy = TTLPolicy{}
	}

	if !preset.Enabled {
		t.cacheType = TypeDisabled
		t.active = disabledCache{}
		logger.Info("cache disabled by preset", nil)
		return t, nil
	}

	memory, err := NewMemoryCache(MemoryCacheConfig{
		MaxSize:              preset.MaxSize,
		CompressionThreshold: preset.CompressionThreshold,
		CompressionLevel:     preset.CompressionLevel,
	})
	if err != nil {
		return nil, err
	}
	t.memory = memory

	if cfg.RedisURL != "" {
		redis, err := NewSecureRedisCache(RedisCacheConfig{
			URL:                  cfg.RedisURL,
			EncryptionKey:        cfg.EncryptionKey,
			CompressionThreshold: preset.CompressionThreshold,
			CompressionLevel:     preset.CompressionLevel,
		}, logger)
		if err != nil {
			if cfg.Strict {
				memory.Close()
				return nil, err
			}
			logger.Warn("Redis tier unavailable, continuing memory-only", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			t.cacheType = TypeRedisSecure
			t.active = redis
			return t, nil
		}
	}

	t.cacheType = TypeMemory
	t.active = memory
	return t, nil
}

// Type reports the active tier for health reporting.
func (t *TieredCache) Type() string { return t.cacheType }

// TTLFor resolves the storage TTL for an operation.
func (t *TieredCache) TTLFor(op models.Operation, override *time.Duration) time.Duration {
	if !t.preset.Enabled {
		return -1
	}
	if override != nil {
		return *override
	}
	if ttl, ok := t.ttlPolicy[op]; ok {
		return ttl
	}
	return t.preset.DefaultTTL
}

func (t *TieredCache) Get(ctx context.Context, key string, value interface{}) error {
	return t.active.Get(ctx, key, value)
}

func (t *TieredCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return t.active.Set(ctx, key, value, ttl)
}

func (t *TieredCache) Delete(ctx context.Context, key string) error {
	return t.active.Delete(ctx, key)
}

func (t *TieredCache) Exists(ctx context.Context, key string) (bool, error) {
	return t.active.Exists(ctx, key)
}

func (t *TieredCache) Clear(ctx context.Context) error {
	return t.active.Clear(ctx)
}

// Close releases the active tier and the memory fallback.
func (t *TieredCache) Close() error {
	var err error
	if t.active != nil {
		err = t.active.Close()
	}
	if t.memory != nil && t.active != Cache(t.memory) {
		_ = t.memory.Close()
	}
	return err
}

// GetStats exposes memory-tier statistics. A Redis-primary cache reports
// the (idle) memory fallback, which is still useful for detecting unwanted
// traffic there.
func (t *TieredCache) GetStats() Stats {
	if t.memory == nil {
		return Stats{}
	}
	return t.memory.GetStats()
}

// HealthCheck round-trips a known key through the active tier: write with a
// short TTL, read back, compare, delete.
func (t *TieredCache) HealthCheck(ctx context.Context) HealthReport {
	report := HealthReport{CacheType: t.cacheType, Timestamp: time.Now().UTC()}

	if t.cacheType == TypeDisabled {
		report.Healthy = true
		return report
	}

	probe := map[string]string{"probe": fmt.Sprintf("%d", time.Now().UnixNano())}

	if err := t.Set(ctx, healthCheckKey, probe, 10*time.Second); err != nil {
		report.Errors = append(report.Errors, "write: "+err.Error())
		return report
	}

	var back map[string]string
	if err := t.Get(ctx, healthCheckKey, &back); err != nil {
		report.Errors = append(report.Errors, "read: "+err.Error())
		return report
	}
	if back["probe"] != probe["probe"] {
		report.Errors = append(report.Errors, "read returned a different value")
		return report
	}

	if err := t.Delete(ctx, healthCheckKey); err != nil {
		report.Errors = append(report.Errors, "delete: "+err.Error())
		return report
	}

	report.Healthy = true
	return report
}

// disabledCache satisfies the Cache interface while storing nothing.
type disabledCache struct{}

func (disabledCache) Get(context.Context, string, interface{}) error { return ErrNotFound }
func (disabledCache) Set(context.Context, string, interface{}, time.Duration) error {
	return nil
}
func (disabledCache) Delete(context.Context, string) error         { return nil }
func (disabledCache) Exists(context.Context, string) (bool, error) { return false, nil }
func (disabledCache) Clear(context.Context) error                  { return nil }
func (disabledCache) Close() error                                 { return nil }

// marshalEqual is a test helper hook kept close to the round-trip invariant:
// two values are cache-equal when their canonical serializations match.
func marshalEqual(a, b interface{}) bool {
	ab, err1 := json.Marshal(a)
	bb, err2 := json.Marshal(b)
	return err1 == nil && err2 == nil && string(ab) == string(bb)
}
