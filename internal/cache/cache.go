// Package cache implements the gateway's two-tier response cache: an
// in-process LRU memory tier, optionally promoted to a secure Redis tier
// when a Redis URL and encryption key are configured. Values are
// transparently compressed above a size threshold; the Redis tier
// additionally encrypts at rest.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("key not found in cache")

// IsNotFound reports whether err is a cache miss rather than a backend
// failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// InfrastructureError wraps a cache backend failure that fallback could not
// absorb. The pipeline logs it and continues uncached; it never fails a
// request.
type InfrastructureError struct {
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return "cache " + e.Op + ": " + e.Err.Error()
}

func (e *InfrastructureError) Unwrap() error { return e.Err }

// Cache type names reported by health checks.
const (
	TypeRedisSecure = "redis_secure"
	TypeMemory      = "memory"
	TypeDisabled    = "disabled"
)

// Cache is the unified contract both tiers implement. Values round-trip
// through JSON serialization; a Get into a pointer of the Set type returns
// an equal value while the TTL holds.
type Cache interface {
	Get(ctx context.Context, key string, value interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Stats reports memory-tier bookkeeping.
type Stats struct {
	Hits        uint64  `json:"hits"`
	Misses      uint64  `json:"misses"`
	Evictions   uint64  `json:"evictions"`
	Entries     int     `json:"entries"`
	MaxSize     int     `json:"max_size"`
	Utilization float64 `json:"utilization_percent"`
}

// HealthReport is the structured result of a cache health check.
type HealthReport struct {
	Healthy   bool      `json:"healthy"`
	CacheType string    `json:"cache_type"`
	Errors    []string  `json:"errors,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
