package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultMemoryMaxSize bounds the memory tier when unconfigured.
const DefaultMemoryMaxSize = 1000

type memoryEntry struct {
	payload   []byte
	storedAt  time.Time
	expiresAt time.Time
}

func (e *memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// MemoryCache is the in-process tier: a bounded LRU with per-entry TTL.
// Expired entries are evicted lazily on access and eagerly by a periodic
// sweep. Values pass through the compressor so large responses do not pin
// memory, but are never encrypted.
type MemoryCache struct {
	mu         sync.Mutex
	entries    *lru.Cache[string, *memoryEntry]
	compressor *Compressor
	maxSize    int

	hits      uint64
	misses    uint64
	evictions uint64

	stopSweep chan struct{}
	sweepOnce sync.Once
}

// MemoryCacheConfig configures the memory tier.
type MemoryCacheConfig struct {
	MaxSize              int           `mapstructure:"max_size"`
	CompressionThreshold int           `mapstructure:"compression_threshold"`
	CompressionLevel     int           `mapstructure:"compression_level"`
	SweepInterval        time.Duration `mapstructure:"sweep_interval"`
}

// NewMemoryCache creates the memory tier and starts its expiry sweeper.
func NewMemoryCache(cfg MemoryCacheConfig) (*MemoryCache, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMemoryMaxSize
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}

	m := &MemoryCache{
		compressor: NewCompressor(cfg.CompressionThreshold, cfg.CompressionLevel),
		maxSize:    cfg.MaxSize,
		stopSweep:  make(chan struct{}),
	}

	entries, err := lru.New[string, *memoryEntry](cfg.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	m.entries = entries

	go m.sweep(cfg.SweepInterval)

	return m, nil
}

// Get retrieves and decodes a value. Access moves the entry to most-recent.
func (m *MemoryCache) Get(ctx context.Context, key string, value interface{}) error {
	m.mu.Lock()
	entry, ok := m.entries.Get(key)
	if ok && entry.expired(time.Now()) {
		m.entries.Remove(key)
		ok = false
	}
	if !ok {
		m.misses++
		m.mu.Unlock()
		return ErrNotFound
	}
	m.hits++
	payload := entry.payload
	m.mu.Unlock()

	data, err := m.compressor.Decompress(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, value)
}

// Set stores a value. TTL zero or negative means "do not cache"; callers
// resolve the effective TTL before reaching a tier.
func (m *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing value: %w", err)
	}
	payload, _, err := m.compressor.Compress(data)
	if err != nil {
		return err
	}

	now := time.Now()
	entry := &memoryEntry{payload: payload, storedAt: now, expiresAt: now.Add(ttl)}

	m.mu.Lock()
	// Add reports capacity evictions only; Delete and expiry removals do
	// not count.
	if m.entries.Add(key, entry) {
		m.evictions++
	}
	m.mu.Unlock()
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	m.entries.Remove(key)
	m.mu.Unlock()
	return nil
}

// Exists reports whether a live entry is present without touching recency.
func (m *MemoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries.Peek(key)
	if !ok {
		return false, nil
	}
	if entry.expired(time.Now()) {
		m.entries.Remove(key)
		return false, nil
	}
	return true, nil
}

// Clear drops every entry.
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries.Purge()
	m.mu.Unlock()
	return nil
}

// Close stops the sweeper.
func (m *MemoryCache) Close() error {
	m.sweepOnce.Do(func() { close(m.stopSweep) })
	return nil
}

// GetStats returns a snapshot of the tier's bookkeeping.
func (m *MemoryCache) GetStats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := m.entries.Len()
	return Stats{
		Hits:        m.hits,
		Misses:      m.misses,
		Evictions:   m.evictions,
		Entries:     entries,
		MaxSize:     m.maxSize,
		Utilization: float64(entries) / float64(m.maxSize) * 100,
	}
}

// sweep eagerly evicts expired entries so they do not linger until the next
// access.
func (m *MemoryCache) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopSweep:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for _, key := range m.entries.Keys() {
				if entry, ok := m.entries.Peek(key); ok && entry.expired(now) {
					m.entries.Remove(key)
				}
			}
			m.mu.Unlock()
		}
	}
}
