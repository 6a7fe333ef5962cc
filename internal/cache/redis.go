package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/meshworks/textgate/internal/observability"
)

// RedisCacheConfig configures the secure Redis tier.
type RedisCacheConfig struct {
	URL                  string        `mapstructure:"url"`
	Username             string        `mapstructure:"username"`
	Password             string        `mapstructure:"password"`
	EncryptionKey        string        `mapstructure:"encryption_key"`
	DialTimeout          time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout          time.Duration `mapstructure:"read_timeout"`
	WriteTimeout         time.Duration `mapstructure:"write_timeout"`
	MaxRetries           int           `mapstructure:"max_retries"`
	MinRetryBackoff      time.Duration `mapstructure:"min_retry_backoff"`
	PoolSize             int           `mapstructure:"pool_size"`
	CompressionThreshold int           `mapstructure:"compression_threshold"`
	CompressionLevel     int           `mapstructure:"compression_level"`
}

// SecureRedisCache is the Redis tier. Every value is compressed then
// encrypted on write and reversed on read; nothing reaches Redis in the
// clear.
type SecureRedisCache struct {
	client     *redis.Client
	compressor *Compressor
	encryptor  *Encryptor
	logger     observability.Logger
}

// NewSecureRedisCache connects to Redis and verifies the connection with a
// ping. TLS is enabled when the URL scheme is rediss. A missing encryption
// key fails initialization: the secure tier never stores plaintext.
func NewSecureRedisCache(cfg RedisCacheConfig, logger observability.Logger) (*SecureRedisCache, error) {
	if cfg.EncryptionKey == "" {
		return nil, fmt.Errorf("REDIS_ENCRYPTION_KEY is required for the secure Redis tier; generate one with `openssl rand -hex 32`")
	}

	encryptor, err := NewEncryptor(cfg.EncryptionKey)
	if err != nil {
		return nil, err
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing Redis URL: %w", err)
	}
	if cfg.Username != "" {
		opts.Username = cfg.Username
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.MinRetryBackoff > 0 {
		opts.MinRetryBackoff = cfg.MinRetryBackoff
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	logger.Info("secure Redis cache connected", map[string]interface{}{
		"addr": opts.Addr,
		"tls":  opts.TLSConfig != nil,
	})

	return &SecureRedisCache{
		client:     client,
		compressor: NewCompressor(cfg.CompressionThreshold, cfg.CompressionLevel),
		encryptor:  encryptor,
		logger:     logger,
	}, nil
}

// Get retrieves, decrypts, decompresses and decodes a value.
func (c *SecureRedisCache) Get(ctx context.Context, key string, value interface{}) error {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return &InfrastructureError{Op: "get", Err: err}
	}

	payload, err := c.encryptor.Decrypt(raw)
	if err != nil {
		return err
	}
	data, err := c.compressor.Decompress(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, value)
}

// Set serializes, compresses, encrypts and stores a value. TTL zero or
// negative means "do not cache"; callers resolve the effective TTL first.
func (c *SecureRedisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("serializing value: %w", err)
	}
	payload, _, err := c.compressor.Compress(data)
	if err != nil {
		return err
	}
	sealed, err := c.encryptor.Encrypt(payload)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, key, sealed, ttl).Err(); err != nil {
		return &InfrastructureError{Op: "set", Err: err}
	}
	return nil
}

// Delete removes a key.
func (c *SecureRedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return &InfrastructureError{Op: "delete", Err: err}
	}
	return nil
}

// Exists reports key presence.
func (c *SecureRedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, &InfrastructureError{Op: "exists", Err: err}
	}
	return n > 0, nil
}

// Clear flushes the database this cache writes to.
func (c *SecureRedisCache) Clear(ctx context.Context) error {
	if err := c.client.FlushDB(ctx).Err(); err != nil {
		return &InfrastructureError{Op: "clear", Err: err}
	}
	return nil
}

// Close releases the connection pool.
func (c *SecureRedisCache) Close() error {
	return c.client.Close()
}
