// Package cache holds the theme catalog cache backends.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is the interface for cache implementations
type Cache interface {
	// Get retrieves a value from the cache
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores a value in the cache with TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes keys from the cache
	Delete(ctx context.Context, keys ...string) error
	// Ping checks cache connectivity
	Ping(ctx context.Context) error
	// Close closes the cache connection
	Close() error
}

// Config holds cache configuration
type Config struct {
	Backend  string `yaml:"backend"`  // redis, memory, none
	Address  string `yaml:"address"`  // Redis address (host:port)
	URL      string `yaml:"url"`      // Redis URL, takes precedence over Address
	Password string `yaml:"-"`        // Loaded from environment
	DB       int    `yaml:"db"`       // Redis database number
	TTL      int    `yaml:"ttl"`      // Default TTL in seconds
	MaxSize  int    `yaml:"max_size"` // Max items for memory cache
	Prefix   string `yaml:"prefix"`
}

// DefaultConfig returns default cache configuration
func DefaultConfig() Config {
	return Config{
		Backend: "memory",
		Address: "localhost:6379",
		TTL:     300,
		MaxSize: 10000,
		Prefix:  "fomi:",
	}
}

// New creates a cache for cfg. A "none" backend returns nil, which callers treat as caching disabled.
func New(cfg Config) (Cache, error) {
	ttl := time.Duration(cfg.TTL) * time.Second
	switch cfg.Backend {
	case "none":
		return nil, nil
	case "redis":
		rc, err := NewRedisCache(cfg)
		if err != nil {
			return nil, err
		}
		return rc, nil
	case "memory", "":
		return NewMemoryCache(cfg.MaxSize, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Backend)
	}
}

// GetJSON retrieves and unmarshals a JSON value
func GetJSON(ctx context.Context, c Cache, key string, v any) error {
	data, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// SetJSON marshals and stores a JSON value
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
