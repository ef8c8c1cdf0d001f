package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemoryCacheSize = 10000

// MemoryCache is a size-bounded LRU whose entries expire after a cache-wide TTL.
// The per-call ttl argument of Set is ignored.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

func NewMemoryCache(maxSize int, ttl time.Duration) *MemoryCache {
	if maxSize <= 0 {
		maxSize = defaultMemoryCacheSize
	}
	return &MemoryCache{lru: expirable.NewLRU[string, []byte](maxSize, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	value, ok := c.lru.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return value, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)
	c.lru.Add(key, stored)
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.lru.Remove(key)
	}
	return nil
}

func (c *MemoryCache) Ping(context.Context) error {
	return nil
}

func (c *MemoryCache) Close() error {
	c.lru.Purge()
	return nil
}

func (c *MemoryCache) Len() int {
	return c.lru.Len()
}
