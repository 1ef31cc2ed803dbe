// Package memcache is the in-process domain.Cache used when Redis is not configured.
package memcache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/xyd945/travel-ai-agent/internal/adapters/observability"
)

type Cache struct{ c *cache.Cache }

func New(defaultTTL time.Duration) *Cache {
	return &Cache{c: cache.New(defaultTTL, 10*time.Minute)}
}

// Values are kept as JSON so callers never share memory with the cache.
func (m *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(v.([]byte), dst)
}

func (m *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	observability.ObserveCache("memory", "set")
	m.c.Set(key, b, ttl)
	return nil
}

func (m *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memory", "del")
	m.c.Delete(key)
	return nil
}
