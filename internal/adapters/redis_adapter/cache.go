// internal/adapters/redis_adapter/cache.go
package redis_adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/mfg-erp/internal/core/ports"
)

// scanBatch is the COUNT hint used while walking keys for invalidation.
const scanBatch = 200

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache stores JSON encoded values in redis.
type Cache struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ports.CacheRepository = (*Cache)(nil)

func NewCache(client *redis.Client, logger *slog.Logger) ports.CacheRepository {
	return &Cache{
		client: client,
		logger: logger.With(slog.String("component", "cache")),
	}
}

func (c *Cache) SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return c.fail(ctx, "set", key, err)
	}
	c.logger.DebugContext(ctx, "cache set", slog.String("key", key), slog.Duration("ttl", ttl))
	return nil
}

func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.logger.DebugContext(ctx, "cache miss", slog.String("key", key))
		return ErrCacheMiss
	case err != nil:
		return c.fail(ctx, "get", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return c.fail(ctx, "del", strings.Join(keys, ","), err)
	}
	return nil
}

// DeletePattern removes every key matching pattern, one scan page at a time.
func (c *Cache) DeletePattern(ctx context.Context, pattern string) error {
	var (
		cursor  uint64
		removed int
	)
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return c.fail(ctx, "scan", pattern, err)
		}
		if err := c.Delete(ctx, keys...); err != nil {
			return err
		}
		removed += len(keys)
		if cursor = next; cursor == 0 {
			break
		}
	}
	c.logger.DebugContext(ctx, "cache pattern cleared",
		slog.String("pattern", pattern), slog.Int("removed", removed))
	return nil
}

// GetOrSet fills dest from the cache, or from fetch on a miss. A cache that
// cannot be read or written only costs the round trip; fetch errors are
// returned.
func (c *Cache) GetOrSet(ctx context.Context, key string, dest interface{},
	fetch func() (interface{}, error), ttl time.Duration) error {

	err := c.Get(ctx, key, dest)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		c.logger.WarnContext(ctx, "cache unavailable, reading through",
			slog.String("key", key), slog.String("error", err.Error()))
	}

	value, err := fetch()
	if err != nil {
		return fmt.Errorf("fetch %s: %w", key, err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache fill failed",
			slog.String("key", key), slog.String("error", err.Error()))
	}
	return json.Unmarshal(data, dest)
}

// SetNX stores value only when key is absent and reports whether it did.
func (c *Cache) SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("encode %s: %w", key, err)
	}
	ok, err := c.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, c.fail(ctx, "setnx", key, err)
	}
	return ok, nil
}

func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

func (c *Cache) fail(ctx context.Context, op, key string, err error) error {
	c.logger.ErrorContext(ctx, "cache command failed",
		slog.String("op", op), slog.String("key", key), slog.String("error", err.Error()))
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}

// CacheManager drops cached views after ledger and catalog writes. It never
// fails the write that triggered it.
type CacheManager struct {
	cache  ports.CacheRepository
	logger *slog.Logger
}

var _ ports.CacheInvalidator = (*CacheManager)(nil)

func NewCacheManager(cache ports.CacheRepository, logger *slog.Logger) *CacheManager {
	return &CacheManager{
		cache:  cache,
		logger: logger.With(slog.String("component", "cache_manager")),
	}
}

// InvalidateInventory drops the dashboard views, which all aggregate stock.
func (m *CacheManager) InvalidateInventory(ctx context.Context) {
	m.clear(ctx, ports.PrefixDashboard)
}

// InvalidateCatalog drops cached products along with the dashboard views.
func (m *CacheManager) InvalidateCatalog(ctx context.Context) {
	m.clear(ctx, ports.PrefixProduct, ports.PrefixDashboard)
}

func (m *CacheManager) clear(ctx context.Context, prefixes ...ports.CacheKeyPrefix) {
	for _, p := range prefixes {
		pattern := p.Pattern()
		if err := m.cache.DeletePattern(ctx, pattern); err != nil {
			m.logger.WarnContext(ctx, "cache invalidation failed",
				slog.String("pattern", pattern), slog.String("error", err.Error()))
		}
	}
}
