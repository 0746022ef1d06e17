// internal/core/ports/cache.go
package ports

import (
	"context"
	"strings"
	"time"
)

// CacheKeyPrefix namespaces the keys of one kind of cached value. Keys are
// built with Key and invalidated by prefix.
type CacheKeyPrefix string

const (
	PrefixProduct   CacheKeyPrefix = "prod"
	PrefixDashboard CacheKeyPrefix = "dash"
	PrefixAlert     CacheKeyPrefix = "alert"
)

// Key joins the prefix and parts with ':'.
func (p CacheKeyPrefix) Key(parts ...string) string {
	return strings.Join(append([]string{string(p)}, parts...), ":")
}

// Pattern matches every key under the prefix.
func (p CacheKeyPrefix) Pattern() string {
	return p.Key("*")
}

// CacheRepository is a JSON value cache with expiry. Services treat it as
// optional: a miss or an outage falls back to the repositories.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	SetWithTTL(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// SetNX reports false when the key already existed.
	SetNX(ctx context.Context, key string, value interface{}, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error

	// GetOrSet reads key into dest, filling it from fetch on a miss.
	GetOrSet(ctx context.Context, key string, dest interface{},
		fetch func() (interface{}, error), ttl time.Duration) error

	Ping(ctx context.Context) error
}

// CacheInvalidator drops cached views after a write.
type CacheInvalidator interface {
	InvalidateInventory(ctx context.Context)
	InvalidateCatalog(ctx context.Context)
}
