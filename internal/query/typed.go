package query

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/desertthunder/correx/internal/shared"
)

// Option pairs a key with the typed fetch that fills it.
type Option[T any] struct {
	Key   Key
	Fetch func(ctx context.Context) (T, error)
}

// Ensure is the typed form of [Cache.Ensure].
//
// With a store configured, a fresh persisted snapshot answers the miss before Fetch is called,
// and a fetched value is written back when it lands in the cache.
func Ensure[T any](ctx context.Context, c *Cache, opt Option[T]) (T, error) {
	var zero T

	restored := false
	encode := func(v any) ([]byte, error) {
		if restored {
			return nil, nil
		}
		return json.Marshal(v)
	}
	value, err := c.ensure(ctx, opt.Key, func(ctx context.Context) (any, error) {
		if v, ok := loadSnapshot[T](c, opt.Key); ok {
			restored = true
			return v, nil
		}
		return opt.Fetch(ctx)
	}, encode)
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s holds %T, want %T", shared.ErrCacheType, opt.Key, value, zero)
	}
	return typed, nil
}

// Seed stores v under key without calling any producer.
func Seed[T any](c *Cache, key Key, v T) error {
	return c.Set(key, v)
}

// Peek returns the cached value for key when present and of type T.
func Peek[T any](c *Cache, key Key) (T, bool) {
	var zero T

	value, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := value.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

func loadSnapshot[T any](c *Cache, key Key) (T, bool) {
	var v T
	if c.store == nil {
		return v, false
	}

	payload, fetchedAt, ok, err := c.store.Load(key.String())
	if err != nil {
		c.logger.Warn("failed to load snapshot", "key", key, "error", err)
		return v, false
	}
	if !ok || (c.ttl > 0 && c.now().Sub(fetchedAt) > c.ttl) {
		return v, false
	}

	if err := json.Unmarshal(payload, &v); err != nil {
		c.logger.Warn("discarding unreadable snapshot", "key", key, "error", err)
		return v, false
	}
	c.logger.Debug("snapshot hit", "key", key, "fetched_at", fetchedAt)
	return v, true
}
