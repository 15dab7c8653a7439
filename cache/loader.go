package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Producer computes the value for a missing key. It should be idempotent
// and free of side effects: without Options.Coalesce, concurrent misses
// for the same key each call it.
type Producer[V any] func(ctx context.Context) (V, error)

// GetOrSet returns the live value for k; on a miss it calls produce,
// stores the result with the default TTL and returns it.
//
// A producer error is returned unchanged and nothing is stored, so the
// next call retries. The cache adds no timeout of its own: a producer
// that never returns blocks its caller until ctx-aware code inside it
// gives up.
func (c *Cache[K, V]) GetOrSet(ctx context.Context, k K, produce Producer[V]) (V, error) {
	return c.getOrSet(ctx, k, produce, c.cfg.TTL)
}

// GetOrSetWithTTL is GetOrSet with a per-entry TTL for the stored result.
func (c *Cache[K, V]) GetOrSetWithTTL(ctx context.Context, k K, produce Producer[V], ttl time.Duration) (V, error) {
	if ttl < 0 {
		ttl = 0
	}
	return c.getOrSet(ctx, k, produce, ttl)
}

func (c *Cache[K, V]) getOrSet(ctx context.Context, k K, produce Producer[V], ttl time.Duration) (V, error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if !c.opt.Coalesce {
		return c.populate(ctx, k, produce, ttl)
	}

	v, err, _ := c.sf.Do(ctx, k, func(ctx context.Context) (V, error) {
		// A flight that landed between our miss and joining has stored it.
		if v, ok := c.peek(k); ok {
			return v, nil
		}
		return c.populate(ctx, k, produce, ttl)
	})
	return v, err
}

func (c *Cache[K, V]) populate(ctx context.Context, k K, produce Producer[V], ttl time.Duration) (V, error) {
	v, err := produce(ctx)
	if err != nil {
		c.opt.Logger.Debug("cache populate failed",
			zap.String("cache", c.opt.Name),
			zap.Any("key", k),
			zap.Error(err),
		)
		var zero V
		return zero, err
	}
	c.set(k, v, ttl)
	return v, nil
}
