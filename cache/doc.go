// Package cache provides a generic in-memory cache with per-entry TTL,
// a strategy-selected eviction policy (LRU, FIFO or none), hit/miss/eviction
// statistics and a cache-aside accessor.
//
// Design
//
//   - Storage: a map[K]*node for lookups and an intrusive doubly linked list
//     whose back is the next eviction candidate. All operations are O(1)
//     expected, except Cleanup and Clear which walk the list.
//
//   - Policies: the eviction strategy is a policy.Policy bound to the list
//     through hooks. LRU promotes on hit and on overwrite; FIFO only on
//     overwrite (an overwrite re-stamps the insertion time); static never
//     proposes a victim.
//
//   - Capacity: when a NEW key is stored into a cache holding MaxSize
//     entries, exactly one victim is evicted first. Overwrites never evict.
//     The static strategy lets the cache grow past MaxSize.
//
//   - TTL: an entry is live while now-timestamp <= ttl. Expiry is lazy on
//     Get and Has, or explicit via Cleanup. There is no background timer;
//     see package registry for periodic cleanup across caches.
//
//   - Statistics: hits, misses and evictions are cumulative for the life of
//     the cache (Clear keeps them). An expired entry found on lookup counts
//     as a miss and an eviction. Delete is never an eviction.
//
//   - GetOrSet: cache-aside. On miss the producer runs outside the lock and
//     its result is stored. A failing producer stores nothing. Concurrent
//     misses are not de-duplicated unless Options.Coalesce is set.
//
//   - Metrics: Options.Metrics receives Hit/Miss/Evict/Size signals.
//     NoopMetrics is the default; metrics/prom exports them to Prometheus.
//
// Basic usage
//
//	c, err := cache.New[string, string](
//	    cache.Config{TTL: time.Minute, MaxSize: 100, Strategy: cache.StrategyLRU},
//	    cache.Options[string, string]{Name: "blog"},
//	)
//	if err != nil {
//	    return err
//	}
//	c.Set("a", "1")
//	if v, ok := c.Get("a"); ok {
//	    _ = v
//	}
//
// Cache-aside
//
//	post, err := c.GetOrSet(ctx, "blog:post:hello:en", func(ctx context.Context) (string, error) {
//	    return store.LoadPost(ctx, "hello", "en")
//	})
//
// Thread-safety
//
// All methods are safe for concurrent use. Get mutates (lazy expiry,
// access bookkeeping), so reads and writes share one mutex.
package cache
