package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/internal/singleflight"
	"github.com/IvanBrykalov/contentcache/policy"
)

// Cache is an in-memory key/value store with per-entry TTL and a
// strategy-selected eviction policy. All methods are safe for concurrent
// use; every operation that may mutate state (Get included, because of
// lazy expiry) runs under a single mutex.
type Cache[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu   sync.Mutex
	m    map[K]*node[K, V]
	head *node[K, V] // most recently touched
	tail *node[K, V] // next eviction candidate
	len  int

	hits      uint64
	misses    uint64
	evictions uint64

	cfg Config
	pol policy.Evictor[K]
	opt Options[K, V]

	// pending queues OnEvict calls until the lock is released.
	pending []evicted[K, V]

	// sf coalesces GetOrSet misses when Options.Coalesce is set.
	sf singleflight.Group[K, V]
}

type evicted[K comparable, V any] struct {
	key    K
	val    V
	reason EvictReason
}

// New validates cfg and constructs a cache. An invalid configuration is a
// programmer error and is rejected rather than defaulted.
func New[K comparable, V any](cfg Config, opt Options[K, V]) (*Cache[K, V], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	c := &Cache[K, V]{
		m:   make(map[K]*node[K, V], cfg.MaxSize),
		cfg: cfg,
		opt: opt,
	}
	c.pol = policyFor[K](cfg.Strategy).New(cacheHooks[K, V]{c: c})
	return c, nil
}

// MustNew is like New but panics on an invalid configuration.
func MustNew[K comparable, V any](cfg Config, opt Options[K, V]) *Cache[K, V] {
	c, err := New(cfg, opt)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns the diagnostic label from Options.
func (c *Cache[K, V]) Name() string { return c.opt.Name }

// Get returns the live value for k and a presence flag.
// An expired entry is removed and reported as a miss and an eviction.
// On hit the entry's access count and last-access time are refreshed.
func (c *Cache[K, V]) Get(k K) (V, bool) {
	c.mu.Lock()
	defer c.unlock()

	var zero V
	n, ok := c.m[k]
	if !ok {
		c.missLocked()
		return zero, false
	}
	now := c.now()
	if n.expired(now) {
		c.evictLocked(n, EvictTTL)
		c.missLocked()
		c.opt.Metrics.Size(len(c.m))
		return zero, false
	}

	n.accessCount++
	n.lastAccessed = now
	c.pol.OnGet(n)
	c.hits++
	c.opt.Metrics.Hit()
	return n.val, true
}

// Has reports whether k holds a live entry. Like Get it removes an expired
// entry (counting a miss and an eviction), but it neither counts a hit nor
// touches access bookkeeping.
func (c *Cache[K, V]) Has(k K) bool {
	c.mu.Lock()
	defer c.unlock()

	n, ok := c.m[k]
	if !ok {
		return false
	}
	if n.expired(c.now()) {
		c.evictLocked(n, EvictTTL)
		c.missLocked()
		c.opt.Metrics.Size(len(c.m))
		return false
	}
	return true
}

// Set inserts or overwrites k with the default TTL.
func (c *Cache[K, V]) Set(k K, v V) {
	c.set(k, v, c.cfg.TTL)
}

// SetWithTTL inserts or overwrites k with a per-entry TTL.
// A negative ttl is treated as zero.
func (c *Cache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	if ttl < 0 {
		ttl = 0
	}
	c.set(k, v, ttl)
}

func (c *Cache[K, V]) set(k K, v V, ttl time.Duration) {
	c.mu.Lock()
	defer c.unlock()

	now := c.now()
	if n, ok := c.m[k]; ok {
		// Overwrite in place: size is unchanged, so no eviction.
		n.val = v
		n.stamp = now
		n.ttl = int64(ttl)
		n.accessCount = 1
		n.lastAccessed = now
		c.pol.OnUpdate(n)
		return
	}

	// New key at capacity: evict exactly one victim first.
	if len(c.m) >= c.cfg.MaxSize {
		if victim := c.pol.Victim(); victim != nil {
			c.evictLocked(victim.(*node[K, V]), EvictPolicy)
		}
	}

	n := &node[K, V]{
		key:          k,
		val:          v,
		stamp:        now,
		ttl:          int64(ttl),
		accessCount:  1,
		lastAccessed: now,
	}
	c.m[k] = n
	c.pol.OnAdd(n)
	c.opt.Metrics.Size(len(c.m))
}

// Delete removes k and reports whether it was present.
// Caller-initiated removal is not counted as an eviction.
func (c *Cache[K, V]) Delete(k K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.m[k]
	if !ok {
		return false
	}
	c.removeLocked(n)
	c.opt.Metrics.Size(len(c.m))
	return true
}

// Clear removes every entry. Hit, miss and eviction counters are kept.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := c.head; n != nil; {
		next := n.next
		c.removeLocked(n)
		n = next
	}
	c.opt.Metrics.Size(0)
}

// Cleanup removes every expired entry, counts each as an eviction and
// returns how many were removed.
func (c *Cache[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.unlock()

	now := c.now()
	removed := 0
	for n := c.tail; n != nil; {
		prev := n.prev
		if n.expired(now) {
			c.evictLocked(n, EvictTTL)
			removed++
		}
		n = prev
	}
	if removed > 0 {
		c.opt.Metrics.Size(len(c.m))
	}
	return removed
}

// Len returns the number of resident entries, expired or not.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Stats returns a snapshot of the cache's counters. It has no side effects.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Name:      c.opt.Name,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.m),
		HitRate:   hitRate(c.hits, c.misses),
	}
}

// -------------------- internals (mu held) --------------------

// unlock releases mu and then delivers queued OnEvict calls, so a
// callback may use the cache.
func (c *Cache[K, V]) unlock() {
	ev := c.pending
	c.pending = nil
	c.mu.Unlock()
	for _, e := range ev {
		c.opt.OnEvict(e.key, e.val, e.reason)
	}
}

func (c *Cache[K, V]) now() int64 {
	if c.opt.Clock != nil {
		return c.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

// peek returns a live value without touching counters or recency.
func (c *Cache[K, V]) peek(k K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n, ok := c.m[k]; ok && !n.expired(c.now()) {
		return n.val, true
	}
	var zero V
	return zero, false
}

func (c *Cache[K, V]) missLocked() {
	c.misses++
	c.opt.Metrics.Miss()
}

// removeLocked unlinks n and drops it from the map.
func (c *Cache[K, V]) removeLocked(n *node[K, V]) {
	c.unlink(n)
	delete(c.m, n.key)
	c.pol.OnRemove(n)
}

// evictLocked removes n and records it as an eviction.
func (c *Cache[K, V]) evictLocked(n *node[K, V], reason EvictReason) {
	c.removeLocked(n)
	c.evictions++
	c.opt.Metrics.Evict(reason)
	if c.opt.OnEvict != nil {
		c.pending = append(c.pending, evicted[K, V]{key: n.key, val: n.val, reason: reason})
	}
}
