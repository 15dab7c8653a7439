package cache

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/policy"
	"github.com/IvanBrykalov/contentcache/policy/fifo"
	"github.com/IvanBrykalov/contentcache/policy/lru"
	"github.com/IvanBrykalov/contentcache/policy/static"
)

// ErrInvalidConfig is wrapped by every configuration error returned from New.
var ErrInvalidConfig = errors.New("cache: invalid config")

// Strategy names the eviction policy applied when the cache is full.
type Strategy string

const (
	// StrategyLRU evicts the entry with the oldest last access.
	StrategyLRU Strategy = lru.Name
	// StrategyFIFO evicts the entry with the oldest insertion, ignoring reads.
	StrategyFIFO Strategy = fifo.Name
	// StrategyStatic never evicts; the cache may grow past MaxSize.
	// Use it only for small, bounded keysets.
	StrategyStatic Strategy = static.Name
)

// Config is the per-cache sizing and expiry configuration.
type Config struct {
	// TTL is the default time-to-live of an entry. Zero means an entry is
	// only live at the exact instant it was stored.
	TTL time.Duration
	// MaxSize is the entry count at which a new key triggers one eviction.
	MaxSize int
	// Strategy selects the eviction policy.
	Strategy Strategy
}

// Validate reports the first problem with c, wrapped in ErrInvalidConfig.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return fmt.Errorf("%w: MaxSize must be > 0, got %d", ErrInvalidConfig, c.MaxSize)
	}
	if c.TTL < 0 {
		return fmt.Errorf("%w: TTL must be >= 0, got %v", ErrInvalidConfig, c.TTL)
	}
	switch c.Strategy {
	case StrategyLRU, StrategyFIFO, StrategyStatic:
		return nil
	default:
		return fmt.Errorf("%w: unknown strategy %q", ErrInvalidConfig, c.Strategy)
	}
}

// policyFor maps a validated strategy to its policy factory.
func policyFor[K comparable](s Strategy) policy.Policy[K] {
	switch s {
	case StrategyFIFO:
		return fifo.New[K]()
	case StrategyStatic:
		return static.New[K]()
	default:
		return lru.New[K]()
	}
}

// EvictReason explains why an entry was removed by the cache itself.
type EvictReason int

const (
	// EvictPolicy: removed by the strategy to make room for a new key.
	EvictPolicy EvictReason = iota
	// EvictTTL: found expired on lookup or during Cleanup.
	EvictTTL
)

func (r EvictReason) String() string {
	switch r {
	case EvictTTL:
		return "ttl"
	default:
		return "policy"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
type Metrics interface {
	Hit()
	Miss()
	Evict(reason EvictReason)
	Size(entries int)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures everything about a cache except its sizing.
// Zero values are safe; defaults are applied in New:
//   - nil Metrics => NoopMetrics
//   - nil Logger  => zap.NewNop()
//   - nil Clock   => time.Now()
type Options[K comparable, V any] struct {
	// Name labels the cache in Stats and logs.
	Name string

	// Coalesce makes concurrent GetOrSet misses for the same key share
	// one producer call. Off by default: every missing caller runs its
	// own producer and the last write wins.
	Coalesce bool

	// OnEvict is called for policy and TTL evictions (not for Delete or
	// Clear) after the operation that caused them has released the cache
	// lock, so it may call back into the cache. Calls from one operation
	// arrive in eviction order.
	OnEvict func(k K, v V, reason EvictReason)
	Metrics Metrics
	Logger  *zap.Logger

	// Clock allows overriding the time source (tests).
	Clock Clock
}
