// Package registry aggregates named caches for diagnostics and
// housekeeping: combined stats, clear-all, cleanup-all and an optional
// periodic janitor.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/cache"
)

// DefaultJanitorInterval is the cleanup period used when Run gets a
// non-positive interval.
const DefaultJanitorInterval = 5 * time.Minute

// ErrDuplicateName is returned by Register when a member with the same name exists.
var ErrDuplicateName = errors.New("registry: duplicate cache name")

// Member is the type-erased view of a cache the registry needs.
// Every *cache.Cache[K, V] satisfies it.
type Member interface {
	Name() string
	Stats() cache.Stats
	Clear()
	Cleanup() int
}

var _ Member = (*cache.Cache[string, struct{}])(nil)

// Registry holds members in registration order. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	members []Member
	byName  map[string]Member

	log *zap.Logger
}

// New returns an empty registry. A nil logger disables logging.
func New(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{byName: make(map[string]Member), log: log}
}

// Register adds m. Names must be non-empty and unique.
func (r *Registry) Register(m Member) error {
	name := m.Name()
	if name == "" {
		return errors.New("registry: cache has no name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	r.byName[name] = m
	r.members = append(r.members, m)
	return nil
}

// Lookup returns the member registered under name.
func (r *Registry) Lookup(name string) (Member, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.byName[name]
	return m, ok
}

// Names returns member names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.members))
	for i, m := range r.members {
		out[i] = m.Name()
	}
	return out
}

// Stats returns one snapshot per member, in registration order.
func (r *Registry) Stats() []cache.Stats {
	ms := r.snapshot()
	out := make([]cache.Stats, len(ms))
	for i, m := range ms {
		out[i] = m.Stats()
	}
	return out
}

// ClearAll empties every member. Counters are kept, as with cache.Clear.
func (r *Registry) ClearAll() {
	for _, m := range r.snapshot() {
		m.Clear()
	}
	r.log.Info("cleared all caches")
}

// CleanupAll runs Cleanup on every member and returns reclaimed counts by name.
func (r *Registry) CleanupAll() map[string]int {
	ms := r.snapshot()
	out := make(map[string]int, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Cleanup()
	}
	return out
}

// Run calls CleanupAll every interval until ctx is done, then returns
// ctx.Err(). Expiry is already enforced lazily on read; this only
// reclaims memory held by entries nobody asks for.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	r.log.Info("cache janitor started", zap.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("cache janitor stopped")
			return ctx.Err()
		case <-t.C:
			r.sweep()
		}
	}
}

func (r *Registry) sweep() {
	total := 0
	var fields []zap.Field
	for name, n := range r.CleanupAll() {
		total += n
		if n > 0 {
			fields = append(fields, zap.Int(name, n))
		}
	}
	if total == 0 {
		r.log.Debug("cache janitor: nothing expired")
		return
	}
	fields = append(fields, zap.Int("total", total))
	r.log.Info("cache janitor reclaimed expired entries", fields...)
}

func (r *Registry) snapshot() []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Member(nil), r.members...)
}
