// Package site wires the named content caches of the application and the
// loader that reads content through them.
package site

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/IvanBrykalov/contentcache/cache"
	"github.com/IvanBrykalov/contentcache/internal/content"
	"github.com/IvanBrykalov/contentcache/keys"
	"github.com/IvanBrykalov/contentcache/metrics/prom"
	"github.com/IvanBrykalov/contentcache/registry"
)

// MetricsNamespace prefixes every exported cache metric.
const MetricsNamespace = "contentcache"

// Config holds one cache.Config per named cache.
type Config struct {
	Blog     cache.Config
	Projects cache.Config
	Modules  cache.Config
	API      cache.Config
	Static   cache.Config
	Markup   cache.Config

	// Coalesce de-duplicates concurrent misses for the same key.
	Coalesce bool
}

// DefaultConfig returns the per-domain defaults.
func DefaultConfig() Config {
	return Config{
		Blog:     cache.Config{TTL: 10 * time.Minute, MaxSize: 100, Strategy: cache.StrategyLRU},
		Projects: cache.Config{TTL: 15 * time.Minute, MaxSize: 50, Strategy: cache.StrategyLRU},
		Modules:  cache.Config{TTL: 30 * time.Minute, MaxSize: 100, Strategy: cache.StrategyLRU},
		API:      cache.Config{TTL: 2 * time.Minute, MaxSize: 200, Strategy: cache.StrategyFIFO},
		Static:   cache.Config{TTL: time.Hour, MaxSize: 500, Strategy: cache.StrategyStatic},
		Markup:   cache.Config{TTL: 20 * time.Minute, MaxSize: 200, Strategy: cache.StrategyLRU},
	}
}

// Caches is the application's set of typed caches. Build one with
// NewCaches and pass it to whatever needs it; there are no package-level
// instances.
type Caches struct {
	Blog     *cache.Cache[string, content.Post]
	Projects *cache.Cache[string, content.Project]
	Modules  *cache.Cache[string, content.Module]
	API      *cache.Cache[string, []byte]
	Static   *cache.Cache[string, []byte]
	Markup   *cache.Cache[string, content.Outline]

	Registry *registry.Registry
}

// Deps are the shared collaborators of every cache.
type Deps struct {
	// Registerer receives one metric set per cache, labelled cache=<name>.
	// Nil disables Prometheus export.
	Registerer prometheus.Registerer
	Logger     *zap.Logger
	Clock      cache.Clock
}

// NewCaches builds, instruments and registers all named caches.
func NewCaches(cfg Config, deps Deps) (*Caches, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	b := builder{cfg: cfg, deps: deps, reg: registry.New(deps.Logger.Named("registry"))}

	var (
		c   = &Caches{Registry: b.reg}
		err error
	)
	if c.Blog, err = build[content.Post](&b, keys.Blog, cfg.Blog); err != nil {
		return nil, err
	}
	if c.Projects, err = build[content.Project](&b, keys.Projects, cfg.Projects); err != nil {
		return nil, err
	}
	if c.Modules, err = build[content.Module](&b, keys.Modules, cfg.Modules); err != nil {
		return nil, err
	}
	if c.API, err = build[[]byte](&b, keys.API, cfg.API); err != nil {
		return nil, err
	}
	if c.Static, err = build[[]byte](&b, keys.Static, cfg.Static); err != nil {
		return nil, err
	}
	if c.Markup, err = build[content.Outline](&b, keys.Markup, cfg.Markup); err != nil {
		return nil, err
	}
	return c, nil
}

type builder struct {
	cfg  Config
	deps Deps
	reg  *registry.Registry
}

func build[V any](b *builder, ns keys.Namespace, cc cache.Config) (*cache.Cache[string, V], error) {
	name := string(ns)
	opt := cache.Options[string, V]{
		Name:     name,
		Coalesce: b.cfg.Coalesce,
		Logger:   b.deps.Logger.With(zap.String("cache", name)),
		Clock:    b.deps.Clock,
	}
	if b.deps.Registerer != nil {
		m, err := prom.New(b.deps.Registerer, MetricsNamespace, "", prometheus.Labels{"cache": name})
		if err != nil {
			return nil, fmt.Errorf("site: metrics for %s cache: %w", name, err)
		}
		opt.Metrics = m
	}

	c, err := cache.New(cc, opt)
	if err != nil {
		return nil, fmt.Errorf("site: %s cache: %w", name, err)
	}
	if err := b.reg.Register(c); err != nil {
		return nil, err
	}
	return c, nil
}
