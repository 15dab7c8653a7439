package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/IvanBrykalov/contentcache/cache"
)

func TestAdapter_MirrorsCacheActivity(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	a, err := New(reg, "contentcache", "test", prometheus.Labels{"cache": "blog"})
	require.NoError(t, err)

	c := cache.MustNew[string, int](
		cache.Config{TTL: time.Hour, MaxSize: 1, Strategy: cache.StrategyLRU},
		cache.Options[string, int]{Name: "blog", Metrics: a},
	)
	c.Set("a", 1)
	c.Get("a")
	c.Get("missing")
	c.Set("b", 2) // evicts a

	require.Equal(t, 1.0, testutil.ToFloat64(a.hits))
	require.Equal(t, 1.0, testutil.ToFloat64(a.misses))
	require.Equal(t, 1.0, testutil.ToFloat64(a.evicts.WithLabelValues("policy")))
	require.Equal(t, 0.0, testutil.ToFloat64(a.evicts.WithLabelValues("ttl")))
	require.Equal(t, 1.0, testutil.ToFloat64(a.entries))
}

// One registry can hold an adapter per cache when const labels differ,
// and a true duplicate is reported as an error.
func TestAdapter_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := New(reg, "contentcache", "", prometheus.Labels{"cache": "blog"})
	require.NoError(t, err)
	_, err = New(reg, "contentcache", "", prometheus.Labels{"cache": "projects"})
	require.NoError(t, err)

	_, err = New(reg, "contentcache", "", prometheus.Labels{"cache": "blog"})
	require.Error(t, err)
}
