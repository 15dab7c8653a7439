// Package singleflight coalesces concurrent calls that share a key.
package singleflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Group runs fn at most once per key among overlapping callers; the
// others wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a key becomes the leader and runs fn with its
//     own ctx.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - A follower whose ctx is cancelled returns ctx.Err(); the leader's
//     fn keeps running.
//   - A flight that ends with a context error belongs to the leader's ctx.
//     A follower whose own ctx is still live does not take that error; it
//     calls Do again and may become the next leader.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
}

// Do runs fn once for the given key. shared reports whether the result
// came from another caller's flight.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func(context.Context) (V, error)) (v V, err error, shared bool) {
	for {
		g.mu.Lock()
		if g.m == nil {
			g.m = make(map[K]*call[V])
		}
		c, ok := g.m[key]
		if !ok {
			c = &call[V]{done: make(chan struct{})}
			g.m[key] = c
			g.mu.Unlock()
			return g.lead(ctx, key, c, fn)
		}
		g.mu.Unlock()

		select {
		case <-c.done:
			if isContextErr(c.err) && ctx.Err() == nil {
				continue
			}
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), false
		}
	}
}

func (g *Group[K, V]) lead(ctx context.Context, key K, c *call[V], fn func(context.Context) (V, error)) (V, error, bool) {
	// Publish even if fn panics so followers are never stranded.
	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("singleflight: fn panicked: %v", r)
			g.finish(key, c)
			panic(r)
		}
		g.finish(key, c)
	}()

	c.val, c.err = fn(ctx)
	return c.val, c.err, false
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (g *Group[K, V]) finish(key K, c *call[V]) {
	close(c.done)
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
