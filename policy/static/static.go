// Package static implements the no-eviction strategy for small, bounded
// keysets. A cache using it may grow past its MaxSize.
package static

import "github.com/IvanBrykalov/contentcache/policy"

// Name is the strategy name the cache configuration refers to.
const Name = "static"

type static[K comparable] struct {
	h policy.Hooks[K]
}

type staticPolicy[K comparable] struct{}

// New returns a Policy factory that never proposes a victim.
func New[K comparable]() policy.Policy[K] { return staticPolicy[K]{} }

func (staticPolicy[K]) Name() string { return Name }

func (staticPolicy[K]) New(h policy.Hooks[K]) policy.Evictor[K] {
	return &static[K]{h: h}
}

// OnAdd still links the node so the cache can unlink it on delete/expiry.
func (p *static[K]) OnAdd(n policy.Node[K]) { p.h.PushFront(n) }
func (p *static[K]) OnGet(_ policy.Node[K])    {}
func (p *static[K]) OnUpdate(_ policy.Node[K]) {}
func (p *static[K]) OnRemove(_ policy.Node[K]) {}

// Victim always returns nil.
func (p *static[K]) Victim() policy.Node[K] { return nil }
