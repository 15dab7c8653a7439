// Package lru implements the LRU eviction policy.
package lru

import "github.com/IvanBrykalov/contentcache/policy"

// Name is the strategy name the cache configuration refers to.
const Name = "lru"

// lru is a classic "move-to-front" Least-Recently-Used policy.
// Hits and updates both refresh lastAccessed, so both promote.
type lru[K comparable] struct {
	h policy.Hooks[K]
}

type lruPolicy[K comparable] struct{}

// New returns a Policy factory that constructs LRU instances.
func New[K comparable]() policy.Policy[K] { return lruPolicy[K]{} }

func (lruPolicy[K]) Name() string { return Name }

// New implements policy.Policy by binding cache hooks.
func (lruPolicy[K]) New(h policy.Hooks[K]) policy.Evictor[K] {
	return &lru[K]{h: h}
}

// OnAdd places the new entry at the front.
func (p *lru[K]) OnAdd(n policy.Node[K]) { p.h.PushFront(n) }

// OnGet promotes the entry.
func (p *lru[K]) OnGet(n policy.Node[K]) { p.h.MoveToFront(n) }

// OnUpdate promotes the entry (a re-set counts as recent use).
func (p *lru[K]) OnUpdate(n policy.Node[K]) { p.h.MoveToFront(n) }

// OnRemove is a no-op for pure LRU.
func (p *lru[K]) OnRemove(_ policy.Node[K]) {}

// Victim returns the least recently used entry.
func (p *lru[K]) Victim() policy.Node[K] { return p.h.Back() }
