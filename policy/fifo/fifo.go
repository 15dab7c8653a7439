// Package fifo implements first-in-first-out eviction: the entry with the
// oldest insertion (or refresh) timestamp goes first, regardless of reads.
package fifo

import "github.com/IvanBrykalov/contentcache/policy"

// Name is the strategy name the cache configuration refers to.
const Name = "fifo"

type fifo[K comparable] struct {
	h policy.Hooks[K]
}

type fifoPolicy[K comparable] struct{}

// New returns a Policy factory that constructs FIFO instances.
func New[K comparable]() policy.Policy[K] { return fifoPolicy[K]{} }

func (fifoPolicy[K]) Name() string { return Name }

func (fifoPolicy[K]) New(h policy.Hooks[K]) policy.Evictor[K] {
	return &fifo[K]{h: h}
}

func (p *fifo[K]) OnAdd(n policy.Node[K]) { p.h.PushFront(n) }

// OnGet does not reorder: access recency is not a signal for FIFO.
func (p *fifo[K]) OnGet(_ policy.Node[K]) {}

// OnUpdate re-stamps the insertion time, so the entry becomes the newest.
func (p *fifo[K]) OnUpdate(n policy.Node[K]) { p.h.MoveToFront(n) }

func (p *fifo[K]) OnRemove(_ policy.Node[K]) {}

// Victim returns the oldest inserted entry.
func (p *fifo[K]) Victim() policy.Node[K] { return p.h.Back() }
