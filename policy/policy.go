// Package policy defines the eviction strategy contract used by the cache.
package policy

// Node is the minimal contract a cache entry must satisfy for a policy.
type Node[K comparable] interface {
	Key() K
}

// Hooks expose O(1) operations on the cache's intrusive recency list
// (front = most recently touched, back = next eviction candidate).
//
// Concurrency: all hook calls happen under the cache lock.
// Hooks manage only the list; the cache owns the key->entry map.
type Hooks[K comparable] interface {
	// MoveToFront moves a linked node to the front.
	MoveToFront(Node[K])
	// PushFront links a new node at the front.
	PushFront(Node[K])
	// Back returns the node at the back of the list (or nil if empty).
	Back() Node[K]
	// Len returns the number of linked nodes.
	Len() int
}

// Evictor is a policy instance bound to one cache's hooks.
// All methods are invoked under the cache lock.
//
// Semantics:
//   - OnAdd must link the node (Hooks.PushFront); the cache unlinks it
//     itself on removal.
//   - OnGet is called on every hit, OnUpdate when an existing key is set again.
//   - Victim is asked once before a new key is inserted into a full cache;
//     returning nil means "do not evict" and the cache grows past MaxSize.
//   - OnRemove is a notification after the node has been unlinked.
type Evictor[K comparable] interface {
	OnAdd(Node[K])
	OnGet(Node[K])
	OnUpdate(Node[K])
	OnRemove(Node[K])
	Victim() Node[K]
}

// Policy is a factory that binds an Evictor to a cache's hooks.
type Policy[K comparable] interface {
	Name() string
	New(Hooks[K]) Evictor[K]
}
