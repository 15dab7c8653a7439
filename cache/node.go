package cache

// node is an intrusive doubly linked list element owned by a cache.
// It carries the entry metadata alongside the list links.
type node[K comparable, V any] struct {
	key K
	val V

	// Intrusive list links: head is the most recently touched entry.
	prev *node[K, V]
	next *node[K, V]

	stamp        int64 // insertion/refresh time, UnixNano
	ttl          int64 // nanoseconds
	accessCount  int64
	lastAccessed int64 // UnixNano
}

// Key returns the node key (part of policy.Node interface).
func (n *node[K, V]) Key() K { return n.key }

// expired reports whether the entry is no longer live at now.
// Live means now-stamp <= ttl.
func (n *node[K, V]) expired(now int64) bool {
	return now-n.stamp > n.ttl
}
