package cache

import "github.com/IvanBrykalov/contentcache/policy"

// -------------------- intrusive list (mu held) --------------------

// insertFront links n at the head in O(1).
func (c *Cache[K, V]) insertFront(n *node[K, V]) {
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
	c.len++
}

// moveToFront relinks n at the head in O(1).
func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if n == c.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev = nil
	n.next = c.head
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

// unlink detaches n from the list in O(1).
func (c *Cache[K, V]) unlink(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if c.head == n {
		c.head = n.next
	}
	if c.tail == n {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
	c.len--
}

// -------------------- policy hooks --------------------

// cacheHooks adapts the cache's list operations to policy.Hooks.
type cacheHooks[K comparable, V any] struct{ c *Cache[K, V] }

func (h cacheHooks[K, V]) MoveToFront(x policy.Node[K]) { h.c.moveToFront(x.(*node[K, V])) }
func (h cacheHooks[K, V]) PushFront(x policy.Node[K])   { h.c.insertFront(x.(*node[K, V])) }
func (h cacheHooks[K, V]) Len() int                     { return h.c.len }

// Back returns nil (not a typed nil pointer) on an empty list so policies
// can compare against nil.
func (h cacheHooks[K, V]) Back() policy.Node[K] {
	if h.c.tail == nil {
		return nil
	}
	return h.c.tail
}
