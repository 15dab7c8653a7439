package fifo

import (
	"testing"

	"github.com/IvanBrykalov/contentcache/policy"
)

type testNode[K comparable] struct{ k K }

func (n *testNode[K]) Key() K { return n.k }

type mockHooks[K comparable] struct {
	pushFrontCnt   int
	moveToFrontCnt int
	backVal        policy.Node[K]
}

func (h *mockHooks[K]) MoveToFront(policy.Node[K]) { h.moveToFrontCnt++ }
func (h *mockHooks[K]) PushFront(policy.Node[K])   { h.pushFrontCnt++ }
func (h *mockHooks[K]) Back() policy.Node[K]       { return h.backVal }
func (h *mockHooks[K]) Len() int                   { return 0 }

// Reads must not reorder under FIFO.
func TestFIFO_OnGet_DoesNotPromote(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string]().New(h)

	n := &testNode[string]{k: "a"}
	p.OnAdd(n)
	p.OnGet(n)
	p.OnGet(n)

	if h.pushFrontCnt != 1 {
		t.Fatalf("OnAdd must push once, got %d", h.pushFrontCnt)
	}
	if h.moveToFrontCnt != 0 {
		t.Fatalf("OnGet must not move, got %d moves", h.moveToFrontCnt)
	}
}

// A re-set refreshes the insertion timestamp, so it moves to the front.
func TestFIFO_OnUpdate_Promotes(t *testing.T) {
	t.Parallel()

	h := &mockHooks[string]{}
	p := New[string]().New(h)

	p.OnUpdate(&testNode[string]{k: "a"})
	if h.moveToFrontCnt != 1 {
		t.Fatalf("OnUpdate must move once, got %d", h.moveToFrontCnt)
	}
}

func TestFIFO_Victim_IsBack(t *testing.T) {
	t.Parallel()

	oldest := &testNode[string]{k: "first"}
	p := New[string]().New(&mockHooks[string]{backVal: oldest})
	if v := p.Victim(); v != oldest {
		t.Fatalf("Victim must be the oldest insertion, got %v", v)
	}
}
