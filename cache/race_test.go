package cache

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// A mixed workload of concurrent Set/Get/SetWithTTL/Delete/Cleanup on random keys.
// Should pass under `-race`, and size must never exceed MaxSize.
func TestRace_Basic(t *testing.T) {
	const maxSize = 1_024
	c := MustNew[string, []byte](
		Config{TTL: 50 * time.Millisecond, MaxSize: maxSize, Strategy: StrategyLRU},
		Options[string, []byte]{},
	)

	workers := 4 * runtime.GOMAXPROCS(0)
	keyspace := 10_000
	deadline := time.Now().Add(time.Second)

	var over atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(id int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(id)*9973))
			for time.Now().Before(deadline) {
				k := "k:" + strconv.Itoa(r.Intn(keyspace))
				switch r.Intn(100) {
				case 0: // ~1% Cleanup
					c.Cleanup()
				case 1, 2, 3, 4: // ~4% Delete
					c.Delete(k)
				case 5, 6, 7, 8, 9: // ~5% SetWithTTL
					c.SetWithTTL(k, []byte("x"), time.Duration(10+r.Intn(20))*time.Millisecond)
				case 10, 11, 12, 13, 14, 15, 16, 17, 18, 19: // ~10% Set
					c.Set(k, []byte("x"))
				default: // ~80% Get
					c.Get(k)
				}
				if c.Len() > maxSize {
					over.Add(1)
				}
			}
		}(w)
	}
	wg.Wait()

	if n := over.Load(); n != 0 {
		t.Fatalf("size exceeded MaxSize %d times", n)
	}
	st := c.Stats()
	if st.HitRate < 0 || st.HitRate > 100 {
		t.Fatalf("hit rate out of range: %+v", st)
	}
}

// One hundred goroutines call GetOrSet on the same key with Coalesce on.
// The producer should run at most once.
func TestRace_GetOrSetCoalesced(t *testing.T) {
	var calls int64

	c := MustNew[string, string](
		Config{TTL: time.Minute, MaxSize: 1_024, Strategy: StrategyFIFO},
		Options[string, string]{Coalesce: true},
	)
	key := "same-key"
	produce := func(context.Context) (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(2 * time.Millisecond) // simulate I/O
		return "v:" + key, nil
	}

	const goroutines = 100
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := c.GetOrSet(context.Background(), key, produce)
			if err != nil {
				t.Errorf("GetOrSet error: %v", err)
				return
			}
			if v != "v:"+key {
				t.Errorf("unexpected value: %q", v)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt64(&calls); got > 1 {
		t.Fatalf("producer should run at most once, got %d", got)
	}

	// Subsequent call should be a pure cache hit.
	if v, err := c.GetOrSet(context.Background(), key, produce); err != nil || v != "v:"+key {
		t.Fatalf("second GetOrSet failed: v=%q err=%v", v, err)
	}
}
