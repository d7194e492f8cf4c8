package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var executions int32

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			val, err, _ := g.Do("introspect:token-1", func() (any, error) {
				atomic.AddInt32(&executions, 1)
				time.Sleep(20 * time.Millisecond)
				return "principal", nil
			})
			if err != nil {
				t.Errorf("shared call failed: %v", err)
			}
			if val != "principal" {
				t.Errorf("unexpected shared value: %v", val)
			}
		}()
	}

	close(start)
	wg.Wait()

	if got := atomic.LoadInt32(&executions); got != 1 {
		t.Fatalf("expected one execution for the shared key, got %d", got)
	}
}

func TestSingleFlight_DistinctKeysRunSeparately(t *testing.T) {
	var g SingleFlight
	var executions int32

	for _, key := range []string{"key-a", "key-b"} {
		if _, err, shared := g.Do(key, func() (any, error) {
			atomic.AddInt32(&executions, 1)
			return nil, nil
		}); err != nil || shared {
			t.Fatalf("unexpected result for %s: err=%v shared=%v", key, err, shared)
		}
	}

	if got := atomic.LoadInt32(&executions); got != 2 {
		t.Fatalf("expected both keys to execute, got %d", got)
	}
}
