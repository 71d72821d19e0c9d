package parallel

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolKeepsSubmissionOrder(t *testing.T) {
	pool := NewPool[int](context.Background(), 3, false)
	for i := range 10 {
		pool.Submit(fmt.Sprintf("job%d", i), func(context.Context) (int, error) {
			// Later jobs finish first.
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * i, nil
		})
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Fatalf("got %d results, want 10", len(results))
	}
	for i, r := range results {
		if r.ID != fmt.Sprintf("job%d", i) || r.Value != i*i || r.Skipped {
			t.Errorf("result %d = %+v", i, r)
		}
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const limit = 2
	var running, peak atomic.Int32

	pool := NewPool[struct{}](context.Background(), limit, false)
	for i := range 8 {
		pool.Submit(fmt.Sprint(i), func(context.Context) (struct{}, error) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		})
	}
	pool.Wait()

	if got := peak.Load(); got > limit {
		t.Errorf("peak concurrency = %d, want at most %d", got, limit)
	}
}

func TestPoolErrors(t *testing.T) {
	errBad := errors.New("bad")
	pool := NewPool[string](context.Background(), 0, false)
	pool.Submit("a", func(context.Context) (string, error) { return "ok", nil })
	pool.Submit("b", func(context.Context) (string, error) { return "", errBad })

	errs := Errors(pool.Wait())
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if !errors.Is(errs[0], errBad) || errs[0].Error() != "b: bad" {
		t.Errorf("error = %v", errs[0])
	}
}

func TestPoolFailFastSkipsPending(t *testing.T) {
	pool := NewPool[int](context.Background(), 1, true)
	pool.Submit("first", func(context.Context) (int, error) {
		return 0, errors.New("stop")
	})
	// Give the failing job time to claim the only slot and cancel.
	time.Sleep(20 * time.Millisecond)
	var ran atomic.Bool
	pool.Submit("second", func(context.Context) (int, error) {
		ran.Store(true)
		return 1, nil
	})

	results := pool.Wait()
	if ran.Load() {
		t.Error("job after a fail-fast error should not run")
	}
	if !results[1].Skipped {
		t.Errorf("second result = %+v, want skipped", results[1])
	}
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool[int](ctx, 2, false)
	pool.Submit("x", func(context.Context) (int, error) { return 1, nil })
	results := pool.Wait()
	if !results[0].Skipped {
		t.Errorf("result = %+v, want skipped", results[0])
	}
}
