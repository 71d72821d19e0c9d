package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Result is the outcome of one submitted job.
type Result[T any] struct {
	ID       string
	Value    T
	Err      error
	Duration time.Duration
	// Skipped is set when the pool was cancelled before the job ran.
	Skipped bool
}

// Pool runs jobs with bounded concurrency.
type Pool[T any] struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	results    []Result[T]
	failFast   bool
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewPool creates a pool running at most maxWorkers jobs at once. A
// maxWorkers of 0 means no limit. With failFast, the first error cancels
// every job that has not started yet.
func NewPool[T any](ctx context.Context, maxWorkers int, failFast bool) *Pool[T] {
	ctx, cancel := context.WithCancel(ctx)
	return &Pool[T]{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		failFast:   failFast,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Submit queues fn under id. It does not block.
func (p *Pool[T]) Submit(id string, fn func(ctx context.Context) (T, error)) {
	p.mu.Lock()
	index := len(p.results)
	p.results = append(p.results, Result[T]{ID: id, Skipped: true})
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				return
			}
		}
		if p.ctx.Err() != nil {
			return
		}

		start := time.Now()
		value, err := fn(p.ctx)
		result := Result[T]{ID: id, Value: value, Err: err, Duration: time.Since(start)}

		p.mu.Lock()
		defer p.mu.Unlock()
		p.results[index] = result
		if err != nil && p.failFast {
			p.cancel()
		}
	}()
}

// Wait blocks until every job has finished or been skipped and returns the
// results in submission order.
func (p *Pool[T]) Wait() []Result[T] {
	p.wg.Wait()
	p.cancel()

	p.mu.Lock()
	defer p.mu.Unlock()
	results := make([]Result[T], len(p.results))
	copy(results, p.results)
	return results
}

// Errors returns the errors of the given results, each prefixed by its ID.
func Errors[T any](results []Result[T]) []error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.ID, r.Err))
		}
	}
	return errs
}
