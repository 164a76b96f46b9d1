// Package registry provides keyed pools of shared, process-wide resources.
//
// A Pool creates at most one value per key, hands it to concurrent callers, and
// tracks how many callers currently hold each value so teardown can wait for
// in-flight work before closing anything.
package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClosed is returned by Acquire after TeardownAll has started.
var ErrClosed = errors.New("registry closed")

// CreateFunc builds the value for a key on first acquisition.
type CreateFunc[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	ready chan struct{}
	value V
	err   error
	refs  int
}

// Pool is a keyed resource registry. The zero value is not usable; call NewPool.
type Pool[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[V]
	closed  bool
	holders sync.WaitGroup
}

// NewPool creates an empty pool.
func NewPool[K comparable, V any]() *Pool[K, V] {
	return &Pool[K, V]{entries: make(map[K]*entry[V])}
}

// Acquire returns the value for key, creating it with create if it does not exist yet.
// Concurrent acquirers of a missing key wait for a single creation. A failed creation
// is not cached, so the next Acquire retries. A waiter whose own ctx is still live
// retries when the creation failed only because its creator's ctx ended. Every
// successful Acquire must be paired with a Release.
func (p *Pool[K, V]) Acquire(ctx context.Context, key K, create CreateFunc[V]) (V, error) {
	for {
		value, retry, err := p.acquire(ctx, key, create)
		if !retry {
			return value, err
		}
	}
}

func (p *Pool[K, V]) acquire(ctx context.Context, key K, create CreateFunc[V]) (V, bool, error) {
	var zero V

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, false, ErrClosed
	}

	e, ok := p.entries[key]
	if !ok {
		e = &entry[V]{ready: make(chan struct{}), refs: 1}
		p.entries[key] = e
		p.holders.Add(1)
		p.mu.Unlock()

		value, err := create(ctx)

		p.mu.Lock()
		e.value, e.err = value, err
		if err != nil {
			e.refs = 0
			delete(p.entries, key)
			p.holders.Done()
		}
		close(e.ready)
		p.mu.Unlock()

		if err != nil {
			return zero, false, err
		}
		return value, false, nil
	}
	p.mu.Unlock()

	select {
	case <-e.ready:
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
	if e.err != nil {
		if isContextErr(e.err) && ctx.Err() == nil {
			return zero, true, nil
		}
		return zero, false, e.err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return zero, false, ErrClosed
	}
	e.refs++
	p.holders.Add(1)
	return e.value, false, nil
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Release drops one hold on key. Releasing a key that is not held is a no-op.
func (p *Pool[K, V]) Release(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.entries[key]
	if !ok || e.refs == 0 {
		return
	}
	e.refs--
	p.holders.Done()
}

// Use acquires key, runs fn with the value and releases it.
func (p *Pool[K, V]) Use(ctx context.Context, key K, create CreateFunc[V], fn func(V) error) error {
	value, err := p.Acquire(ctx, key, create)
	if err != nil {
		return err
	}
	defer p.Release(key)
	return fn(value)
}

// Len reports the number of keys currently registered, including ones still being created.
func (p *Pool[K, V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

// TeardownAll stops new acquisitions, waits until every hold has been released and then
// closes all values that implement io.Closer. If ctx ends first the wait is abandoned,
// nothing is closed and the context error is returned. Calling it again after a
// completed teardown is a no-op.
func (p *Pool[K, V]) TeardownAll(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.holders.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("teardown interrupted with resources in use: %w", ctx.Err())
	}

	p.mu.Lock()
	entries := p.entries
	p.entries = make(map[K]*entry[V])
	p.mu.Unlock()

	var errs []error
	for key, e := range entries {
		if e.err != nil {
			continue
		}
		if closer, ok := any(e.value).(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close %v: %w", key, err))
			}
		}
	}
	return errors.Join(errs...)
}
