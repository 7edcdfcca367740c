// Package worker bounds the number of persistence units of work running
// at once so store I/O never starves the connection pumps.
package worker

import (
	"context"
)

// Pool is a semaphore-bounded worker pool. Callers run their own
// function once a slot is acquired, so per-connection ordering is
// preserved: the caller blocks, the event loop does not.
type Pool struct {
	sem chan struct{}
}

// New creates a pool with the given capacity.
func New(size int) *Pool {
	if size <= 0 {
		size = 32
	}
	return &Pool{sem: make(chan struct{}, size)}
}

// Do runs fn once a slot is available. Returns the context error if the
// caller is canceled while waiting.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.sem }()
	return fn()
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return cap(p.sem)
}
