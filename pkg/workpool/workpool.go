// Package workpool generalizes the bounded-parallelism pattern the teacher
// hand-rolled in pkg/tools/manager.go's EnsureTools (a semaphore channel plus
// a sync.WaitGroup) into a single reusable primitive built on
// golang.org/x/sync/errgroup and golang.org/x/sync/semaphore, shared by the
// install engine and the task-DAG runner.
package workpool

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Pool runs work items with a fixed concurrency ceiling and collects the
// first error, matching the fail-fast behavior of errgroup.
type Pool struct {
	sem *semaphore.Weighted
	grp *errgroup.Group
	ctx context.Context
}

// New creates a pool bounded to max concurrent goroutines. max <= 0 means
// unbounded (still funneled through a single errgroup for error collection).
func New(ctx context.Context, max int) *Pool {
	grp, gctx := errgroup.WithContext(ctx)
	p := &Pool{grp: grp, ctx: gctx}
	if max > 0 {
		p.sem = semaphore.NewWeighted(int64(max))
	}
	return p
}

// Go schedules fn, blocking the caller only long enough to acquire a slot.
// fn should respect ctx cancellation so a sibling failure can abort early.
func (p *Pool) Go(fn func(ctx context.Context) error) {
	p.grp.Go(func() error {
		if p.sem != nil {
			if err := p.sem.Acquire(p.ctx, 1); err != nil {
				return err
			}
			defer p.sem.Release(1)
		}
		return fn(p.ctx)
	})
}

// Wait blocks until every scheduled item has finished and returns the first
// non-nil error, if any.
func (p *Pool) Wait() error {
	return p.grp.Wait()
}

// Run is a convenience wrapper for the common map-over-items case used by
// both tool installation and task execution: apply fn to each item with at
// most max in flight, returning the first error encountered.
func Run[T any](ctx context.Context, max int, items []T, fn func(ctx context.Context, item T) error) error {
	if len(items) == 0 {
		return nil
	}
	if len(items) == 1 {
		return fn(ctx, items[0])
	}
	p := New(ctx, max)
	for _, item := range items {
		item := item
		p.Go(func(ctx context.Context) error {
			return fn(ctx, item)
		})
	}
	return p.Wait()
}
