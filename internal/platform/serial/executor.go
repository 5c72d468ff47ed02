// Package serial runs mutating jobs one at a time on a single goroutine.
package serial

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned for jobs submitted after Close.
var ErrClosed = errors.New("executor closed")

type workerKey struct{}

type job struct {
	ctx    context.Context
	fn     func(ctx context.Context) error
	result chan error
}

// Executor owns a single worker goroutine. Jobs submitted through Do never overlap.
type Executor struct {
	jobs      chan job
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewExecutor starts the worker goroutine.
func NewExecutor() *Executor {
	e := &Executor{
		jobs: make(chan job),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go e.loop()
	return e
}

func (e *Executor) loop() {
	defer close(e.done)
	for {
		select {
		case <-e.quit:
			return
		case j := <-e.jobs:
			j.result <- j.fn(context.WithValue(j.ctx, workerKey{}, e))
		}
	}
}

// Do runs fn on the worker goroutine and waits for it to return.
// If ctx is cancelled before the job starts, fn is not run.
// A Do made with the context of a running job runs fn inline as part of that job.
func (e *Executor) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if owner, _ := ctx.Value(workerKey{}).(*Executor); owner == e {
		return fn(ctx)
	}
	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-e.quit:
		return ErrClosed
	case e.jobs <- j:
	}
	return <-j.result
}

// Close stops the worker after the running job, if any, finishes.
func (e *Executor) Close() {
	e.closeOnce.Do(func() {
		close(e.quit)
	})
	<-e.done
}
