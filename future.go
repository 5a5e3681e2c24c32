package tcaws

import (
	"context"
	"fmt"
	"sync"
)

// Future is the pending result of an asynchronous operation.
// A Future completes exactly once; every waiter observes the same result.
type Future[T any] struct {
	done chan struct{}
	once sync.Once
	val  T
	err  error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Completed returns a Future that has already finished with v and err.
func Completed[T any](v T, err error) *Future[T] {
	f := newFuture[T]()
	f.complete(v, err)
	return f
}

func (f *Future[T]) complete(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// Done returns a channel that is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available or ctx is done.
// Cancelling ctx stops the wait only; the operation itself keeps running.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the result is available.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// Executor runs tasks off the calling goroutine.
// Submit must not block waiting for the task to run.
type Executor interface {
	Submit(task func()) error
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(task func()) error

func (f ExecutorFunc) Submit(task func()) error {
	return f(task)
}

// dispatch runs fn on exec and returns a Future for its result.
func dispatch[T any](exec Executor, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()
	err := exec.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.complete(zero, fmt.Errorf("task panicked: %v", r))
			}
		}()
		v, err := fn()
		f.complete(v, err)
	})
	if err != nil {
		var zero T
		f.complete(zero, err)
	}
	return f
}

// then returns a Future completing with fn applied to f's result.
func then[T, U any](f *Future[T], fn func(T, error) (U, error)) *Future[U] {
	out := newFuture[U]()
	go func() {
		<-f.done
		out.complete(fn(f.val, f.err))
	}()
	return out
}
