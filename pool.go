package tcaws

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultPoolSize is the number of concurrent tasks a Pool runs when no size is given.
const DefaultPoolSize = 10

// Pool is a bounded Executor. Submit returns immediately; at most size tasks
// run at the same time and the rest wait for a free slot.
type Pool struct {
	mu     sync.RWMutex
	closed bool
	sem    *semaphore.Weighted
	group  errgroup.Group
	logger *slog.Logger
}

// NewPool creates a Pool running at most size tasks concurrently.
// A size below 1 uses DefaultPoolSize.
func NewPool(size int) *Pool {
	if size < 1 {
		size = DefaultPoolSize
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		logger: slog.Default(),
	}
}

// Submit schedules task. It returns ErrPoolClosed after Close was called.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	p.group.Go(func() error {
		// Acquire only fails on a cancelled context.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("pool task panicked", "panic", r)
			}
		}()

		task()
		return nil
	})

	return nil
}

// Close stops accepting tasks and waits for submitted ones to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	_ = p.group.Wait()
}

var _ Executor = (*Pool)(nil)
