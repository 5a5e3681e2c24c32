package tcaws_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/tcaws"
)

func TestPool_RunsAllTasks(t *testing.T) {
	pool := tcaws.NewPool(4)

	var count atomic.Int32
	for range 50 {
		require.NoError(t, pool.Submit(func() { count.Add(1) }))
	}
	pool.Close()

	assert.Equal(t, int32(50), count.Load())
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const size = 3
	pool := tcaws.NewPool(size)

	var running, peak atomic.Int32
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		require.NoError(t, pool.Submit(func() {
			defer wg.Done()
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		}))
	}
	wg.Wait()
	pool.Close()

	assert.LessOrEqual(t, peak.Load(), int32(size))
	assert.Positive(t, peak.Load())
}

func TestPool_SubmitDoesNotBlock(t *testing.T) {
	pool := tcaws.NewPool(1)
	release := make(chan struct{})

	require.NoError(t, pool.Submit(func() { <-release }))

	done := make(chan struct{})
	go func() {
		// the only slot is busy; Submit must still return
		_ = pool.Submit(func() {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked while the pool was busy")
	}

	close(release)
	pool.Close()
}

func TestPool_Closed(t *testing.T) {
	pool := tcaws.NewPool(0)
	pool.Close()

	err := pool.Submit(func() {})
	assert.ErrorIs(t, err, tcaws.ErrPoolClosed)
}

func TestPool_PanicDoesNotKillPool(t *testing.T) {
	pool := tcaws.NewPool(1)

	require.NoError(t, pool.Submit(func() { panic("boom") }))

	var ran atomic.Bool
	require.NoError(t, pool.Submit(func() { ran.Store(true) }))
	pool.Close()

	assert.True(t, ran.Load())
}
