package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWorkerPoolRespectsConcurrencyLimit(t *testing.T) {
	pool := NewWorkerPool(2, 0)

	var active, peak int32
	for i := 0; i < 10; i++ {
		pool.Submit(func() {
			cur := atomic.AddInt32(&active, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			atomic.AddInt32(&active, -1)
		})
	}
	pool.Wait()

	require.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestWorkerPoolRunsAllJobs(t *testing.T) {
	pool := NewWorkerPool(4, 0)

	var count int32
	for i := 0; i < 25; i++ {
		pool.Submit(func() {
			atomic.AddInt32(&count, 1)
		})
	}
	pool.Wait()

	require.Equal(t, int32(25), atomic.LoadInt32(&count))
}

func TestWorkerPoolClampsInvalidSize(t *testing.T) {
	pool := NewWorkerPool(0, 0)

	done := false
	pool.Submit(func() { done = true })
	pool.Wait()

	require.True(t, done)
}

func TestLockSetTryAcquire(t *testing.T) {
	locks := NewLockSet()

	require.True(t, locks.TryAcquire("bolton-valley"))
	require.False(t, locks.TryAcquire("bolton-valley"))
	require.True(t, locks.TryAcquire("jay-peak"))
	require.Equal(t, 2, locks.Held())

	locks.Release("bolton-valley")
	require.True(t, locks.TryAcquire("bolton-valley"))

	// Releasing a key nobody holds must not panic or free others.
	locks.Release("nonexistent")
	require.Equal(t, 2, locks.Held())
}

func TestLockSetUnderContention(t *testing.T) {
	locks := NewLockSet()

	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locks.TryAcquire("shared") {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&wins))
}
