package utils

import (
	"sync"
	"time"
)

// WorkerPool manages a pool of goroutines with optional rate limiting.
// The scrape orchestrator uses one worker per concurrent resort.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastRequest time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency.
// A rateLimitMs of 0 disables rate limiting.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
		lastRequest: time.Now(),
	}
}

// Submit enqueues a job for execution in the pool.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()

		wp.enforceRateLimit()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) enforceRateLimit() {
	if wp.rateLimitMs <= 0 {
		return
	}

	wp.mu.Lock()
	defer wp.mu.Unlock()

	minInterval := time.Duration(wp.rateLimitMs) * time.Millisecond
	elapsed := time.Since(wp.lastRequest)
	if elapsed < minInterval {
		time.Sleep(minInterval - elapsed)
	}
	wp.lastRequest = time.Now()
}

// LockSet is a set of in-process locks keyed by string, used to keep
// two scrapes of the same resort from overlapping. TryAcquire does not
// block: an overlapping scrape is skipped, not queued.
type LockSet struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLockSet creates an empty LockSet.
func NewLockSet() *LockSet {
	return &LockSet{held: make(map[string]struct{})}
}

// TryAcquire returns true if the key was free and is now held.
func (s *LockSet) TryAcquire(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.held[key]; taken {
		return false
	}
	s.held[key] = struct{}{}
	return true
}

// Release frees the key. Releasing an unheld key is a no-op.
func (s *LockSet) Release(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, key)
}

// Held returns the number of keys currently held.
func (s *LockSet) Held() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.held)
}
