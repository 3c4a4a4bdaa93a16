package utils

import (
	"sync"
	"time"
)

// WorkerPool runs submitted jobs on at most maxWorkers goroutines, spacing
// job starts by rateLimitMs when it is positive.
type WorkerPool struct {
	maxWorkers  int
	rateLimitMs int
	semaphore   chan struct{}
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastStart   time.Time
}

// NewWorkerPool creates a WorkerPool. maxWorkers below 1 is treated as 1.
func NewWorkerPool(maxWorkers, rateLimitMs int) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		maxWorkers:  maxWorkers,
		rateLimitMs: rateLimitMs,
		semaphore:   make(chan struct{}, maxWorkers),
	}
}

// Size returns the concurrency ceiling.
func (wp *WorkerPool) Size() int {
	return wp.maxWorkers
}

// Submit blocks until a slot is free, then runs job on its own goroutine.
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
	if !wp.lastStart.IsZero() {
		if elapsed := time.Since(wp.lastStart); elapsed < minInterval {
			time.Sleep(minInterval - elapsed)
		}
	}
	wp.lastStart = time.Now()
}

// KeySet is a thread-safe set of strings.
type KeySet struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewKeySet creates an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{seen: make(map[string]struct{})}
}

// Add returns true if key was newly added, false if already present.
func (s *KeySet) Add(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Contains reports whether key has been added.
func (s *KeySet) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.seen[key]
	return exists
}

// Size returns the number of unique keys tracked.
func (s *KeySet) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.seen)
}
