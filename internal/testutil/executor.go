package testutil

import "sync"

// InlineExecutor runs submitted work on the caller's goroutine.
type InlineExecutor struct {
	mu        sync.Mutex
	submitted int
}

// Submit runs work before returning.
func (e *InlineExecutor) Submit(work func()) error {
	e.mu.Lock()
	e.submitted++
	e.mu.Unlock()
	work()
	return nil
}

// Submitted returns the number of units of work run.
func (e *InlineExecutor) Submitted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submitted
}

// DeferredExecutor holds submitted work until RunAll.
//
// Thread-safety: all methods are safe for concurrent use.
type DeferredExecutor struct {
	mu      sync.Mutex
	pending []func()
	err     error
}

// NewDeferredExecutor returns an executor that refuses work with err when
// err is non-nil.
func NewDeferredExecutor(err error) *DeferredExecutor {
	return &DeferredExecutor{err: err}
}

// Submit queues work.
func (e *DeferredExecutor) Submit(work func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.pending = append(e.pending, work)
	return nil
}

// Pending returns the number of queued units of work.
func (e *DeferredExecutor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// RunAll runs queued work in submission order and returns how many ran.
func (e *DeferredExecutor) RunAll() int {
	e.mu.Lock()
	work := e.pending
	e.pending = nil
	e.mu.Unlock()

	for _, w := range work {
		w()
	}
	return len(work)
}
