package async

import (
	"errors"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// ErrPoolClosed is returned by Submit after Close.
var ErrPoolClosed = errors.New("async: pool closed")

// Executor runs submitted work on some other goroutine.
type Executor interface {
	Submit(work func()) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(work func()) error

// Submit calls f(work).
func (f ExecutorFunc) Submit(work func()) error {
	return f(work)
}

// Pool is a fixed-size worker pool over an unbounded FIFO queue.
//
// Thread-safety: Submit and Close are safe from any goroutine.
type Pool struct {
	queue   *taskQueue
	wg      sync.WaitGroup
	workers int
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithWorkers sets the number of worker goroutines.
// Default: runtime.GOMAXPROCS(0).
func WithWorkers(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// NewPool starts a pool.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		queue:   newTaskQueue(),
		workers: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go p.work()
	}
	return p
}

// Submit queues work. It never blocks on pool capacity.
func (p *Pool) Submit(work func()) error {
	t := task{
		id:  uuid.Must(uuid.NewV7()).String(),
		run: work,
	}
	if !p.queue.Enqueue(t) {
		return ErrPoolClosed
	}
	slog.Debug("async task queued", "task_id", t.id)
	return nil
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Pending returns the number of queued tasks not yet started.
func (p *Pool) Pending() int {
	return p.queue.Len()
}

// Close stops accepting work, lets queued tasks finish and waits for the
// workers to exit.
func (p *Pool) Close() {
	p.queue.Close()
	p.wg.Wait()
}

func (p *Pool) work() {
	defer p.wg.Done()

	for {
		if t, ok := p.queue.TryDequeue(); ok {
			p.run(t)
			continue
		}

		<-p.queue.Wait()
		if p.queue.Closed() && p.queue.Len() == 0 {
			return
		}
	}
}

func (p *Pool) run(t task) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("async task panicked", "task_id", t.id, "panic", r)
		}
	}()
	t.run()
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool, starting it on first use.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool()
	})
	return defaultPool
}
