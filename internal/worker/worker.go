package worker

import (
	"context"
	"log/slog"
	"sync"
)

type Job interface {
	Name() string
}

type ProcessFunc func(ctx context.Context, job Job) error

// WorkerPool runs jobs on a fixed set of goroutines. Jobs already queued when
// Stop is called are still processed.
type WorkerPool struct {
	numWorkers int
	jobs       chan Job
	processor  ProcessFunc
	wg         sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewWorkerPool(numWorkers int, bufferSize int, processor ProcessFunc) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		numWorkers: numWorkers,
		jobs:       make(chan Job, bufferSize),
		processor:  processor,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 1; i <= wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		if err := wp.processor(ctx, job); err != nil {
			slog.Warn("job failed", "worker", id, "job", job.Name(), "error", err)
		}
	}
}

// Submit blocks until the job is queued. It returns false once the pool is stopped.
func (wp *WorkerPool) Submit(ctx context.Context, job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}

	select {
	case wp.jobs <- job:
		return true
	case <-ctx.Done():
		return false
	}
}

// TrySubmit queues the job only if there is room.
func (wp *WorkerPool) TrySubmit(job Job) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return false
	}

	select {
	case wp.jobs <- job:
		return true
	default:
		return false
	}
}

func (wp *WorkerPool) Pending() int {
	return len(wp.jobs)
}

func (wp *WorkerPool) Stop() {
	wp.mu.Lock()
	if !wp.closed {
		wp.closed = true
		close(wp.jobs)
	}
	wp.mu.Unlock()
	wp.wg.Wait()
}
