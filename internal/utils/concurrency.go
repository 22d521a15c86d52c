package utils

import (
	"context"
	"fmt"
	"sync"
)

// Job represents a function to be executed by a worker.
type Job[T any] func(ctx context.Context) (T, error)

// Result carries the outcome of one job. Index is the submission order.
type Result[T any] struct {
	Index int
	Value T
	Err   error
}

type indexedJob[T any] struct {
	index int
	job   Job[T]
}

// WorkerPool manages a fixed pool of goroutines to perform jobs concurrently.
// A panicking job is reported as an error result instead of crashing the process.
type WorkerPool[T any] struct {
	numWorkers int
	jobQueue   chan indexedJob[T]
	results    chan Result[T]
	ctx        context.Context
	cancel     context.CancelFunc
	shutdownWg sync.WaitGroup
	mu         sync.Mutex // protects isClosed, submitted and closing jobQueue
	isClosed   bool
	submitted  int
}

// NewWorkerPool creates and starts a new WorkerPool.
func NewWorkerPool[T any](parentCtx context.Context, numWorkers int, queueSize int) *WorkerPool[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(parentCtx)
	wp := &WorkerPool[T]{
		numWorkers: numWorkers,
		jobQueue:   make(chan indexedJob[T], queueSize),
		results:    make(chan Result[T], queueSize),
		ctx:        ctx,
		cancel:     cancel,
	}

	wp.start()
	return wp
}

func (wp *WorkerPool[T]) start() {
	wp.shutdownWg.Add(wp.numWorkers)
	for i := 0; i < wp.numWorkers; i++ {
		go wp.worker()
	}

	// results is closed once every worker has left its loop
	go func() {
		wp.shutdownWg.Wait()
		close(wp.results)
	}()
}

func (wp *WorkerPool[T]) worker() {
	defer wp.shutdownWg.Done()
	for {
		select {
		case ij, ok := <-wp.jobQueue:
			if !ok {
				return
			}
			res := wp.run(ij)
			select {
			case wp.results <- res:
			case <-wp.ctx.Done():
				return
			}
		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool[T]) run(ij indexedJob[T]) (res Result[T]) {
	res.Index = ij.index
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("job %d panicked: %v", ij.index, r)
		}
	}()
	res.Value, res.Err = ij.job(wp.ctx)
	return res
}

// Submit adds a job to the queue and returns its index.
// It fails once the pool is closed or its context is cancelled.
func (wp *WorkerPool[T]) Submit(job Job[T]) (int, error) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.isClosed {
		return 0, fmt.Errorf("worker pool is closed, cannot submit new jobs")
	}

	index := wp.submitted
	select {
	case wp.jobQueue <- indexedJob[T]{index: index, job: job}:
		wp.submitted++
		return index, nil
	case <-wp.ctx.Done():
		return 0, wp.ctx.Err()
	}
}

// Results returns the channel job results are delivered on. It is closed
// after Close or Shutdown once every worker has exited.
func (wp *WorkerPool[T]) Results() <-chan Result[T] {
	return wp.results
}

// Close stops accepting jobs. Queued jobs still run.
func (wp *WorkerPool[T]) Close() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.isClosed {
		return
	}
	wp.isClosed = true
	close(wp.jobQueue)
}

// Shutdown cancels running jobs' context and stops the workers.
// Queued jobs that have not started are dropped.
func (wp *WorkerPool[T]) Shutdown() {
	wp.cancel()
	wp.Close()
}

// RunAll runs jobs on a pool of numWorkers goroutines and returns their
// values in submission order. The first failing job cancels the others;
// RunAll still waits for every worker to exit before returning that error.
func RunAll[T any](ctx context.Context, numWorkers int, jobs []Job[T]) ([]T, error) {
	wp := NewWorkerPool[T](ctx, numWorkers, len(jobs))
	defer wp.Shutdown()

	for _, job := range jobs {
		if _, err := wp.Submit(job); err != nil {
			wp.Shutdown()
			for range wp.Results() {
			}
			return nil, err
		}
	}
	wp.Close()

	values := make([]T, len(jobs))
	var firstErr error
	received := 0
	for res := range wp.Results() {
		received++
		if res.Err != nil {
			if firstErr == nil {
				firstErr = res.Err
				wp.Shutdown()
			}
			continue
		}
		values[res.Index] = res.Value
	}

	if firstErr != nil {
		return nil, firstErr
	}
	if received != len(jobs) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("worker pool finished %d of %d jobs", received, len(jobs))
	}
	return values, nil
}
