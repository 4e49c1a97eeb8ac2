package async

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ProcessorQueue runs one goroutine per submitted job. At most maxConcurrent
// of them execute the handler at a time; the rest wait on a semaphore, so
// Submit never blocks the caller.
type ProcessorQueue struct {
	handler       Handler
	logger        *slog.Logger
	maxConcurrent int
	timeout       time.Duration

	sem      *semaphore.Weighted
	wg       sync.WaitGroup
	inFlight atomic.Int64

	mu     sync.Mutex
	closed bool
}

type Option func(*ProcessorQueue)

func WithMaxConcurrent(n int) Option {
	return func(q *ProcessorQueue) {
		if n > 0 {
			q.maxConcurrent = n
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *ProcessorQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewProcessorQueue(handler Handler, logger *slog.Logger, opts ...Option) *ProcessorQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ProcessorQueue{
		handler:       handler,
		logger:        logger,
		maxConcurrent: 8,
		timeout:       3 * time.Minute,
	}
	for _, o := range opts {
		o(q)
	}
	q.sem = semaphore.NewWeighted(int64(q.maxConcurrent))
	return q
}

// Submit schedules job and returns immediately.
func (q *ProcessorQueue) Submit(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot submit: queue is shutting down", "job_id", job.ID)
		return ErrQueueClosed
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	q.wg.Add(1)
	q.inFlight.Add(1)
	go q.run(job)
	q.logger.Debug("queued job for processing", "job_id", job.ID, "in_flight", q.inFlight.Load())
	return nil
}

func (q *ProcessorQueue) run(job Job) {
	defer q.wg.Done()
	defer q.inFlight.Add(-1)

	// Jobs are not cancellable, so the wait for a slot is unbounded.
	if err := q.sem.Acquire(context.Background(), 1); err != nil {
		q.logger.Error("acquire worker slot failed", "job_id", job.ID, "error", err)
		return
	}
	defer q.sem.Release(1)

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	start := time.Now()
	if err := q.handler.Process(ctx, job); err != nil {
		q.logger.Error("processing failed", "job_id", job.ID, "error", err,
			"queued_ms", start.Sub(job.SubmittedAt).Milliseconds(),
			"elapsed_ms", time.Since(start).Milliseconds())
		return
	}
	q.logger.Info("processed job successfully", "job_id", job.ID,
		"queued_ms", start.Sub(job.SubmittedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds())
}

// InFlight returns the number of submitted jobs that have not finished.
func (q *ProcessorQueue) InFlight() int {
	return int(q.inFlight.Load())
}

// Shutdown stops accepting jobs and waits for every submitted job to finish
// or for ctx to end, whichever comes first.
func (q *ProcessorQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context", "abandoned", q.InFlight())
		return ctx.Err()
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
		return nil
	}
}
