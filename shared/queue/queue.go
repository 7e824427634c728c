// Package queue runs background jobs in-process. Jobs are fire-and-forget:
// Enqueue returns a task handle immediately and the handler runs on a
// worker goroutine, optionally after a delay.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("queue closed")

// ErrNoHandler is returned by Enqueue before Start.
var ErrNoHandler = errors.New("queue has no handler")

// Job is one unit of work. ID is the task handle and stays the same when
// a job is re-enqueued for another attempt.
type Job struct {
	ID      string
	QueryID uint
	Attempt int
}

// Handler processes a job. A returned error is logged only.
type Handler func(ctx context.Context, job Job) error

// Local is an in-process queue with a bounded number of workers.
type Local struct {
	logger *slog.Logger
	sem    chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	handler Handler
	closed  bool
	timers  map[*time.Timer]struct{}
	wg      sync.WaitGroup
}

// NewLocal creates a queue that runs at most workers jobs at once.
func NewLocal(workers int, logger *slog.Logger) *Local {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Local{
		logger: logger,
		sem:    make(chan struct{}, workers),
		ctx:    ctx,
		cancel: cancel,
		timers: make(map[*time.Timer]struct{}),
	}
}

// Start sets the handler. Jobs enqueued earlier are rejected with ErrNoHandler.
func (q *Local) Start(h Handler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handler = h
}

// Enqueue schedules job to run after delay and returns its task handle.
// A new handle is generated when job.ID is empty.
func (q *Local) Enqueue(job Job, delay time.Duration) (string, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return "", ErrClosed
	}
	if q.handler == nil {
		return "", ErrNoHandler
	}

	if delay <= 0 {
		q.dispatchLocked(job)
		return job.ID, nil
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		delete(q.timers, timer)
		if q.closed {
			return
		}
		q.dispatchLocked(job)
	})
	q.timers[timer] = struct{}{}
	return job.ID, nil
}

// dispatchLocked starts a worker goroutine; q.mu must be held.
func (q *Local) dispatchLocked(job Job) {
	h := q.handler
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		select {
		case q.sem <- struct{}{}:
		case <-q.ctx.Done():
			return
		}
		defer func() { <-q.sem }()

		if err := h(q.ctx, job); err != nil {
			q.logger.Error("job failed",
				slog.String("task_id", job.ID),
				slog.Uint64("query_id", uint64(job.QueryID)),
				slog.Int("attempt", job.Attempt),
				slog.String("error", err.Error()),
			)
		}
	}()
}

// Shutdown stops accepting jobs, drops delayed jobs that have not fired yet
// and waits for running jobs until ctx is done.
func (q *Local) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	dropped := 0
	for t := range q.timers {
		if t.Stop() {
			dropped++
		}
		delete(q.timers, t)
	}
	q.mu.Unlock()

	if dropped > 0 {
		q.logger.Warn("dropped delayed jobs on shutdown", slog.Int("count", dropped))
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		return ctx.Err()
	}
}
