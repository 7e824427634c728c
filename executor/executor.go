// Package executor runs query templates: it renders the SQL, dispatches it
// to the target database, records the outcome and retries failed attempts
// with backoff.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jpillora/backoff"

	"github.com/dracory/querybase/shared/driver"
	"github.com/dracory/querybase/shared/notify"
	"github.com/dracory/querybase/shared/queue"
	"github.com/dracory/querybase/shared/render"
	"github.com/dracory/querybase/shared/store"
	"github.com/dracory/querybase/shared/types"
)

var (
	// ErrQueryNotFound is returned when the submitted query template does not exist.
	ErrQueryNotFound = errors.New("query not found")
	// ErrResultNotRecorded is returned when an attempt's result could not be
	// persisted. Such attempts are never retried.
	ErrResultNotRecorded = errors.New("save result")
)

// Store is the persistence the executor needs.
type Store interface {
	GetQuery(ctx context.Context, id uint) (*types.QueryTemplate, error)
	CreateResult(ctx context.Context, r *types.ExecutionResult) error
}

// Queue schedules background jobs.
type Queue interface {
	Enqueue(job queue.Job, delay time.Duration) (string, error)
}

// Config holds the retry policy.
type Config struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries    int
	BackoffMin    time.Duration
	BackoffMax    time.Duration
	BackoffFactor float64
}

// DefaultConfig retries three times, waiting 60s, 120s and 240s.
func DefaultConfig() Config {
	return Config{
		MaxRetries:    3,
		BackoffMin:    time.Minute,
		BackoffMax:    30 * time.Minute,
		BackoffFactor: 2,
	}
}

// Summary is what one attempt reports back to its caller.
type Summary struct {
	ResultID      uint      `json:"result_id,omitempty"`
	QueryID       uint      `json:"query_id"`
	QueryName     string    `json:"query_name"`
	Status        string    `json:"status"`
	ExecutionTime float64   `json:"execution_time"`
	ResultCount   int       `json:"result_count"`
	Error         string    `json:"error,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Executor coordinates render, connect, execute and persist.
type Executor struct {
	store    Store
	drivers  driver.Opener
	eval     render.Evaluator
	queue    Queue
	notifier notify.Notifier
	logger   *slog.Logger
	cfg      Config
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithNotifier sets the notifier fired after attempts.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Executor) { e.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// WithConfig sets the retry policy.
func WithConfig(cfg Config) Option {
	return func(e *Executor) { e.cfg = cfg }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// New creates an Executor.
func New(s Store, drivers driver.Opener, eval render.Evaluator, q Queue, opts ...Option) *Executor {
	e := &Executor{
		store:   s,
		drivers: drivers,
		eval:    eval,
		queue:   q,
		logger:  slog.Default(),
		cfg:     DefaultConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Submit queues the first attempt for the query and returns the task handle.
func (e *Executor) Submit(ctx context.Context, queryID uint) (string, error) {
	if _, err := e.store.GetQuery(ctx, queryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: %d", ErrQueryNotFound, queryID)
		}
		return "", err
	}

	taskID, err := e.queue.Enqueue(queue.Job{QueryID: queryID}, 0)
	if err != nil {
		return "", fmt.Errorf("enqueue: %w", err)
	}
	e.logger.Info("query submitted", slog.Uint64("query_id", uint64(queryID)), slog.String("task_id", taskID))
	return taskID, nil
}

// Run is the queue handler. It performs one attempt and, when the attempt
// failed in a retryable way, schedules the next one.
func (e *Executor) Run(ctx context.Context, job queue.Job) error {
	summary, err := e.Execute(ctx, job.QueryID, job.Attempt)
	if err == nil {
		return nil
	}

	log := e.logger.With(
		slog.String("task_id", job.ID),
		slog.Uint64("query_id", uint64(job.QueryID)),
		slog.Int("attempt", job.Attempt),
	)

	if !retryable(err) {
		log.Error("query failed permanently", slog.String("error", err.Error()))
		if summary.ResultID != 0 {
			e.notify(ctx, summary)
		}
		return err
	}

	if job.Attempt >= e.cfg.MaxRetries {
		log.Error("query failed, retries exhausted",
			slog.Int("max_retries", e.cfg.MaxRetries),
			slog.String("error", err.Error()),
		)
		e.notify(ctx, summary)
		return err
	}

	delay := e.backoff().ForAttempt(float64(job.Attempt))
	next := queue.Job{ID: job.ID, QueryID: job.QueryID, Attempt: job.Attempt + 1}
	if _, qerr := e.queue.Enqueue(next, delay); qerr != nil {
		log.Error("cannot schedule retry", slog.String("error", qerr.Error()))
		return errors.Join(err, qerr)
	}
	log.Warn("query failed, retry scheduled",
		slog.Duration("delay", delay),
		slog.Int("next_attempt", next.Attempt),
		slog.String("error", err.Error()),
	)
	return nil
}

func (e *Executor) backoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    e.cfg.BackoffMin,
		Max:    e.cfg.BackoffMax,
		Factor: e.cfg.BackoffFactor,
	}
}

// retryable reports whether a failed attempt should be tried again.
func retryable(err error) bool {
	if errors.Is(err, ErrQueryNotFound) ||
		errors.Is(err, ErrResultNotRecorded) ||
		errors.Is(err, driver.ErrUnsupportedBackend) {
		return false
	}
	return errors.Is(err, driver.ErrConnect) || errors.Is(err, driver.ErrQuery)
}
