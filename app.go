// Package querybase runs saved SQL query templates against remote databases.
//
// Templates contain {{name}} placeholders that are filled from parameter
// expressions at execution time. Executions run in the background with
// retries, and every attempt is recorded as an immutable result that can
// be listed, inspected and exported as CSV over a small JSON API.
package querybase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/dracory/querybase/executor"
	"github.com/dracory/querybase/shared/driver"
	"github.com/dracory/querybase/shared/evaluator"
	"github.com/dracory/querybase/shared/notify"
	"github.com/dracory/querybase/shared/queue"
	"github.com/dracory/querybase/shared/store"
)

// App represents the main application instance
type App struct {
	config   Config
	logger   *slog.Logger
	store    *store.Store
	drivers  *driver.Registry
	eval     *evaluator.Evaluator
	queue    *queue.Local
	executor *executor.Executor
}

// Option customises New.
type Option func(*appOptions)

type appOptions struct {
	logger   *slog.Logger
	db       *gorm.DB
	notifier notify.Notifier
	drivers  []driver.Driver
}

// WithLogger sets the logger shared by all components.
func WithLogger(l *slog.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithDB uses an already opened store database instead of StoreDriver/StoreDSN.
func WithDB(db *gorm.DB) Option {
	return func(o *appOptions) { o.db = db }
}

// WithNotifier replaces the notifier built from the SMTP and webhook settings.
func WithNotifier(n notify.Notifier) Option {
	return func(o *appOptions) { o.notifier = n }
}

// WithDriver registers an extra target backend driver.
func WithDriver(d driver.Driver) Option {
	return func(o *appOptions) { o.drivers = append(o.drivers, d) }
}

// New wires the store, drivers, evaluator, queue and executor and starts
// the background workers.
func New(cfg Config, opts ...Option) (*App, error) {
	cfg = cfg.withDefaults()

	o := appOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	db := o.db
	if db == nil {
		var err error
		if db, err = store.Open(cfg.StoreDriver, cfg.StoreDSN); err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	}
	st, err := store.New(db)
	if err != nil {
		return nil, err
	}

	registry := driver.NewRegistry(cfg.EnabledDrivers, driver.WithMaxRows(cfg.MaxResultRows))
	for _, d := range o.drivers {
		registry.Register(d)
	}

	notifier := o.notifier
	if notifier == nil {
		notifier = buildNotifier(cfg)
	}

	eval := evaluator.New(evaluator.WithLogger(o.logger))
	q := queue.NewLocal(cfg.Workers, o.logger)
	exec := executor.New(st, registry, eval, q,
		executor.WithConfig(cfg.Retry),
		executor.WithLogger(o.logger),
		executor.WithNotifier(notifier),
	)
	q.Start(exec.Run)

	o.logger.Info("querybase ready",
		slog.String("store", cfg.StoreDriver),
		slog.Any("drivers", registry.List()),
		slog.Int("workers", cfg.Workers),
		slog.Int("max_retries", cfg.Retry.MaxRetries),
	)

	return &App{
		config:   cfg,
		logger:   o.logger,
		store:    st,
		drivers:  registry,
		eval:     eval,
		queue:    q,
		executor: exec,
	}, nil
}

// buildNotifier returns nil when no channel is configured.
func buildNotifier(cfg Config) notify.Notifier {
	var channels notify.Multi
	if cfg.SMTPHost != "" && cfg.MailFrom != "" {
		channels = append(channels, &notify.Email{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
			To:       cfg.MailTo,
		})
	}
	if cfg.WebhookURL != "" {
		channels = append(channels, &notify.Webhook{URL: cfg.WebhookURL})
	}
	if len(channels) == 0 {
		return nil
	}
	return notify.Trigger{
		Notifier:  channels,
		OnSuccess: cfg.NotifyOnSuccess,
		OnFailure: cfg.NotifyOnFailure,
	}
}

// Executor exposes the orchestrator, mainly for embedding and tests.
func (a *App) Executor() *executor.Executor { return a.executor }

// Store exposes the repository.
func (a *App) Store() *store.Store { return a.store }

// Handler returns an http.Handler that serves the JSON API.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(a.config.BasePath, a.handleRequest)
	return a.middleware(mux)
}

// Close drains the queue until ctx is done and closes the store.
func (a *App) Close(ctx context.Context) error {
	var result *multierror.Error
	if err := a.queue.Shutdown(ctx); err != nil {
		result = multierror.Append(result, fmt.Errorf("queue shutdown: %w", err))
	}
	if err := a.store.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("store close: %w", err))
	}
	return result.ErrorOrNil()
}

func (a *App) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "same-origin")
		w.Header().Set("Cache-Control", "no-store")

		next.ServeHTTP(w, r)
	})
}
