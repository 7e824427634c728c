package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dracory/querybase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration (flags override env)
	cfg, err := querybase.LoadConfig(os.Args[1:])
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := querybase.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	app, err := querybase.New(cfg, querybase.WithLogger(logger))
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.BasePath, app.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           querybase.RequestLogger(logger, cfg.ActionParam)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("querybase listening", slog.String("addr", srv.Addr), slog.String("mount", cfg.BasePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.String("error", err.Error()))
	}
	return app.Close(shutdownCtx)
}
