package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/docsummarizer/internal/domain/library"
	"github.com/yanqian/docsummarizer/internal/infra/config"
	"github.com/yanqian/docsummarizer/internal/infra/queue"
)

const shutdownTimeout = 10 * time.Second

// App encapsulates the HTTP server and job worker lifecycle.
type App struct {
	cfg     *config.Config
	logger  *slog.Logger
	server  *http.Server
	jobs    queue.HandlerQueue
	library *library.Service
}

// NewApp is used by Wire to build the runnable app. jobs may be nil.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, jobs queue.HandlerQueue, lib *library.Service) *App {
	return &App{
		cfg:     cfg,
		logger:  logger.With("component", "bootstrap"),
		server:  server,
		jobs:    jobs,
		library: lib,
	}
}

// Run starts the job worker and HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	if a.jobs != nil {
		a.jobs.SetHandler(a.library.HandleJob)
		defer a.jobs.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutdown signal received")
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
