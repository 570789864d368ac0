package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	chiTransport "github.com/kailas-cloud/influencersphere/internal/transport/chi"
	"github.com/kailas-cloud/influencersphere/internal/usecase/scheduler"
	"github.com/kailas-cloud/influencersphere/internal/version"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the background alert scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, logger, err := bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting influencersphere API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", opts.env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
	)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	var sched lifecycle
	if cfg.Scheduler.IsEnabled() {
		sc := scheduler.New(a.engine, scheduler.Config{
			Interval: time.Duration(cfg.Scheduler.IntervalSec) * time.Second,
			Grace:    time.Duration(cfg.Scheduler.GraceSec) * time.Second,
		}, logger.Named("scheduler"))
		a.health.WithScheduler(sc)
		sched = sc
	}

	server := chiTransport.NewServer(a.search, a.rules, a.ingestion, a.health, logger)
	handler := chiTransport.NewRouter(server, cfg.Auth.Tenants, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}
	return serve(ctx, srv, sched, time.Duration(cfg.HTTP.ShutdownSec)*time.Second, logger)
}

// lifecycle is the slice of the scheduler serve drives (ISP).
type lifecycle interface {
	Start()
	Shutdown() error
}

// serve runs srv and sched until ctx ends (SIGINT/SIGTERM included) or the listener fails.
// A listener failure is returned after the scheduler and server are shut down.
func serve(ctx context.Context, srv *http.Server, sched lifecycle, shutdownTimeout time.Duration, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if sched != nil {
		sched.Start()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		logger.Error("HTTP server error", zap.Error(err))
		runErr = fmt.Errorf("http server: %w", err)
	}

	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			logger.Error("Error stopping scheduler", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	if runErr != nil {
		return runErr
	}
	logger.Info("Server stopped gracefully")
	return nil
}
