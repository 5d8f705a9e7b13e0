package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/price-compare/internal/api"
	"github.com/donaldgifford/price-compare/internal/config"
	"github.com/donaldgifford/price-compare/internal/history"
	"github.com/donaldgifford/price-compare/internal/refresh"
	"github.com/donaldgifford/price-compare/internal/telemetry"
	"github.com/donaldgifford/price-compare/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and retailer refresh scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// setupTelemetry is swapped out by tests.
var setupTelemetry = telemetry.Setup

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, log)
}

// serve runs the server until ctx is done. Telemetry exporters are flushed
// on every return path, including startup failures.
func serve(ctx context.Context, cfg *config.Config, log *slog.Logger) (err error) {
	shutdownTelemetry, err := setupTelemetry(ctx, &cfg.Telemetry, Version)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if terr := shutdownTelemetry(flushCtx); terr != nil {
			err = errors.Join(err, fmt.Errorf("flushing telemetry: %w", terr))
		}
	}()

	store, closeStore, err := openStorage(ctx, &cfg.History, log)
	if err != nil {
		return err
	}
	defer closeStore()

	client := newGateway(&cfg.Backend, logger.Component(log, "gateway"))
	cache := &refresh.Cache{}

	sched, err := refresh.NewScheduler(
		client,
		cache,
		cfg.Schedule.RetailerRefreshInterval,
		cfg.Backend.Timeout,
		logger.Component(log, "refresh"),
	)
	if err != nil {
		return fmt.Errorf("creating scheduler: %w", err)
	}

	e := api.NewServer(api.Deps{
		Backend:   client,
		History:   history.New(store, logger.Component(log, "history")),
		Retailers: cache,
		Logger:    log,
		Version:   Version,
	})
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	sched.Start(ctx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Info("starting server", "addr", addr, "backend", client.BaseURL(), "version", Version)

	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var errs []error
	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			errs = append(errs, fmt.Errorf("serving: %w", err))
		}
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	<-sched.Stop().Done()

	if err := e.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutting down server: %w", err))
	}

	log.Info("server stopped")
	return errors.Join(errs...)
}
