package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/assetdesk-backend/api"
	"github.com/angelmondragon/assetdesk-backend/api/routes"
	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	"github.com/angelmondragon/assetdesk-backend/pkg/instance"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"store":    cfg.Store.Driver,
		"instance": instance.ID(),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application, err := wire(ctx, cfg, logg, reg)
	if err != nil {
		logg.Error(ctx, "failed to wire api", err)
		os.Exit(1)
	}

	if cfg.Admin.ShouldSeed() {
		admin, err := application.auth.EnsureAdmin(ctx, cfg.Admin)
		if err != nil {
			exit(ctx, logg, multierr.Append(err, application.Close()))
		}
		logg.Info(logg.WithField(ctx, "admin_email", admin.Email), "admin seeded")
	}

	if cfg.FeatureFlags.ReconcileOnBoot {
		report, err := application.engine.Reconcile(ctx)
		switch {
		case err != nil:
			logg.Error(ctx, "boot reconciliation failed", err)
		case !report.OK():
			logg.Warn(logg.WithField(ctx, "issues", report.CountByKind()), "boot reconciliation found inconsistencies")
		default:
			logg.Info(ctx, "boot reconciliation clean")
		}
	}

	server := api.NewServer(cfg, routes.NewRouter(application.deps))
	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case runErr = <-serveErr:
		logg.Error(ctx, "api server stopped unexpectedly", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	runErr = multierr.Combine(runErr, server.Shutdown(shutdownCtx), application.Close())
	exit(ctx, logg, runErr)
}

func exit(ctx context.Context, logg *logger.Logger, err error) {
	if err != nil {
		logg.Error(ctx, "api exited with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api stopped")
	os.Exit(0)
}
