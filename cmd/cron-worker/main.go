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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/assetdesk-backend/internal/cron"
	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/internal/repo"
	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	"github.com/angelmondragon/assetdesk-backend/pkg/db"
	"github.com/angelmondragon/assetdesk-backend/pkg/instance"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
	"github.com/angelmondragon/assetdesk-backend/pkg/metrics"
	"github.com/angelmondragon/assetdesk-backend/pkg/migrate"
	"github.com/angelmondragon/assetdesk-backend/pkg/redis"
)

const cycleLockName = "cron-worker"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	if !cfg.Store.UsesDatabase() {
		// A memory store lives inside the api process; there is nothing to reconcile here.
		logg.Error(context.Background(), "cron worker requires the database store", errors.New("store driver is memory"))
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "instance": instance.ID()})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		_ = dbClient.Close()
		os.Exit(1)
	}

	closeAll := func() error {
		return multierr.Combine(redisClient.Close(), dbClient.Close())
	}

	reg := prometheus.NewRegistry()
	engine, err := lifecycle.NewEngine(lifecycle.EngineParams{
		Store:   repo.New(dbClient),
		Timeout: cfg.Store.Timeout,
		Logger:  logg,
		Metrics: metrics.NewLifecycleMetrics(reg),
	})
	if err != nil {
		logg.Error(ctx, "failed to create lifecycle engine", multierr.Append(err, closeAll()))
		os.Exit(1)
	}

	reconcileJob, err := cron.NewReconcileJob(logg, engine)
	if err != nil {
		logg.Error(ctx, "failed to create reconcile job", multierr.Append(err, closeAll()))
		os.Exit(1)
	}
	lock, err := cron.NewRedisLock(redisClient, cycleLockName, cfg.Cron.LockTTL)
	if err != nil {
		logg.Error(ctx, "failed to create cron lock", multierr.Append(err, closeAll()))
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(reconcileJob),
		Lock:     lock,
		Metrics:  metrics.NewCronJobMetrics(reg),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(ctx, "failed to create cron service", multierr.Append(err, closeAll()))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "metrics server stopped", err)
		}
	}()

	logg.Info(ctx, "starting cron worker")
	runErr := service.Run(ctx)
	if errors.Is(runErr, context.Canceled) {
		runErr = nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := multierr.Combine(runErr, metricsServer.Shutdown(shutdownCtx), closeAll()); err != nil {
		logg.Error(ctx, "cron worker stopped with errors", err)
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shut down gracefully")
}
