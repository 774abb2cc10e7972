package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/assetdesk-backend/api/routes"
	"github.com/angelmondragon/assetdesk-backend/internal/assets"
	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/internal/auth"
	"github.com/angelmondragon/assetdesk-backend/internal/dashboard"
	"github.com/angelmondragon/assetdesk-backend/internal/employees"
	"github.com/angelmondragon/assetdesk-backend/internal/lifecycle"
	"github.com/angelmondragon/assetdesk-backend/internal/repo"
	"github.com/angelmondragon/assetdesk-backend/internal/store"
	"github.com/angelmondragon/assetdesk-backend/internal/store/memory"
	"github.com/angelmondragon/assetdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	"github.com/angelmondragon/assetdesk-backend/pkg/db"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
	"github.com/angelmondragon/assetdesk-backend/pkg/metrics"
	"github.com/angelmondragon/assetdesk-backend/pkg/migrate"
	"github.com/angelmondragon/assetdesk-backend/pkg/redis"
	"github.com/angelmondragon/assetdesk-backend/pkg/security"
)

// app holds every long-lived dependency of the API process.
type app struct {
	db     *db.Client
	redis  *redis.Client
	engine *lifecycle.Engine
	auth   auth.Service
	deps   routes.Deps
}

func wire(ctx context.Context, cfg *config.Config, logg *logger.Logger, reg *prometheus.Registry) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
			a = nil
		}
	}()

	var entities store.Store
	var admins auth.AdminRepository
	if cfg.Store.UsesDatabase() {
		a.db, err = db.New(ctx, cfg.DB, logg)
		if err != nil {
			return a, fmt.Errorf("bootstrap database: %w", err)
		}
		if err = migrate.MaybeRunDev(ctx, cfg, logg, a.db); err != nil {
			return a, fmt.Errorf("dev migrations: %w", err)
		}
		entities = repo.New(a.db)
		admins = auth.NewRepository(a.db.DB())
	} else {
		logg.Warn(ctx, "store.memory: data is lost on restart")
		entities = memory.New()
		admins = auth.NewMemoryRepository()
	}

	a.redis, err = redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return a, fmt.Errorf("bootstrap redis: %w", err)
	}

	sessions, err := session.NewManager(a.redis, cfg.JWT)
	if err != nil {
		return a, fmt.Errorf("session manager: %w", err)
	}
	hasher, err := security.NewHasher(cfg.Password)
	if err != nil {
		return a, fmt.Errorf("password hasher: %w", err)
	}

	a.engine, err = lifecycle.NewEngine(lifecycle.EngineParams{
		Store:   entities,
		Timeout: cfg.Store.Timeout,
		Logger:  logg,
		Metrics: metrics.NewLifecycleMetrics(reg),
	})
	if err != nil {
		return a, fmt.Errorf("lifecycle engine: %w", err)
	}

	a.auth, err = auth.NewService(auth.ServiceParams{
		Admins:         admins,
		SessionManager: sessions,
		Hasher:         hasher,
		JWTConfig:      cfg.JWT,
		Timeout:        cfg.Store.Timeout,
	})
	if err != nil {
		return a, fmt.Errorf("auth service: %w", err)
	}
	employeeSvc, err := employees.NewService(employees.ServiceParams{Store: entities, Deleter: a.engine, Timeout: cfg.Store.Timeout})
	if err != nil {
		return a, fmt.Errorf("employee service: %w", err)
	}
	assetSvc, err := assets.NewService(assets.ServiceParams{Store: entities, Lifecycle: a.engine, Timeout: cfg.Store.Timeout})
	if err != nil {
		return a, fmt.Errorf("asset service: %w", err)
	}
	assignmentSvc, err := assignments.NewService(entities, cfg.Store.Timeout)
	if err != nil {
		return a, fmt.Errorf("assignment service: %w", err)
	}
	dashboardSvc, err := dashboard.NewService(entities, cfg.Store.Timeout)
	if err != nil {
		return a, fmt.Errorf("dashboard service: %w", err)
	}

	a.deps = routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Redis:       a.redis,
		Sessions:    sessions,
		Auth:        a.auth,
		Employees:   employeeSvc,
		Assets:      assetSvc,
		Assignments: assignmentSvc,
		Dashboard:   dashboardSvc,
	}
	if a.db != nil {
		a.deps.DB = a.db
	}
	return a, nil
}

// Close releases redis and the database.
func (a *app) Close() error {
	var err error
	if a.redis != nil {
		err = multierr.Append(err, a.redis.Close())
	}
	if a.db != nil {
		err = multierr.Append(err, a.db.Close())
	}
	return err
}
