package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/assetdesk-backend/api/controllers"
	"github.com/angelmondragon/assetdesk-backend/api/middleware"
	"github.com/angelmondragon/assetdesk-backend/internal/assets"
	"github.com/angelmondragon/assetdesk-backend/internal/assignments"
	"github.com/angelmondragon/assetdesk-backend/internal/auth"
	"github.com/angelmondragon/assetdesk-backend/internal/dashboard"
	"github.com/angelmondragon/assetdesk-backend/internal/employees"
	"github.com/angelmondragon/assetdesk-backend/pkg/auth/session"
	"github.com/angelmondragon/assetdesk-backend/pkg/config"
	"github.com/angelmondragon/assetdesk-backend/pkg/enums"
	"github.com/angelmondragon/assetdesk-backend/pkg/logger"
	"github.com/angelmondragon/assetdesk-backend/pkg/metrics"
	"github.com/angelmondragon/assetdesk-backend/pkg/redis"
)

// Deps is everything the router needs. DB is nil with the memory store.
// Redis may be nil only when Sessions is backed by something else, as in
// tests: the login throttle and idempotency guard are then skipped. cmd/api
// always supplies redis because the session manager runs on it.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
	DB          controllers.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker

	Auth        auth.Service
	Employees   employees.Service
	Assets      assets.Service
	Assignments assignments.Service
	Dashboard   dashboard.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	readiness := []controllers.Dependency{{Name: "db", Pinger: deps.DB}, {Name: "redis"}}
	if deps.Redis != nil {
		readiness[1].Pinger = deps.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness...))
	})
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			login := controllers.AuthLogin(deps.Auth, logg)
			if deps.Redis != nil {
				r.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).Post("/login", login)
			} else {
				r.Post("/login", login)
			}
			r.Post("/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(deps.Auth, cfg.JWT, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.RequireRole(enums.AdminRoleAdmin, logg))
			if deps.Redis != nil {
				r.Use(middleware.Idempotency(deps.Redis, middleware.IdempotencyOptions{
					TTL:        cfg.Idempotency.TTL,
					LockTTL:    cfg.Idempotency.LockTTL,
					RequireKey: cfg.Idempotency.RequireKeys,
				}, logg))
			}

			r.Get("/auth/me", controllers.AuthMe(deps.Auth, logg))
			r.Get("/dashboard", controllers.DashboardSummary(deps.Dashboard, logg))

			r.Route("/employees", func(r chi.Router) {
				r.Get("/", controllers.EmployeesList(deps.Employees, logg))
				r.Post("/", controllers.EmployeeCreate(deps.Employees, logg))
				r.Get("/{id}", controllers.EmployeeGet(deps.Employees, logg))
				r.Patch("/{id}", controllers.EmployeeUpdate(deps.Employees, logg))
				r.Delete("/{id}", controllers.EmployeeDelete(deps.Employees, logg))
			})

			r.Route("/assets", func(r chi.Router) {
				r.Get("/", controllers.AssetsList(deps.Assets, logg))
				r.Post("/", controllers.AssetCreate(deps.Assets, logg))
				r.Get("/export", controllers.AssetsExport(deps.Assets, logg, nil))
				r.Get("/{id}", controllers.AssetGet(deps.Assets, logg))
				r.Patch("/{id}", controllers.AssetUpdate(deps.Assets, logg))
				r.Delete("/{id}", controllers.AssetDelete(deps.Assets, logg))
				r.Post("/{id}/assign", controllers.AssetAssign(deps.Assets, logg))
				r.Post("/{id}/return", controllers.AssetReturn(deps.Assets, logg))
			})

			r.Route("/assignments", func(r chi.Router) {
				r.Get("/", controllers.AssignmentsList(deps.Assignments, logg))
				r.Get("/{id}", controllers.AssignmentGet(deps.Assignments, logg))
			})
		})
	})

	return r
}
