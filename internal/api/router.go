package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/parishops/sla-monitor/internal/model"
	"github.com/parishops/sla-monitor/internal/sla"
)

// Deps bundles everything the HTTP surface needs
type Deps struct {
	Logger    *zap.Logger
	Monitor   *sla.Monitor
	Snapshots *sla.SnapshotBuilder
	Registry  *sla.ThresholdRegistry
	Settings  SettingsStore
	Alerts    AlertLog
	Scheduler Rescheduler
	StartedAt time.Time
}

// NewRouter builds the HTTP routes. Dashboard reads need an operator or
// admin role; the settings surface is admin-only.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", StaffRoleHeader},
	}))

	r.Get("/api/health", Health())

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(model.RoleAdmin, model.RoleOperator))
		r.Get("/api/sla/status", SLAStatus(deps.Snapshots, deps.Logger))
		r.Get("/api/sla/alerts", RecentAlerts(deps.Alerts, deps.Logger))
		r.Post("/api/sla/check", TriggerCheck(deps.Monitor, deps.Logger))
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireRole(model.RoleAdmin))
		r.Get("/api/admin/sla-settings", GetSettings(deps.Registry, deps.Settings, deps.Logger))
		r.Put("/api/admin/sla-settings", UpdateSettings(deps.Registry, deps.Settings, deps.Scheduler, deps.Logger))
		r.Get("/api/admin/diagnostics", Diagnostics(deps.Monitor, deps.StartedAt, deps.Logger))
	})

	return r
}
