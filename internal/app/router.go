package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lunchline/lunchline/internal/audit"
	"github.com/lunchline/lunchline/internal/auth"
	"github.com/lunchline/lunchline/internal/calendar"
	"github.com/lunchline/lunchline/internal/menus"
	"github.com/lunchline/lunchline/internal/observability"
	"github.com/lunchline/lunchline/internal/ordering"
	"github.com/lunchline/lunchline/internal/settings"
	"github.com/lunchline/lunchline/internal/shared"
	"github.com/lunchline/lunchline/internal/users"
	"github.com/lunchline/lunchline/internal/vendors"
	"github.com/lunchline/lunchline/jobs"
	"github.com/lunchline/lunchline/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	OrderingHandler *ordering.Handler
	CalendarHandler *calendar.Handler
	SettingsHandler *settings.Handler
	UsersHandler    *users.Handler
	VendorsHandler  *vendors.Handler
	MenusHandler    *menus.Handler
	AuditHandler    *audit.Handler
	ReportHandler   *report.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with Lunchline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.OrderingHandler != nil {
		params.OrderingHandler.MountRoutes(r)
	}
	if params.CalendarHandler != nil {
		r.Route("/calendar", params.CalendarHandler.MountRoutes)
	}
	if params.SettingsHandler != nil {
		r.Route("/settings", params.SettingsHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.VendorsHandler != nil {
		r.Route("/vendors", params.VendorsHandler.MountRoutes)
	}
	if params.MenusHandler != nil {
		r.Route("/menus", params.MenusHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
