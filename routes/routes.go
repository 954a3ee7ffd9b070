package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/seo-audit-console/handlers"
	consolemw "github.com/upb/seo-audit-console/middleware"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// Handlers groups the console API handlers
type Handlers struct {
	Health      *handlers.HealthHandler
	Session     *handlers.SessionHandler
	Analysis    *handlers.AnalysisHandler
	Audit       *handlers.AuditHandler
	Admin       *handlers.AdminHandler
	Preferences *handlers.PreferencesHandler
	AdminGate   *consolemw.AdminGate
}

// Options configures cross-cutting router behaviour
type Options struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// SetupRoutes configures all application routes and middleware
func SetupRoutes(h Handlers, opts Options, logger *zap.Logger) http.Handler {
	if opts.RequestTimeout == 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(consolemw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(opts.RequestTimeout))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", h.Health.HandleHealth)
	r.Get("/readyz", h.Health.HandleReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/session", func(r chi.Router) {
			r.Get("/", h.Session.HandleGetSession)
			r.Post("/", h.Session.HandleSignIn)
			r.Delete("/", h.Session.HandleSignOut)
		})

		r.Post("/analyses", h.Analysis.HandleStart)
		r.Route("/analyses/current", func(r chi.Router) {
			r.Get("/", h.Analysis.HandleCurrent)
			r.Delete("/", h.Analysis.HandleCancel)
		})

		r.Get("/audits/{auditID}/report-url", h.Audit.HandleReportURL)
		r.Get("/schedules", h.Audit.HandleListSchedules)
		r.Get("/projects/{projectID}/history", h.Audit.HandleProjectHistory)
		r.Get("/projects/{projectID}/actions", h.Audit.HandleProjectActions)

		r.Route("/admin/panel", func(r chi.Router) {
			r.Use(h.AdminGate.RequireAdmin)
			r.Get("/", h.Admin.HandleState)
			r.Post("/", h.Admin.HandleOpen)
			r.Delete("/", h.Admin.HandleClose)
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", h.Preferences.HandleGet)
			r.Put("/", h.Preferences.HandleUpdate)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
