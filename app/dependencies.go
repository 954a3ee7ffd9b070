package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/upb/seo-audit-console/auth"
	"github.com/upb/seo-audit-console/config"
	"github.com/upb/seo-audit-console/handlers"
	"github.com/upb/seo-audit-console/middleware"
	"github.com/upb/seo-audit-console/repositories"
	"github.com/upb/seo-audit-console/repositories/postgres"
	"github.com/upb/seo-audit-console/repositories/sqlite"
	"github.com/upb/seo-audit-console/routes"
	"github.com/upb/seo-audit-console/services/admin"
	"github.com/upb/seo-audit-console/services/analysis"
	"github.com/upb/seo-audit-console/services/auditclient"
	"github.com/upb/seo-audit-console/services/preferences"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *zap.Logger
	Store  repositories.PreferencesStore

	// Audit backend
	Session     *auth.Session
	AuditClient *auditclient.Client

	// Services
	Orchestrator *analysis.Orchestrator
	AdminPanel   *admin.Panel
	Preferences  *preferences.Service
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initStore(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize preferences store: %w", err)
	}

	deps.initAuditClient(cfg)
	deps.initServices(cfg)

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initStore opens PostgreSQL when DATABASE_URL is set, the local SQLite file otherwise
func (d *Dependencies) initStore(ctx context.Context, cfg *config.Config) error {
	if cfg.UsesPostgres() {
		db, err := postgres.NewDB(ctx, cfg.Database, d.Logger)
		if err != nil {
			return err
		}
		if err := db.InitSchema(ctx); err != nil {
			_ = db.Close()
			return err
		}
		d.Store = postgres.NewPreferencesRepository(db, d.Logger)
		return nil
	}

	db, err := sqlite.Open(ctx, cfg.Preferences.Path, d.Logger)
	if err != nil {
		return err
	}
	d.Store = sqlite.NewPreferencesRepository(db)
	return nil
}

func (d *Dependencies) initAuditClient(cfg *config.Config) {
	d.Session = auth.NewSession(d.Logger)
	d.AuditClient = auditclient.NewClient(auditclient.Config{
		BaseURL: cfg.AuditAPI.BaseURL,
		Timeout: cfg.AuditAPI.Timeout,
	}, d.Session, d.Logger)

	d.Logger.Info("audit client initialized", zap.String("base_url", cfg.AuditAPI.BaseURL))
}

func (d *Dependencies) initServices(cfg *config.Config) {
	d.Orchestrator = analysis.NewOrchestrator(d.AuditClient, analysis.Config{
		PollInterval: cfg.Polling.Interval,
		PollTimeout:  cfg.Polling.Timeout,
	}, d.Logger)
	d.Orchestrator.OnStatus(func(runID string, status analysis.Status) {
		d.Logger.Info("analysis status changed",
			zap.String("run_id", runID),
			zap.String("status", string(status)))
	})

	d.AdminPanel = admin.NewPanel(d.AuditClient, d.Session, cfg.Admin.Email, d.Logger)
	if cfg.Admin.Email == "" {
		d.Logger.Warn("ADMIN_EMAIL not set, admin panel disabled")
	}

	d.Preferences = preferences.NewService(d.Store, d.Logger)
}

// Router builds the HTTP handler for the console API
func (d *Dependencies) Router() http.Handler {
	checks := map[string]handlers.HealthChecker{
		"audit_api": handlers.HealthCheckFunc(d.AuditClient.Health),
	}
	if d.Store != nil {
		checks["preferences"] = d.Store
	}

	return routes.SetupRoutes(routes.Handlers{
		Health:      handlers.NewHealthHandler(checks, d.Logger),
		Session:     handlers.NewSessionHandler(d.AuditClient, d.Session, d.Preferences, d.Config.Admin.Email, d.Logger),
		Analysis:    handlers.NewAnalysisHandler(d.Orchestrator, d.Preferences, d.Logger),
		Audit:       handlers.NewAuditHandler(d.AuditClient, d.Logger),
		Admin:       handlers.NewAdminHandler(d.AdminPanel, d.Logger),
		Preferences: handlers.NewPreferencesHandler(d.Preferences, d.Logger),
		AdminGate:   middleware.NewAdminGate(d.Session, d.Config.Admin.Email, d.Logger),
	}, routes.Options{
		AllowedOrigins: d.Config.Server.AllowedOrigins,
		RequestTimeout: d.Config.Server.WriteTimeout,
	}, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.Orchestrator != nil && d.Orchestrator.Cancel() {
		d.Logger.Info("cancelled in-flight analysis")
	}
	if d.AdminPanel != nil {
		d.AdminPanel.Close()
	}

	if d.Store != nil {
		if err := d.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close preferences store: %w", err))
		} else {
			d.Logger.Info("preferences store closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return errors.Join(errs...)
}
