package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/upb/seo-audit-console/internal/observability"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// AuditBrowser exposes read-only audit backend data
type AuditBrowser interface {
	ReportURL(auditID string) string
	ListSchedules(ctx context.Context) ([]models.Schedule, error)
	GetProjectHistory(ctx context.Context, projectID string) ([]models.HistoryPoint, error)
	GetProjectActions(ctx context.Context, projectID string) ([]models.Recommendation, error)
}

// AuditHandler passes schedule, history and report requests through to the
// audit backend
type AuditHandler struct {
	browser AuditBrowser
	logger  *zap.Logger
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(browser AuditBrowser, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		browser: browser,
		logger:  logger,
	}
}

// HandleReportURL handles GET /api/v1/audits/{auditID}/report-url
func (h *AuditHandler) HandleReportURL(w http.ResponseWriter, r *http.Request) {
	auditID := strings.TrimSpace(chi.URLParam(r, "auditID"))
	if auditID == "" {
		_ = utils.WriteBadRequest(w, "audit id is required", nil)
		return
	}
	_ = utils.WriteOK(w, map[string]string{"url": h.browser.ReportURL(auditID)})
}

// HandleListSchedules handles GET /api/v1/schedules
func (h *AuditHandler) HandleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := h.browser.ListSchedules(r.Context())
	if err != nil {
		HandleServiceError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{"items": schedules})
}

// HandleProjectHistory handles GET /api/v1/projects/{projectID}/history
func (h *AuditHandler) HandleProjectHistory(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	history, err := h.browser.GetProjectHistory(r.Context(), projectID)
	if err != nil {
		HandleServiceError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{
		"project_id": projectID,
		"history":    history,
	})
}

// HandleProjectActions handles GET /api/v1/projects/{projectID}/actions
func (h *AuditHandler) HandleProjectActions(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	actions, err := h.browser.GetProjectActions(r.Context(), projectID)
	if err != nil {
		HandleServiceError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, map[string]interface{}{
		"project_id": projectID,
		"actions":    actions,
	})
}
