package handlers

import (
	"context"
	"net/http"

	"github.com/upb/seo-audit-console/internal/observability"
	"github.com/upb/seo-audit-console/services/admin"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// AdminView is the admin aggregation panel
type AdminView interface {
	Open(ctx context.Context) error
	Close()
	State() admin.State
}

// AdminHandler opens, closes and renders the admin panel
type AdminHandler struct {
	panel  AdminView
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(panel AdminView, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		panel:  panel,
		logger: logger,
	}
}

// HandleOpen handles POST /api/v1/admin/panel
func (h *AdminHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	if err := h.panel.Open(r.Context()); err != nil {
		HandleServiceError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}
	_ = utils.WriteAccepted(w, h.panel.State())
}

// HandleClose handles DELETE /api/v1/admin/panel
func (h *AdminHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	h.panel.Close()
	utils.WriteNoContent(w)
}

// HandleState handles GET /api/v1/admin/panel
func (h *AdminHandler) HandleState(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.panel.State())
}
