package handlers

import (
	"context"
	"net/http"

	"github.com/upb/seo-audit-console/internal/observability"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// PreferencesService loads and replaces the remembered console values
type PreferencesService interface {
	Load(ctx context.Context) (*models.Preferences, error)
	Update(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error)
}

// PreferencesHandler handles the remembered form values and theme
type PreferencesHandler struct {
	prefs  PreferencesService
	logger *zap.Logger
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(prefs PreferencesService, logger *zap.Logger) *PreferencesHandler {
	return &PreferencesHandler{
		prefs:  prefs,
		logger: logger,
	}
}

// HandleGet handles GET /api/v1/preferences
func (h *PreferencesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	prefs, err := h.prefs.Load(r.Context())
	if err != nil {
		HandleServiceError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, prefs)
}

// HandleUpdate handles PUT /api/v1/preferences
func (h *PreferencesHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var prefs models.Preferences
	if err := utils.DecodeJSON(r, &prefs); err != nil {
		HandleDecodeError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}

	saved, err := h.prefs.Update(r.Context(), &prefs)
	if err != nil {
		HandleServiceError(w, err, observability.FromContext(r.Context(), h.logger))
		return
	}
	_ = utils.WriteOK(w, saved)
}
