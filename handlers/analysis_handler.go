package handlers

import (
	"context"
	"net/http"

	"github.com/upb/seo-audit-console/internal/observability"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services/analysis"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// AnalysisRunner drives background analyses
type AnalysisRunner interface {
	Start(ctx context.Context, req models.AnalysisRequest) (string, error)
	Snapshot() analysis.Snapshot
	Cancel() bool
}

// StartAnalysisResponse is returned when an analysis is accepted
type StartAnalysisResponse struct {
	RunID  string          `json:"run_id"`
	Status analysis.Status `json:"status"`
}

// AnalysisHandler handles analysis submission, progress and cancellation
type AnalysisHandler struct {
	runner   AnalysisRunner
	remember Rememberer
	logger   *zap.Logger
}

// NewAnalysisHandler creates a new AnalysisHandler
func NewAnalysisHandler(runner AnalysisRunner, remember Rememberer, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		runner:   runner,
		remember: remember,
		logger:   logger,
	}
}

// HandleStart handles POST /api/v1/analyses
func (h *AnalysisHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context(), h.logger)

	var req models.AnalysisRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		HandleDecodeError(w, err, logger)
		return
	}

	runID, err := h.runner.Start(r.Context(), req)
	if err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := h.remember.RememberAnalysis(r.Context(), req); err != nil {
		logger.Warn("failed to remember analysis form", zap.Error(err))
	}

	logger.Info("analysis accepted", zap.String("run_id", runID), zap.String("url", req.URL))
	_ = utils.WriteAccepted(w, StartAnalysisResponse{
		RunID:  runID,
		Status: h.runner.Snapshot().Status,
	})
}

// HandleCurrent handles GET /api/v1/analyses/current
func (h *AnalysisHandler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.runner.Snapshot())
}

// HandleCancel handles DELETE /api/v1/analyses/current
func (h *AnalysisHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	if !h.runner.Cancel() {
		_ = utils.WriteNotFound(w, "No analysis is running")
		return
	}
	observability.FromContext(r.Context(), h.logger).Info("analysis cancellation requested")
	utils.WriteNoContent(w)
}
