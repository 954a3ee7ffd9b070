package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/upb/seo-audit-console/services"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// HandleServiceError maps domain errors to HTTP responses. The detail is
// always the user-facing message; internal causes are only logged.
func HandleServiceError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if err == nil {
		return
	}

	message := services.UserMessage(err)
	details := services.GetErrorDetails(err)

	var status int
	switch {
	case services.IsValidationError(err):
		status = http.StatusBadRequest
	case services.IsAuthRejected(err):
		status = http.StatusUnauthorized
	case services.IsForbiddenError(err):
		status = http.StatusForbidden
	case services.IsConflictError(err):
		status = http.StatusConflict
	case services.IsTimeoutError(err):
		status = http.StatusGatewayTimeout
	case services.IsAPIError(err), services.IsNetworkError(err), services.IsAuditFailed(err):
		// the audit backend answered badly or not at all
		status = http.StatusBadGateway
		logger.Warn("audit backend error",
			zap.Error(err),
			zap.Int("upstream_status", services.GetStatusCode(err)))
	case services.IsInternalError(err):
		logger.Error("internal server error", zap.Error(err))
		status = http.StatusInternalServerError
		message = "An internal error occurred"
		details = nil
	default:
		logger.Error("unhandled error type",
			zap.Error(err),
			zap.String("error_type", string(services.GetErrorType(err))))
		status = http.StatusInternalServerError
		message = "An unexpected error occurred"
		details = nil
	}

	if err := utils.WriteError(w, status, message, details); err != nil {
		logger.Error("failed to write error response", zap.Error(err))
	}
}

// HandleDecodeError answers a request body that could not be parsed
func HandleDecodeError(w http.ResponseWriter, err error, logger *zap.Logger) {
	message := "Invalid request body"
	if errors.Is(err, io.EOF) {
		message = "Request body is required"
	}
	logger.Debug("failed to decode request body", zap.Error(err))
	if err := utils.WriteBadRequest(w, message, nil); err != nil {
		logger.Error("failed to write bad request response", zap.Error(err))
	}
}
