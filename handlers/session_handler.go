package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/upb/seo-audit-console/auth"
	"github.com/upb/seo-audit-console/internal/observability"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services/analysis"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// SessionClient is the part of the audit backend that manages credentials
type SessionClient interface {
	analysis.Authenticator
	Logout()
}

// Rememberer records last-used form values
type Rememberer interface {
	RememberLogin(ctx context.Context, email string) error
	RememberAnalysis(ctx context.Context, req models.AnalysisRequest) error
}

// SessionResponse describes the held credential
type SessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Admin         bool       `json:"admin"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

// SessionHandler handles sign-in, sign-out and session inspection
type SessionHandler struct {
	client     SessionClient
	session    *auth.Session
	remember   Rememberer
	adminEmail string
	logger     *zap.Logger
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(client SessionClient, session *auth.Session, remember Rememberer, adminEmail string, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{
		client:     client,
		session:    session,
		remember:   remember,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// HandleSignIn handles POST /api/v1/session
func (h *SessionHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	logger := observability.FromContext(r.Context(), h.logger)

	var creds models.Credentials
	if err := utils.DecodeJSON(r, &creds); err != nil {
		HandleDecodeError(w, err, logger)
		return
	}

	if _, err := analysis.SignIn(r.Context(), h.client, creds); err != nil {
		HandleServiceError(w, err, logger)
		return
	}

	if err := h.remember.RememberLogin(r.Context(), creds.Email); err != nil {
		logger.Warn("failed to remember login email", zap.Error(err))
	}

	logger.Info("signed in")
	_ = utils.WriteOK(w, h.describe())
}

// HandleSignOut handles DELETE /api/v1/session
func (h *SessionHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	h.client.Logout()
	utils.WriteNoContent(w)
}

// HandleGetSession handles GET /api/v1/session
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.describe())
}

func (h *SessionHandler) describe() SessionResponse {
	resp := SessionResponse{Authenticated: h.session.Authenticated()}
	if !resp.Authenticated {
		return resp
	}

	identity, err := h.session.Identity()
	if err != nil {
		// opaque credential; the backend still decides
		h.logger.Debug("credential carries no readable identity", zap.Error(err))
		return resp
	}
	resp.Email = identity.Email
	resp.Admin = identity.Is(h.adminEmail)
	if !identity.ExpiresAt.IsZero() {
		expires := identity.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}
