package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

// PrivilegeChecker reports whether the held credential belongs to adminEmail
type PrivilegeChecker interface {
	IsPrivileged(adminEmail string) bool
}

// AdminGate restricts a route group to the configured admin identity
type AdminGate struct {
	checker    PrivilegeChecker
	adminEmail string
	logger     *zap.Logger
}

// NewAdminGate creates a new AdminGate. An empty adminEmail admits nobody.
func NewAdminGate(checker PrivilegeChecker, adminEmail string, logger *zap.Logger) *AdminGate {
	return &AdminGate{
		checker:    checker,
		adminEmail: adminEmail,
		logger:     logger,
	}
}

// RequireAdmin is a middleware that answers 403 unless the held credential
// is the admin identity
func (g *AdminGate) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.adminEmail == "" || !g.checker.IsPrivileged(g.adminEmail) {
			g.logger.Warn("admin access denied",
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("path", r.URL.Path))
			_ = utils.WriteForbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
