package analysis

import (
	"context"

	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services"
)

// Authenticator is the part of the audit backend that issues credentials
type Authenticator interface {
	Register(ctx context.Context, creds models.Credentials) error
	Login(ctx context.Context, creds models.Credentials) (string, error)
}

// SignIn registers the account if needed and logs in. Registration of an
// existing email is tolerated by the client, so login always follows a
// successful or already-done registration.
func SignIn(ctx context.Context, api Authenticator, creds models.Credentials) (string, error) {
	if err := services.ValidateInput(&creds); err != nil {
		return "", err
	}
	if err := api.Register(ctx, creds); err != nil {
		return "", err
	}
	return api.Login(ctx, creds)
}
