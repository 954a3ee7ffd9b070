package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrNoCredential is returned when no credential is held
	ErrNoCredential = errors.New("no credential held")

	// ErrMissingClaim is returned when a required claim is missing
	ErrMissingClaim = errors.New("missing required claim")
)

// Claims are the claims the audit backend puts into its access tokens
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// Identity is the decoded, unverified view of a credential.
// The audit backend remains the only authority on whether it is valid.
type Identity struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// ParseIdentity decodes the claims of a bearer token without verifying its
// signature. The signing key belongs to the audit backend.
func ParseIdentity(tokenString string) (*Identity, error) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := &Claims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	identity := &Identity{
		UserID: claims.Subject,
		Email:  claims.Email,
	}
	if claims.ExpiresAt != nil {
		identity.ExpiresAt = claims.ExpiresAt.Time
	}

	return identity, nil
}

// Expired reports whether the credential's exp claim is in the past.
// A credential without exp never expires client-side.
func (i *Identity) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Is reports whether the identity belongs to email, ignoring case
func (i *Identity) Is(email string) bool {
	email = strings.TrimSpace(email)
	return email != "" && strings.EqualFold(i.Email, email)
}
