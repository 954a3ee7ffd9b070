package repositories

import (
	"context"
	"errors"

	"github.com/upb/seo-audit-console/models"
)

// ErrNotFound is returned when no preferences were saved for a profile
var ErrNotFound = errors.New("preferences not found")

// PreferencesRepository persists the console's convenience state.
// Implementations never store the credential.
type PreferencesRepository interface {
	// Get returns the preferences saved for profile, or ErrNotFound
	Get(ctx context.Context, profile string) (*models.Preferences, error)

	// Save inserts or replaces the preferences for profile
	Save(ctx context.Context, profile string, prefs *models.Preferences) error
}

// PreferencesStore is a PreferencesRepository backed by a closable
// connection that can report its health.
type PreferencesStore interface {
	PreferencesRepository
	HealthCheck(ctx context.Context) error
	Close() error
}
