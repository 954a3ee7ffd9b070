package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/repositories"
	"go.uber.org/zap"
)

// PreferencesRepository implements repositories.PreferencesStore on a local file
type PreferencesRepository struct {
	db *DB
}

// NewPreferencesRepository creates a preferences repository on db
func NewPreferencesRepository(db *DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

var _ repositories.PreferencesStore = (*PreferencesRepository)(nil)

// Get retrieves the preferences saved for a profile
func (r *PreferencesRepository) Get(ctx context.Context, profile string) (*models.Preferences, error) {
	var (
		prefs   models.Preferences
		theme   string
		updated string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT email, project_name, target_url, notify_email, theme, updated_at
FROM console_preferences
WHERE profile = ?`, profile).Scan(
		&prefs.Email,
		&prefs.ProjectName,
		&prefs.TargetURL,
		&prefs.NotifyEmail,
		&theme,
		&updated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	prefs.Theme = models.Theme(theme)
	if prefs.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at %q: %w", updated, err)
	}
	return &prefs, nil
}

// Save upserts the preferences for a profile
func (r *PreferencesRepository) Save(ctx context.Context, profile string, prefs *models.Preferences) error {
	theme := prefs.Theme
	if theme == "" {
		theme = models.ThemeLight
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO console_preferences (profile, email, project_name, target_url, notify_email, theme, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(profile) DO UPDATE SET
    email = excluded.email,
    project_name = excluded.project_name,
    target_url = excluded.target_url,
    notify_email = excluded.notify_email,
    theme = excluded.theme,
    updated_at = excluded.updated_at`,
		profile,
		prefs.Email,
		prefs.ProjectName,
		prefs.TargetURL,
		prefs.NotifyEmail,
		string(theme),
		prefs.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	r.db.logger.Debug("preferences saved", zap.String("profile", profile))
	return nil
}

// HealthCheck reports whether the file is readable
func (r *PreferencesRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close closes the database file
func (r *PreferencesRepository) Close() error {
	return r.db.Close()
}
