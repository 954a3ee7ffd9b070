package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/repositories"
	"go.uber.org/zap"
)

// PreferencesRepository implements repositories.PreferencesStore on PostgreSQL
type PreferencesRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewPreferencesRepository creates a new preferences repository
func NewPreferencesRepository(db *DB, logger *zap.Logger) *PreferencesRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferencesRepository{
		db:     db,
		logger: logger,
	}
}

var _ repositories.PreferencesStore = (*PreferencesRepository)(nil)

// Get retrieves the preferences saved for a profile
func (r *PreferencesRepository) Get(ctx context.Context, profile string) (*models.Preferences, error) {
	query := `
		SELECT email, project_name, target_url, notify_email, theme, updated_at
		FROM console_preferences
		WHERE profile = $1
	`

	prefs := &models.Preferences{}
	err := r.db.QueryRowContext(ctx, query, profile).Scan(
		&prefs.Email,
		&prefs.ProjectName,
		&prefs.TargetURL,
		&prefs.NotifyEmail,
		&prefs.Theme,
		&prefs.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	return prefs, nil
}

// Save upserts the preferences for a profile
func (r *PreferencesRepository) Save(ctx context.Context, profile string, prefs *models.Preferences) error {
	query := `
		INSERT INTO console_preferences (profile, email, project_name, target_url, notify_email, theme, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (profile) DO UPDATE SET
			email = EXCLUDED.email,
			project_name = EXCLUDED.project_name,
			target_url = EXCLUDED.target_url,
			notify_email = EXCLUDED.notify_email,
			theme = EXCLUDED.theme,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		profile,
		prefs.Email,
		prefs.ProjectName,
		prefs.TargetURL,
		prefs.NotifyEmail,
		prefs.Theme,
		prefs.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}

	r.logger.Debug("preferences saved", zap.String("profile", profile))
	return nil
}

// HealthCheck reports whether the database is reachable
func (r *PreferencesRepository) HealthCheck(ctx context.Context) error {
	return r.db.HealthCheck(ctx)
}

// Close closes the underlying pool
func (r *PreferencesRepository) Close() error {
	return r.db.Close()
}
