package preferences

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/repositories"
	"github.com/upb/seo-audit-console/services"
	"go.uber.org/zap"
)

// DefaultProfile is the single profile the console reads and writes
const DefaultProfile = "default"

// Service remembers last-used form values and the theme between sessions
type Service struct {
	repo    repositories.PreferencesRepository
	profile string
	logger  *zap.Logger
	now     func() time.Time

	// serialises read-modify-write cycles
	mu sync.Mutex
}

// NewService creates a preferences service for DefaultProfile
func NewService(repo repositories.PreferencesRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		profile: DefaultProfile,
		logger:  logger.Named("preferences"),
		now:     time.Now,
	}
}

// Load returns the saved preferences, or the defaults when none exist
func (s *Service) Load(ctx context.Context) (*models.Preferences, error) {
	prefs, err := s.repo.Get(ctx, s.profile)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return models.DefaultPreferences(), nil
		}
		return nil, services.WrapInternal("failed to load preferences", err)
	}
	if prefs.Theme == "" {
		prefs.Theme = models.ThemeLight
	}
	return prefs, nil
}

// Update replaces every stored value with prefs
func (s *Service) Update(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error) {
	if prefs == nil {
		return nil, services.ErrInvalidInput
	}

	next := *prefs
	next.Email = strings.TrimSpace(next.Email)
	next.ProjectName = strings.TrimSpace(next.ProjectName)
	next.TargetURL = strings.TrimSpace(next.TargetURL)
	next.NotifyEmail = strings.TrimSpace(next.NotifyEmail)
	if next.Theme == "" {
		next.Theme = models.ThemeLight
	}
	if err := services.ValidateInput(&next); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, &next)
}

// RememberLogin records the email of a successful sign-in
func (s *Service) RememberLogin(ctx context.Context, email string) error {
	return s.modify(ctx, func(p *models.Preferences) {
		p.Email = strings.TrimSpace(email)
	})
}

// RememberAnalysis records the form values of a submitted analysis
func (s *Service) RememberAnalysis(ctx context.Context, req models.AnalysisRequest) error {
	return s.modify(ctx, func(p *models.Preferences) {
		p.ProjectName = strings.TrimSpace(req.ProjectName)
		p.TargetURL = strings.TrimSpace(req.URL)
		p.NotifyEmail = ""
		if req.NotifyEmail != nil {
			p.NotifyEmail = strings.TrimSpace(*req.NotifyEmail)
		}
	})
}

func (s *Service) modify(ctx context.Context, fn func(*models.Preferences)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefs, err := s.Load(ctx)
	if err != nil {
		return err
	}
	fn(prefs)
	_, err = s.save(ctx, prefs)
	return err
}

func (s *Service) save(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error) {
	prefs.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, s.profile, prefs); err != nil {
		s.logger.Error("failed to save preferences", zap.Error(err))
		return nil, services.WrapInternal("failed to save preferences", err)
	}
	return prefs, nil
}
