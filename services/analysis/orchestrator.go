package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services"
	"github.com/upb/seo-audit-console/services/results"
	"go.uber.org/zap"
)

const (
	DefaultPollInterval = 1200 * time.Millisecond
	DefaultPollTimeout  = 5 * time.Minute
)

// AuditAPI is the part of the audit backend the orchestrator drives
type AuditAPI interface {
	CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error)
	CreateSchedule(ctx context.Context, projectID, targetURL string) (*models.Schedule, error)
	StartAudit(ctx context.Context, projectID, targetURL string) (*models.Audit, error)
	GetAuditStatus(ctx context.Context, auditID string) (*models.Audit, error)
	GetAuditResult(ctx context.Context, auditID string) (*models.AuditResult, error)
}

// Status is the visible state of an orchestration run
type Status string

const (
	StatusIdle      Status = "idle"
	StatusCreating  Status = "creating"
	StatusQueued    Status = "queued"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// IsTerminal reports whether the run has resolved
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

func statusFromAudit(s models.AuditStatus) Status {
	return Status(s)
}

// Config bounds the polling loop
type Config struct {
	PollInterval time.Duration
	PollTimeout  time.Duration
}

// Snapshot is a copy of the current run's visible state
type Snapshot struct {
	RunID      string                    `json:"run_id,omitempty"`
	Status     Status                    `json:"status"`
	Statuses   []Status                  `json:"statuses"`
	AuditID    string                    `json:"audit_id,omitempty"`
	ProjectID  string                    `json:"project_id,omitempty"`
	URL        string                    `json:"url,omitempty"`
	Error      string                    `json:"error,omitempty"`
	Cancelled  bool                      `json:"cancelled,omitempty"`
	Result     *results.NormalizedResult `json:"result,omitempty"`
	StartedAt  *time.Time                `json:"started_at,omitempty"`
	FinishedAt *time.Time                `json:"finished_at,omitempty"`
}

// StatusObserver is notified of every visible status change, in order
type StatusObserver func(runID string, status Status)

// Orchestrator drives one audit at a time from submission to a terminal
// state: project, schedule, start, poll, fetch, normalize.
type Orchestrator struct {
	api    AuditAPI
	cfg    Config
	logger *zap.Logger

	mu        sync.Mutex
	inFlight  bool
	cancel    context.CancelFunc
	current   Snapshot
	observers []StatusObserver
}

// NewOrchestrator creates an orchestrator. Zero config values take defaults.
func NewOrchestrator(api AuditAPI, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = DefaultPollTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		api:     api,
		cfg:     cfg,
		logger:  logger.Named("orchestrator"),
		current: Snapshot{Status: StatusIdle, Statuses: []Status{}},
	}
}

// OnStatus registers an observer. Observers run on the orchestrating
// goroutine and must not block.
func (o *Orchestrator) OnStatus(fn StatusObserver) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, fn)
}

// Snapshot returns a copy of the current run's state
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := o.current
	snap.Statuses = append([]Status{}, o.current.Statuses...)
	return snap
}

// InFlight reports whether a run is unresolved
func (o *Orchestrator) InFlight() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inFlight
}

// Run executes one analysis synchronously. A second call while one is in
// flight fails with a conflict error and leaves the first untouched.
func (o *Orchestrator) Run(ctx context.Context, req models.AnalysisRequest) (*results.NormalizedResult, error) {
	if err := services.ValidateInput(&req); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runID, err := o.reserve(req, cancel)
	if err != nil {
		return nil, err
	}
	return o.execute(ctx, runID, req)
}

// Start begins an analysis in the background and returns its run id. The run
// outlives ctx; use Cancel to stop it.
func (o *Orchestrator) Start(ctx context.Context, req models.AnalysisRequest) (string, error) {
	if err := services.ValidateInput(&req); err != nil {
		return "", err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runID, err := o.reserve(req, cancel)
	if err != nil {
		cancel()
		return "", err
	}

	go func() {
		defer cancel()
		_, _ = o.execute(runCtx, runID, req)
	}()
	return runID, nil
}

// Cancel stops the in-flight run at its next loop boundary. It reports
// whether a run was in flight.
func (o *Orchestrator) Cancel() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.inFlight || o.cancel == nil {
		return false
	}
	o.cancel()
	return true
}

func (o *Orchestrator) reserve(req models.AnalysisRequest, cancel context.CancelFunc) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.inFlight {
		return "", services.ErrAnalysisInFlight
	}

	now := time.Now().UTC()
	runID := uuid.NewString()
	o.inFlight = true
	o.cancel = cancel
	o.current = Snapshot{
		RunID:     runID,
		Status:    StatusIdle,
		Statuses:  []Status{},
		URL:       req.URL,
		StartedAt: &now,
	}
	return runID, nil
}

func (o *Orchestrator) execute(ctx context.Context, runID string, req models.AnalysisRequest) (*results.NormalizedResult, error) {
	logger := o.logger.With(zap.String("run_id", runID))
	defer o.release()

	o.publish(runID, StatusCreating, nil)

	project, err := o.api.CreateProject(ctx, models.CreateProjectRequest{
		Name:        req.ProjectName,
		BaseURL:     req.URL,
		NotifyEmail: req.NotifyEmail,
	})
	if err != nil {
		return nil, o.fail(ctx, logger, runID, "create project", err)
	}
	o.update(func(s *Snapshot) { s.ProjectID = project.ID })

	if _, err := o.api.CreateSchedule(ctx, project.ID, req.URL); err != nil {
		return nil, o.fail(ctx, logger, runID, "create schedule", err)
	}

	audit, err := o.api.StartAudit(ctx, project.ID, req.URL)
	if err != nil {
		return nil, o.fail(ctx, logger, runID, "start audit", err)
	}
	if ctx.Err() != nil {
		return nil, o.fail(ctx, logger, runID, "start audit", ctx.Err())
	}

	logger = logger.With(zap.String("audit_id", audit.AuditID))
	o.update(func(s *Snapshot) { s.AuditID = audit.AuditID })
	logger.Info("audit submitted", zap.String("status", string(audit.Status)))

	status, err := o.poll(ctx, logger, runID, audit)
	if err != nil {
		return nil, o.fail(ctx, logger, runID, "poll audit", err)
	}

	if status == models.AuditStatusFailed {
		return nil, o.fail(ctx, logger, runID, "audit", services.ErrAuditFailed)
	}

	raw, err := o.api.GetAuditResult(ctx, audit.AuditID)
	if err != nil {
		return nil, o.fail(ctx, logger, runID, "fetch result", err)
	}
	if ctx.Err() != nil {
		return nil, o.fail(ctx, logger, runID, "fetch result", ctx.Err())
	}

	normalized := results.Normalize(raw)
	o.publish(runID, StatusCompleted, func(s *Snapshot) { s.Result = normalized })
	logger.Info("audit completed",
		zap.Int("score", normalized.Score),
		zap.String("band", string(normalized.Band)))

	return normalized, nil
}

// poll waits for audit to reach a terminal status. Requests are sequential;
// the next status call is issued only after the previous one resolved.
func (o *Orchestrator) poll(ctx context.Context, logger *zap.Logger, runID string, audit *models.Audit) (models.AuditStatus, error) {
	status := audit.Status
	if status.IsPending() {
		o.publish(runID, statusFromAudit(status), nil)
	}

	deadline := time.Now().Add(o.cfg.PollTimeout)
	timer := time.NewTimer(o.cfg.PollInterval)
	defer timer.Stop()

	for status.IsPending() {
		if time.Now().After(deadline) {
			return "", o.timeoutError()
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}

		pollCtx, cancel := context.WithDeadline(ctx, deadline)
		next, err := o.api.GetAuditStatus(pollCtx, audit.AuditID)
		timedOut := errors.Is(pollCtx.Err(), context.DeadlineExceeded)
		cancel()

		// results arriving after cancellation are discarded
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil {
			if timedOut {
				return "", o.timeoutError()
			}
			return "", err
		}

		if next.Status != status {
			logger.Debug("audit status changed",
				zap.String("from", string(status)),
				zap.String("to", string(next.Status)))
		}
		// terminal states are published by the caller once resolved
		status = next.Status
		if status.IsPending() {
			o.publish(runID, statusFromAudit(status), nil)
		}
		timer.Reset(o.cfg.PollInterval)
	}

	return status, nil
}

func (o *Orchestrator) timeoutError() error {
	return services.NewDomainError(services.ErrorTypeTimeout,
		fmt.Sprintf("Audit did not finish within %s. Please try again later.", o.cfg.PollTimeout), nil)
}

// fail publishes the terminal failed state. Cancellation is recorded without
// a failed transition.
func (o *Orchestrator) fail(ctx context.Context, logger *zap.Logger, runID, step string, err error) error {
	if ctx.Err() != nil {
		logger.Info("analysis cancelled", zap.String("step", step))
		o.update(func(s *Snapshot) {
			now := time.Now().UTC()
			s.Cancelled = true
			s.Error = "Analysis cancelled"
			s.FinishedAt = &now
		})
		return ctx.Err()
	}

	message := services.UserMessage(err)
	if services.IsAuditFailed(err) {
		message = services.AuditFailedMessage
	}

	logger.Warn("analysis failed",
		zap.String("step", step),
		zap.String("error_type", string(services.GetErrorType(err))),
		zap.Error(err))
	o.publish(runID, StatusFailed, func(s *Snapshot) { s.Error = message })
	return err
}

// publish applies a status transition and notifies observers. Consecutive
// duplicates are collapsed and terminal states absorb.
func (o *Orchestrator) publish(runID string, status Status, mutate func(*Snapshot)) {
	o.mu.Lock()
	if o.current.RunID != runID || o.current.Status.IsTerminal() {
		o.mu.Unlock()
		return
	}
	if mutate != nil {
		mutate(&o.current)
	}
	changed := o.current.Status != status
	if changed {
		o.current.Status = status
		o.current.Statuses = append(o.current.Statuses, status)
	}
	if status.IsTerminal() {
		now := time.Now().UTC()
		o.current.FinishedAt = &now
	}
	observers := append([]StatusObserver{}, o.observers...)
	o.mu.Unlock()

	if !changed {
		return
	}
	for _, fn := range observers {
		fn(runID, status)
	}
}

func (o *Orchestrator) update(mutate func(*Snapshot)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	mutate(&o.current)
}

func (o *Orchestrator) release() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inFlight = false
	o.cancel = nil
}
