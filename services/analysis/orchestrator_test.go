package analysis

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services"
	"github.com/upb/seo-audit-console/services/results"
	"go.uber.org/zap/zaptest"
)

type mockAuditAPI struct {
	mock.Mock
}

func (m *mockAuditAPI) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	args := m.Called(ctx, req)
	project, _ := args.Get(0).(*models.Project)
	return project, args.Error(1)
}

func (m *mockAuditAPI) CreateSchedule(ctx context.Context, projectID, targetURL string) (*models.Schedule, error) {
	args := m.Called(ctx, projectID, targetURL)
	schedule, _ := args.Get(0).(*models.Schedule)
	return schedule, args.Error(1)
}

func (m *mockAuditAPI) StartAudit(ctx context.Context, projectID, targetURL string) (*models.Audit, error) {
	args := m.Called(ctx, projectID, targetURL)
	audit, _ := args.Get(0).(*models.Audit)
	return audit, args.Error(1)
}

func (m *mockAuditAPI) GetAuditStatus(ctx context.Context, auditID string) (*models.Audit, error) {
	args := m.Called(ctx, auditID)
	audit, _ := args.Get(0).(*models.Audit)
	return audit, args.Error(1)
}

func (m *mockAuditAPI) GetAuditResult(ctx context.Context, auditID string) (*models.AuditResult, error) {
	args := m.Called(ctx, auditID)
	result, _ := args.Get(0).(*models.AuditResult)
	return result, args.Error(1)
}

const targetURL = "https://example.com"

var analysisRequest = models.AnalysisRequest{ProjectName: "Example", URL: targetURL}

func audit(status models.AuditStatus) *models.Audit {
	return &models.Audit{AuditID: "a1", Status: status}
}

// expectSetup wires the project and schedule calls that precede every audit
func expectSetup(api *mockAuditAPI) {
	api.On("CreateProject", mock.Anything, models.CreateProjectRequest{Name: "Example", BaseURL: targetURL}).
		Return(&models.Project{ID: "p1", Name: "Example", BaseURL: targetURL}, nil).Once()
	api.On("CreateSchedule", mock.Anything, "p1", targetURL).
		Return(&models.Schedule{ID: "s1", ProjectID: "p1", URL: targetURL, Weekday: 1, HourUTC: 8, Enabled: true}, nil).Once()
}

type statusRecorder struct {
	mu       sync.Mutex
	statuses []Status
}

func (r *statusRecorder) observe(_ string, status Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *statusRecorder) get() []Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Status{}, r.statuses...)
}

func newTestOrchestrator(t *testing.T, api AuditAPI, cfg Config) (*Orchestrator, *statusRecorder) {
	t.Helper()

	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Millisecond
	}
	o := NewOrchestrator(api, cfg, zaptest.NewLogger(t))
	rec := &statusRecorder{}
	o.OnStatus(rec.observe)
	return o, rec
}

func TestOrchestrator_CompletedScenario(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusQueued), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").Return(audit(models.AuditStatusRunning), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").Return(audit(models.AuditStatusCompleted), nil).Once()
	api.On("GetAuditResult", mock.Anything, "a1").Return(&models.AuditResult{
		AuditID: "a1",
		Score:   72,
		Checklist: []models.ChecklistEntry{
			{Key: "title", Value: "missing", Passed: false, Priority: models.BucketDoNow},
			{Key: "lcp", Value: "n/a (nepamatuota)", Passed: true, Priority: models.BucketLater},
		},
		Recommendations: []models.Recommendation{{Title: "Add title", Bucket: models.BucketDoNow}},
	}, nil).Once()

	o, rec := newTestOrchestrator(t, api, Config{})

	result, err := o.Run(context.Background(), analysisRequest)
	require.NoError(t, err)

	want := []Status{StatusCreating, StatusQueued, StatusRunning, StatusCompleted}
	assert.Equal(t, want, rec.get())
	assert.Equal(t, results.BandNeedsWork, result.Band)
	assert.Equal(t, 1, result.ChecklistBuckets[models.BucketDoNow].Count)

	snap := o.Snapshot()
	assert.Equal(t, StatusCompleted, snap.Status)
	assert.Equal(t, want, snap.Statuses)
	assert.Equal(t, "a1", snap.AuditID)
	assert.Equal(t, "p1", snap.ProjectID)
	assert.NotEmpty(t, snap.RunID)
	assert.Empty(t, snap.Error)
	assert.Same(t, result, snap.Result)
	assert.NotNil(t, snap.FinishedAt)
	assert.False(t, o.InFlight())

	api.AssertExpectations(t)
}

func TestOrchestrator_FailedWithoutPolling(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusFailed), nil).Once()

	o, rec := newTestOrchestrator(t, api, Config{})

	_, err := o.Run(context.Background(), analysisRequest)
	require.Error(t, err)
	assert.True(t, services.IsAuditFailed(err))
	assert.False(t, services.IsTimeoutError(err))

	assert.Equal(t, []Status{StatusCreating, StatusFailed}, rec.get())
	assert.Equal(t, services.AuditFailedMessage, o.Snapshot().Error)

	api.AssertNotCalled(t, "GetAuditStatus", mock.Anything, mock.Anything)
	api.AssertNotCalled(t, "GetAuditResult", mock.Anything, mock.Anything)
}

func TestOrchestrator_FailedWhilePolling(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusRunning), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").Return(audit(models.AuditStatusFailed), nil).Once()

	o, rec := newTestOrchestrator(t, api, Config{})

	_, err := o.Run(context.Background(), analysisRequest)
	assert.True(t, services.IsAuditFailed(err))
	assert.Equal(t, []Status{StatusCreating, StatusRunning, StatusFailed}, rec.get())
	assert.Equal(t, services.AuditFailedMessage, o.Snapshot().Error)
}

func TestOrchestrator_CompletedImmediately(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusCompleted), nil).Once()
	api.On("GetAuditResult", mock.Anything, "a1").Return(&models.AuditResult{Score: 91}, nil).Once()

	o, rec := newTestOrchestrator(t, api, Config{})

	result, err := o.Run(context.Background(), analysisRequest)
	require.NoError(t, err)
	assert.Equal(t, results.BandGood, result.Band)
	assert.Equal(t, []Status{StatusCreating, StatusCompleted}, rec.get())
	api.AssertNotCalled(t, "GetAuditStatus", mock.Anything, mock.Anything)
}

func TestOrchestrator_SetupFailureAborts(t *testing.T) {
	tests := []struct {
		name  string
		setup func(api *mockAuditAPI)
	}{
		{
			name: "project rejected",
			setup: func(api *mockAuditAPI) {
				api.On("CreateProject", mock.Anything, mock.Anything).
					Return(nil, services.NewAPIError(http.StatusUnprocessableEntity, "invalid url")).Once()
			},
		},
		{
			name: "schedule rejected",
			setup: func(api *mockAuditAPI) {
				api.On("CreateProject", mock.Anything, mock.Anything).
					Return(&models.Project{ID: "p1"}, nil).Once()
				api.On("CreateSchedule", mock.Anything, "p1", targetURL).
					Return(nil, services.NewAPIError(http.StatusUnprocessableEntity, "invalid url")).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAuditAPI{}
			tt.setup(api)

			o, rec := newTestOrchestrator(t, api, Config{})

			_, err := o.Run(context.Background(), analysisRequest)
			require.Error(t, err)
			assert.True(t, services.IsAPIError(err))
			assert.Equal(t, []Status{StatusCreating, StatusFailed}, rec.get())
			assert.Equal(t, "invalid url", o.Snapshot().Error)
			assert.Empty(t, o.Snapshot().AuditID)

			api.AssertNotCalled(t, "StartAudit", mock.Anything, mock.Anything, mock.Anything)
			api.AssertExpectations(t)
		})
	}
}

func TestOrchestrator_ResultFetchFailureIsTerminal(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusQueued), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").Return(audit(models.AuditStatusCompleted), nil).Once()
	api.On("GetAuditResult", mock.Anything, "a1").
		Return(nil, services.WrapNetwork("audit service unreachable", errors.New("connection reset"))).Once()

	o, rec := newTestOrchestrator(t, api, Config{})

	_, err := o.Run(context.Background(), analysisRequest)
	assert.True(t, services.IsNetworkError(err))
	assert.Equal(t, []Status{StatusCreating, StatusQueued, StatusFailed}, rec.get())
	assert.Nil(t, o.Snapshot().Result)
	api.AssertExpectations(t)
}

func TestOrchestrator_PollTimeout(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusQueued), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").Return(audit(models.AuditStatusRunning), nil)

	o, rec := newTestOrchestrator(t, api, Config{PollInterval: time.Millisecond, PollTimeout: 30 * time.Millisecond})

	_, err := o.Run(context.Background(), analysisRequest)
	require.Error(t, err)
	assert.True(t, services.IsTimeoutError(err))
	assert.ErrorIs(t, err, services.ErrPollTimeout)

	assert.Equal(t, []Status{StatusCreating, StatusQueued, StatusRunning, StatusFailed}, rec.get())
	snap := o.Snapshot()
	assert.Contains(t, snap.Error, "did not finish")
	assert.NotEqual(t, services.AuditFailedMessage, snap.Error)
	api.AssertNotCalled(t, "GetAuditResult", mock.Anything, mock.Anything)
}

func TestOrchestrator_RejectsSecondRunAndCancels(t *testing.T) {
	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusQueued), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").Return(audit(models.AuditStatusRunning), nil)

	o, rec := newTestOrchestrator(t, api, Config{PollInterval: 2 * time.Millisecond, PollTimeout: time.Minute})

	runID, err := o.Start(context.Background(), analysisRequest)
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	require.Eventually(t, func() bool {
		return o.Snapshot().Status == StatusRunning
	}, time.Second, time.Millisecond)

	_, err = o.Run(context.Background(), analysisRequest)
	require.Error(t, err)
	assert.True(t, services.IsConflictError(err))
	assert.Equal(t, runID, o.Snapshot().RunID)

	assert.True(t, o.Cancel())
	require.Eventually(t, func() bool { return !o.InFlight() }, time.Second, time.Millisecond)

	snap := o.Snapshot()
	assert.True(t, snap.Cancelled)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.NotContains(t, rec.get(), StatusFailed)
	assert.False(t, o.Cancel())

	// no further polls after cancellation
	calls := len(api.Calls)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, len(api.Calls))
}

func TestOrchestrator_CancelledContextDiscardsInFlightResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	api := &mockAuditAPI{}
	expectSetup(api)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusQueued), nil).Once()
	api.On("GetAuditStatus", mock.Anything, "a1").
		Run(func(mock.Arguments) { cancel() }).
		Return(audit(models.AuditStatusCompleted), nil).Once()

	o, rec := newTestOrchestrator(t, api, Config{})

	_, err := o.Run(ctx, analysisRequest)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []Status{StatusCreating, StatusQueued}, rec.get())
	api.AssertNotCalled(t, "GetAuditResult", mock.Anything, mock.Anything)
}

func TestOrchestrator_ValidationNeverStarts(t *testing.T) {
	api := &mockAuditAPI{}
	o, rec := newTestOrchestrator(t, api, Config{})

	_, err := o.Run(context.Background(), models.AnalysisRequest{ProjectName: "Example", URL: "not a url"})
	require.Error(t, err)
	assert.True(t, services.IsValidationError(err))

	_, err = o.Start(context.Background(), models.AnalysisRequest{URL: targetURL})
	assert.True(t, services.IsValidationError(err))

	assert.Empty(t, rec.get())
	assert.Equal(t, StatusIdle, o.Snapshot().Status)
	assert.Empty(t, api.Calls)
}

func TestOrchestrator_RerunResetsState(t *testing.T) {
	api := &mockAuditAPI{}
	api.On("CreateProject", mock.Anything, mock.Anything).Return(&models.Project{ID: "p1"}, nil)
	api.On("CreateSchedule", mock.Anything, "p1", targetURL).Return(&models.Schedule{ID: "s1"}, nil)
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusFailed), nil).Once()
	api.On("StartAudit", mock.Anything, "p1", targetURL).Return(audit(models.AuditStatusCompleted), nil).Once()
	api.On("GetAuditResult", mock.Anything, "a1").Return(&models.AuditResult{Score: 50}, nil).Once()

	o, _ := newTestOrchestrator(t, api, Config{})

	_, err := o.Run(context.Background(), analysisRequest)
	require.Error(t, err)
	first := o.Snapshot().RunID

	result, err := o.Run(context.Background(), analysisRequest)
	require.NoError(t, err)
	assert.Equal(t, results.BandCritical, result.Band)

	snap := o.Snapshot()
	assert.NotEqual(t, first, snap.RunID)
	assert.Empty(t, snap.Error)
	assert.Equal(t, []Status{StatusCreating, StatusCompleted}, snap.Statuses)
}
