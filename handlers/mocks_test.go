package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/upb/seo-audit-console/auth"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services/admin"
	"github.com/upb/seo-audit-console/services/analysis"
)

type MockSessionClient struct {
	mock.Mock
}

func (m *MockSessionClient) Register(ctx context.Context, creds models.Credentials) error {
	return m.Called(ctx, creds).Error(0)
}

func (m *MockSessionClient) Login(ctx context.Context, creds models.Credentials) (string, error) {
	args := m.Called(ctx, creds)
	return args.String(0), args.Error(1)
}

func (m *MockSessionClient) Logout() {
	m.Called()
}

type MockRememberer struct {
	mock.Mock
}

func (m *MockRememberer) RememberLogin(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *MockRememberer) RememberAnalysis(ctx context.Context, req models.AnalysisRequest) error {
	return m.Called(ctx, req).Error(0)
}

type MockAnalysisRunner struct {
	mock.Mock
}

func (m *MockAnalysisRunner) Start(ctx context.Context, req models.AnalysisRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *MockAnalysisRunner) Snapshot() analysis.Snapshot {
	return m.Called().Get(0).(analysis.Snapshot)
}

func (m *MockAnalysisRunner) Cancel() bool {
	return m.Called().Bool(0)
}

type MockAuditBrowser struct {
	mock.Mock
}

func (m *MockAuditBrowser) ReportURL(auditID string) string {
	return m.Called(auditID).String(0)
}

func (m *MockAuditBrowser) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Schedule), args.Error(1)
}

func (m *MockAuditBrowser) GetProjectHistory(ctx context.Context, projectID string) ([]models.HistoryPoint, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryPoint), args.Error(1)
}

func (m *MockAuditBrowser) GetProjectActions(ctx context.Context, projectID string) ([]models.Recommendation, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Recommendation), args.Error(1)
}

type MockAdminView struct {
	mock.Mock
}

func (m *MockAdminView) Open(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockAdminView) Close() {
	m.Called()
}

func (m *MockAdminView) State() admin.State {
	return m.Called().Get(0).(admin.State)
}

type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) Load(ctx context.Context) (*models.Preferences, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Preferences), args.Error(1)
}

func (m *MockPreferencesService) Update(ctx context.Context, prefs *models.Preferences) (*models.Preferences, error) {
	args := m.Called(ctx, prefs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Preferences), args.Error(1)
}

func newToken(t *testing.T, email string, exp time.Time) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Email: email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	return token
}

// serve routes one request through a chi router so URL params resolve
func serve(method, pattern, target, body string, handler http.HandlerFunc) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, handler)

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
