package auditclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upb/seo-audit-console/auth"
	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services"
	"github.com/upb/seo-audit-console/utils"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 30 * time.Second

	// maxResponseBytes bounds how much of a response body is read
	maxResponseBytes = 4 << 20

	// RequestIDHeader correlates outbound calls with audit backend logs
	RequestIDHeader = "X-Request-ID"
)

// Config configures the audit backend connection
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client is the typed adapter for the audit backend HTTP API. Every call
// carries the session credential when one is held, and every non-success
// response becomes a DomainError with a message taken from the body.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *auth.Session
	logger     *zap.Logger
}

// NewClient creates a new audit backend client
func NewClient(cfg Config, session *auth.Session, logger *zap.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		session: session,
		logger:  logger.Named("audit_client"),
	}
}

// Session returns the session whose credential the client attaches
func (c *Client) Session() *auth.Session {
	return c.session
}

// Register creates an account. An already registered email is not an error,
// the caller logs in next either way.
func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	if err := services.ValidateInput(&creds); err != nil {
		return err
	}

	err := c.do(ctx, http.MethodPost, "/auth/register", "Registration failed", creds, nil)
	if services.GetStatusCode(err) == http.StatusConflict {
		c.logger.Debug("account already registered")
		return nil
	}
	return err
}

// Login exchanges credentials for a bearer credential and stores it in the
// session
func (c *Client) Login(ctx context.Context, creds models.Credentials) (string, error) {
	if err := services.ValidateInput(&creds); err != nil {
		return "", err
	}

	var resp models.TokenResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "Login failed", creds, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", services.NewDomainError(services.ErrorTypeAPI, "Login failed", nil)
	}

	c.session.Set(resp.AccessToken)
	return resp.AccessToken, nil
}

// Logout drops the held credential. The audit backend keeps no server-side
// session, so no call is made.
func (c *Client) Logout() {
	c.session.Clear()
}

// CreateProject registers the target site
func (c *Client) CreateProject(ctx context.Context, req models.CreateProjectRequest) (*models.Project, error) {
	if err := services.ValidateInput(&req); err != nil {
		return nil, err
	}

	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", "Failed to create project", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateSchedule registers the default weekly re-check of targetURL
func (c *Client) CreateSchedule(ctx context.Context, projectID, targetURL string) (*models.Schedule, error) {
	req := models.NewDefaultScheduleRequest(projectID, targetURL)
	if err := services.ValidateInput(&req); err != nil {
		return nil, err
	}

	var schedule models.Schedule
	if err := c.do(ctx, http.MethodPost, "/schedules", "Failed to create schedule", req, &schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListSchedules returns the schedules of the authenticated user
func (c *Client) ListSchedules(ctx context.Context) ([]models.Schedule, error) {
	var resp struct {
		Items []models.Schedule `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/schedules", "Failed to load schedules", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// StartAudit submits an audit job
func (c *Client) StartAudit(ctx context.Context, projectID, targetURL string) (*models.Audit, error) {
	req := models.StartAuditRequest{ProjectID: projectID, URL: targetURL}
	if err := services.ValidateInput(&req); err != nil {
		return nil, err
	}

	var audit models.Audit
	if err := c.do(ctx, http.MethodPost, "/audits/start", "Failed to start audit", req, &audit); err != nil {
		return nil, err
	}
	return &audit, nil
}

// GetAuditStatus polls the status of an audit job
func (c *Client) GetAuditStatus(ctx context.Context, auditID string) (*models.Audit, error) {
	if err := requireID("audit_id", auditID); err != nil {
		return nil, err
	}

	var audit models.Audit
	path := "/audits/" + url.PathEscape(auditID) + "/status"
	if err := c.do(ctx, http.MethodGet, path, "Failed to fetch audit status", nil, &audit); err != nil {
		return nil, err
	}
	return &audit, nil
}

// GetAuditResult fetches the result snapshot of a completed audit
func (c *Client) GetAuditResult(ctx context.Context, auditID string) (*models.AuditResult, error) {
	if err := requireID("audit_id", auditID); err != nil {
		return nil, err
	}

	var result models.AuditResult
	path := "/audits/" + url.PathEscape(auditID) + "/results"
	if err := c.do(ctx, http.MethodGet, path, "Failed to fetch audit results", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetProjectHistory returns the scored audits of a project, oldest first
func (c *Client) GetProjectHistory(ctx context.Context, projectID string) ([]models.HistoryPoint, error) {
	if err := requireID("project_id", projectID); err != nil {
		return nil, err
	}

	var resp struct {
		ProjectID string                `json:"project_id"`
		History   []models.HistoryPoint `json:"history"`
	}
	path := "/projects/" + url.PathEscape(projectID) + "/history"
	if err := c.do(ctx, http.MethodGet, path, "Failed to load project history", nil, &resp); err != nil {
		return nil, err
	}
	return resp.History, nil
}

// GetProjectActions returns the recommendations of a project's latest audit
func (c *Client) GetProjectActions(ctx context.Context, projectID string) ([]models.Recommendation, error) {
	if err := requireID("project_id", projectID); err != nil {
		return nil, err
	}

	var resp struct {
		ProjectID string                  `json:"project_id"`
		Actions   []models.Recommendation `json:"actions"`
	}
	path := "/projects/" + url.PathEscape(projectID) + "/actions"
	if err := c.do(ctx, http.MethodGet, path, "Failed to load project actions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Actions, nil
}

// GetAdminUsersOverview fetches the per-user rollup. Privileged.
func (c *Client) GetAdminUsersOverview(ctx context.Context) ([]models.AdminUserOverview, error) {
	var resp struct {
		Items []models.AdminUserOverview `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/users-overview", "Failed to load admin overview", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

// Health checks that the audit backend answers
func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", "Audit service unhealthy", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return services.NewDomainError(services.ErrorTypeAPI, "Audit service unhealthy", nil).
			WithDetail("status", resp.Status)
	}
	return nil
}

// ReportURL formats the PDF report link for auditID. It makes no request;
// the credential is appended as a query parameter so the link works as a
// plain hyperlink.
func (c *Client) ReportURL(auditID string) string {
	link := c.baseURL + "/audits/" + url.PathEscape(auditID) + "/report.pdf"
	if token := c.session.Token(); token != "" {
		link += "?" + url.Values{"token": {token}}.Encode()
	}
	return link
}

// do executes one request against the audit backend and decodes a success
// body into out
func (c *Client) do(ctx context.Context, method, path, defaultMessage string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return services.WrapInternal("failed to marshal request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return services.WrapInternal("failed to create request", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.session.Attach(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("audit backend unreachable",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return services.WrapNetwork(services.ErrBackendUnreachable.Message, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return services.WrapNetwork("failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.session.OnRejected(resp.StatusCode)

		message := extractErrorMessage(respBody, defaultMessage)
		c.logger.Warn("audit backend request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("request_id", requestID),
			zap.String("detail", message))
		return services.NewAPIError(resp.StatusCode, message)
	}

	c.logger.Debug("audit backend request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)))

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return services.NewDomainError(services.ErrorTypeAPI, defaultMessage,
			fmt.Errorf("decode %s %s: %w", method, path, err)).WithDetail("status", resp.StatusCode)
	}
	return nil
}

// extractErrorMessage reads {detail: string} or {detail: [{msg: string}]}
func extractErrorMessage(body []byte, fallback string) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return fallback
	}

	var detail string
	if err := json.Unmarshal(envelope.Detail, &detail); err == nil {
		if detail = strings.TrimSpace(detail); detail != "" {
			return detail
		}
		return fallback
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil && len(items) > 0 {
		if msg := strings.TrimSpace(items[0].Msg); msg != "" {
			return msg
		}
	}

	return fallback
}

func requireID(field, value string) error {
	if err := utils.ValidateRequired(value, field); err != nil {
		return services.NewDomainError(services.ErrorTypeValidation, err.Error(), err).
			WithDetail(field, err.Error())
	}
	return nil
}
