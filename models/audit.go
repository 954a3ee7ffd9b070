package models

// Audit is the status handle of one remote audit job.
// Only the remote service mutates Status.
type Audit struct {
	AuditID string      `json:"audit_id"`
	Status  AuditStatus `json:"status"`
}

// StartAuditRequest is the body of POST /audits/start
type StartAuditRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	URL       string `json:"url" validate:"required,http_url"`
}

// Issue is a single problem detected by the remote analysis engine
type Issue struct {
	Key           string   `json:"key"`
	Title         string   `json:"title"`
	Details       string   `json:"details"`
	Severity      Severity `json:"severity"`
	Impact        string   `json:"impact,omitempty"`
	Effort        string   `json:"effort,omitempty"`
	FixSuggestion string   `json:"fix_suggestion"`
	Confidence    float64  `json:"confidence,omitempty"`
	PriorityScore float64  `json:"priority_score"`
}

// Recommendation is an actionable item assigned to a remediation bucket
type Recommendation struct {
	Title         string  `json:"title"`
	Reason        string  `json:"reason"`
	Action        string  `json:"action"`
	Bucket        Bucket  `json:"bucket"`
	PriorityScore float64 `json:"priority_score,omitempty"`
}

// ChecklistEntry is one fixed technical test.
// Value may hold a not-measured marker, which overrides Passed for display.
type ChecklistEntry struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Target   string `json:"target"`
	Value    string `json:"value"`
	Passed   bool   `json:"passed"`
	Priority Bucket `json:"priority"`
}

// AuditResult is the immutable snapshot fetched once an audit completes
type AuditResult struct {
	AuditID         string             `json:"audit_id,omitempty"`
	ProjectID       string             `json:"project_id,omitempty"`
	URL             string             `json:"url,omitempty"`
	Status          AuditStatus        `json:"status,omitempty"`
	Score           int                `json:"score"`
	CreatedAt       *Timestamp         `json:"created_at,omitempty"`
	FinishedAt      *Timestamp         `json:"finished_at,omitempty"`
	Issues          []Issue            `json:"issues"`
	Recommendations []Recommendation   `json:"recommendations"`
	Checklist       []ChecklistEntry   `json:"checklist"`
	Metrics         map[string]float64 `json:"metrics"`
	Error           *string            `json:"error,omitempty"`
}
