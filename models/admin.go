package models

// PageSummary aggregates the audits of one URL for a user
type PageSummary struct {
	URL         string       `json:"url"`
	AuditsCount int          `json:"audits_count"`
	LastStatus  *AuditStatus `json:"last_status,omitempty"`
	LastScore   *int         `json:"last_score"`
	LastAuditAt *Timestamp   `json:"last_audit_at,omitempty"`
}

// AdminUserOverview is a per-user rollup derived by the audit backend
type AdminUserOverview struct {
	UserID        string        `json:"user_id"`
	Email         string        `json:"email"`
	CreatedAt     *Timestamp    `json:"created_at,omitempty"`
	ProjectsCount int           `json:"projects_count"`
	AuditsCount   int           `json:"audits_count"`
	AverageScore  *float64      `json:"average_score"`
	LastAuditAt   *Timestamp    `json:"last_audit_at"`
	PagesChecked  []PageSummary `json:"pages_checked"`
}
