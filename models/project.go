package models

// Default recurrence registered for every project created through the audit flow:
// Tuesdays (weekday 1, Monday = 0) at 08:00 UTC.
const (
	DefaultScheduleWeekday = 1
	DefaultScheduleHourUTC = 8
	DefaultScheduleMinute  = 0
)

// Project identifies a target site on the audit backend
type Project struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	Name        string     `json:"name"`
	BaseURL     string     `json:"base_url"`
	NotifyEmail *string    `json:"notify_email,omitempty"`
	CreatedAt   *Timestamp `json:"created_at,omitempty"`
}

// CreateProjectRequest is the body of POST /projects
type CreateProjectRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=100"`
	BaseURL     string  `json:"base_url" validate:"required,http_url"`
	NotifyEmail *string `json:"notify_email,omitempty" validate:"omitempty,email"`
}

// Schedule registers recurring re-checks of a URL. Owned by the remote
// scheduler once created.
type Schedule struct {
	ID        string     `json:"id"`
	ProjectID string     `json:"project_id"`
	UserID    string     `json:"user_id,omitempty"`
	URL       string     `json:"url"`
	Weekday   int        `json:"weekday"`
	HourUTC   int        `json:"hour_utc"`
	MinuteUTC int        `json:"minute_utc"`
	Enabled   bool       `json:"enabled"`
	LastRunAt *Timestamp `json:"last_run_at,omitempty"`
	CreatedAt *Timestamp `json:"created_at,omitempty"`
}

// CreateScheduleRequest is the body of POST /schedules
type CreateScheduleRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
	URL       string `json:"url" validate:"required,http_url"`
	Weekday   int    `json:"weekday" validate:"gte=0,lte=6"`
	HourUTC   int    `json:"hour_utc" validate:"gte=0,lte=23"`
	MinuteUTC int    `json:"minute_utc" validate:"gte=0,lte=59"`
	Enabled   bool   `json:"enabled"`
}

// NewDefaultScheduleRequest builds the weekly schedule used by the audit flow
func NewDefaultScheduleRequest(projectID, url string) CreateScheduleRequest {
	return CreateScheduleRequest{
		ProjectID: projectID,
		URL:       url,
		Weekday:   DefaultScheduleWeekday,
		HourUTC:   DefaultScheduleHourUTC,
		MinuteUTC: DefaultScheduleMinute,
		Enabled:   true,
	}
}

// HistoryPoint is one scored audit in a project's history
type HistoryPoint struct {
	Timestamp Timestamp `json:"timestamp"`
	Score     *int      `json:"score"`
}
