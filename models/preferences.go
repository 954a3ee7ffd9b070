package models

import "time"

// Theme is the UI colour scheme preference
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences holds the convenience values remembered between sessions.
// They are never authoritative and never include the credential.
type Preferences struct {
	Email       string    `json:"email" db:"email" validate:"omitempty,email"`
	ProjectName string    `json:"project_name" db:"project_name"`
	TargetURL   string    `json:"target_url" db:"target_url" validate:"omitempty,http_url"`
	NotifyEmail string    `json:"notify_email" db:"notify_email" validate:"omitempty,email"`
	Theme       Theme     `json:"theme" db:"theme" validate:"omitempty,oneof=light dark"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Preferences model
func (Preferences) TableName() string {
	return "preferences"
}

// DefaultPreferences returns the values used before anything was saved
func DefaultPreferences() *Preferences {
	return &Preferences{Theme: ThemeLight}
}
