package models

// Credentials is the body of POST /auth/register and POST /auth/login
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// TokenResponse is returned by a successful login
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AnalysisRequest is what a user submits to run one audit end to end
type AnalysisRequest struct {
	ProjectName string  `json:"project_name" validate:"required,min=2,max=100"`
	URL         string  `json:"url" validate:"required,http_url"`
	NotifyEmail *string `json:"notify_email,omitempty" validate:"omitempty,email"`
}
