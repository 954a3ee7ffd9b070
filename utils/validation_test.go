package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Site     string `json:"site" validate:"required,http_url"`
}

func TestValidateStruct(t *testing.T) {
	t.Run("valid struct", func(t *testing.T) {
		s := signupForm{Email: "john@example.com", Password: "longenough", Site: "https://example.com"}
		assert.NoError(t, ValidateStruct(&s))
	})

	tests := []struct {
		name      string
		form      signupForm
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing email",
			form:      signupForm{Password: "longenough", Site: "https://example.com"},
			wantField: "email",
			wantMsg:   "email is required",
		},
		{
			name:      "invalid email",
			form:      signupForm{Email: "not-an-email", Password: "longenough", Site: "https://example.com"},
			wantField: "email",
			wantMsg:   "email must be a valid email",
		},
		{
			name:      "short password",
			form:      signupForm{Email: "john@example.com", Password: "short", Site: "https://example.com"},
			wantField: "password",
			wantMsg:   "password must be at least 8 characters",
		},
		{
			name:      "non http url",
			form:      signupForm{Email: "john@example.com", Password: "longenough", Site: "ftp://example.com"},
			wantField: "site",
			wantMsg:   "site must be an http(s) URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.form)
			require.Error(t, err)
			assert.True(t, IsValidationError(err))

			fields := GetValidationFields(err)
			require.Contains(t, fields, tt.wantField)
			assert.Equal(t, tt.wantMsg, fields[tt.wantField])
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestValidationError_MultipleFields(t *testing.T) {
	err := ValidateStruct(&signupForm{})
	require.Error(t, err)

	fields := GetValidationFields(err)
	assert.Len(t, fields, 3)
	assert.Equal(t, "Validation failed", err.Error())
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"  https://example.com  ", true},
		{"example.com", false},
		{"ftp://example.com", false},
		{"https://", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHTTPURL(tt.input))
		})
	}
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("value", "audit_id"))

	err := ValidateRequired("   ", "audit_id")
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "audit_id is required", err.Error())
}

func TestGetValidationFields_NonValidationError(t *testing.T) {
	assert.Nil(t, GetValidationFields(assert.AnError))
	assert.False(t, IsValidationError(assert.AnError))
}
