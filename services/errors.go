package services

import (
	"errors"
	"fmt"

	"github.com/upb/seo-audit-console/utils"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeAPI          ErrorType = "api"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeTimeout      ErrorType = "timeout"
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypeAuditFailed  ErrorType = "audit_failed"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
)

// AuditFailedMessage is shown whenever the remote job reports failure
const AuditFailedMessage = "Audit failed. Please check the URL and try again."

// DomainError represents a structured error with additional context
type DomainError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Err        error
	Details    map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WithDetail adds a detail to the error
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Details: make(map[string]interface{}),
	}
}

// NewAPIError creates the error for a non-success response. A 401 yields an
// unauthorized error, which is also an API error.
func NewAPIError(statusCode int, message string) *DomainError {
	errType := ErrorTypeAPI
	if statusCode == 401 {
		errType = ErrorTypeUnauthorized
	}
	return &DomainError{
		Type:       errType,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

// Domain error variables

var (
	ErrInvalidInput = NewDomainError(ErrorTypeValidation, "invalid input", nil)

	ErrAuthRejected  = NewDomainError(ErrorTypeUnauthorized, "authentication required", nil)
	ErrNotPrivileged = NewDomainError(ErrorTypeForbidden, "admin access required", nil)

	ErrPollTimeout        = NewDomainError(ErrorTypeTimeout, "audit did not finish in time", nil)
	ErrAuditFailed        = NewDomainError(ErrorTypeAuditFailed, AuditFailedMessage, nil)
	ErrAnalysisInFlight   = NewDomainError(ErrorTypeConflict, "an analysis is already running", nil)
	ErrBackendUnreachable = NewDomainError(ErrorTypeNetwork, "audit service unreachable", nil)
)

// Error type checking helper functions

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return GetErrorType(err) == ErrorTypeValidation
}

// IsAPIError checks if an error came from a non-success response,
// including authentication rejections
func IsAPIError(err error) bool {
	t := GetErrorType(err)
	return t == ErrorTypeAPI || t == ErrorTypeUnauthorized
}

// IsAuthRejected checks if the remote service rejected the credential
func IsAuthRejected(err error) bool {
	return GetErrorType(err) == ErrorTypeUnauthorized
}

// IsForbiddenError checks if an error is a forbidden error
func IsForbiddenError(err error) bool {
	return GetErrorType(err) == ErrorTypeForbidden
}

// IsTimeoutError checks if polling exceeded its wall-clock bound
func IsTimeoutError(err error) bool {
	return GetErrorType(err) == ErrorTypeTimeout
}

// IsNetworkError checks if no response was received
func IsNetworkError(err error) bool {
	return GetErrorType(err) == ErrorTypeNetwork
}

// IsAuditFailed checks if the remote job reached the failed state
func IsAuditFailed(err error) bool {
	return GetErrorType(err) == ErrorTypeAuditFailed
}

// IsConflictError checks if an error is a conflict error
func IsConflictError(err error) bool {
	return GetErrorType(err) == ErrorTypeConflict
}

// IsInternalError checks if an error is an internal error
func IsInternalError(err error) bool {
	return GetErrorType(err) == ErrorTypeInternal
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetStatusCode returns the HTTP status carried by an API error, or 0
func GetStatusCode(err error) int {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.StatusCode
	}
	return 0
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// UserMessage returns the human-readable message for display
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}

// WrapError wraps an error with additional context
func WrapError(errType ErrorType, message string, err error) error {
	return NewDomainError(errType, message, err)
}

// WrapInternal wraps an error as an internal error
func WrapInternal(message string, err error) error {
	return NewDomainError(ErrorTypeInternal, message, err)
}

// WrapNetwork wraps a transport failure
func WrapNetwork(message string, err error) error {
	return NewDomainError(ErrorTypeNetwork, message, err)
}

// ValidateInput validates v and returns a validation DomainError carrying
// one detail per failing field
func ValidateInput(v interface{}) error {
	err := utils.ValidateStruct(v)
	if err == nil {
		return nil
	}
	domainErr := NewDomainError(ErrorTypeValidation, err.Error(), err)
	for field, msg := range utils.GetValidationFields(err) {
		domainErr.WithDetail(field, msg)
	}
	return domainErr
}
