package errors

import "fmt"

// AppError represents a custom application error
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Is lets wrapped copies match sentinel AppErrors by code
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	return ok && t.Code == e.Code
}

// Common error codes
const (
	ErrCodeInvalidToken       = "INVALID_TOKEN"
	ErrCodeTokenExpired       = "TOKEN_EXPIRED"
	ErrCodeMissingCredentials = "MISSING_CREDENTIALS"
	ErrCodeNoRefreshToken     = "NO_REFRESH_TOKEN"
	ErrCodeRefreshFailed      = "REFRESH_FAILED"
	ErrCodeInvalidSession     = "INVALID_SESSION"
	ErrCodeNetworkError       = "NETWORK_ERROR"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// NewAppError creates a new application error
func NewAppError(code, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Common errors
var (
	ErrInvalidToken       = NewAppError(ErrCodeInvalidToken, "Invalid token", 401)
	ErrTokenExpired       = NewAppError(ErrCodeTokenExpired, "Token expired", 401)
	ErrMissingCredentials = NewAppError(ErrCodeMissingCredentials, "Missing credentials in auth response", 401)
	ErrNoRefreshToken     = NewAppError(ErrCodeNoRefreshToken, "No refresh token available in any storage", 401)
	ErrRefreshFailed      = NewAppError(ErrCodeRefreshFailed, "Failed to refresh token", 401)
	ErrInvalidSession     = NewAppError(ErrCodeInvalidSession, "Session is invalid", 401)
	ErrInvalidCredentials = NewAppError(ErrCodeInvalidCredentials, "Invalid email or password", 401)
	ErrUnauthorized       = NewAppError(ErrCodeUnauthorized, "Unauthorized", 401)
	ErrForbidden          = NewAppError(ErrCodeForbidden, "Forbidden", 403)
	ErrNotFound           = NewAppError(ErrCodeNotFound, "Not found", 404)
	ErrRateLimitExceeded  = NewAppError(ErrCodeRateLimitExceeded, "Too many login attempts", 429)
)
