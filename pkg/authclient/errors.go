package authclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Category classifies an AuthError for recovery decisions. The set is fixed;
// callers switch on it instead of sniffing message text.
type Category string

// Error categories.
const (
	CategoryNetwork            Category = "network"
	CategoryTimeout            Category = "timeout"
	CategoryInvalidCredentials Category = "invalid_credentials"
	CategoryMissing2FA         Category = "missing_2fa"
	CategoryPermissionDenied   Category = "permission_denied"
	CategoryServerError        Category = "server_error"
	CategoryValidation         Category = "validation"
	CategoryInvalidResponse    Category = "invalid_response"
	CategoryUnknown            Category = "unknown"
)

// Severity indicates how loudly the application should surface an AuthError.
type Severity string

// Severities.
const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// AuthError is the only error type produced by this package. It carries a
// machine-readable code and category so callers never parse message text.
type AuthError struct {
	Code       string
	Message    string
	HTTPStatus int
	Category   Category
	Retryable  bool
	Severity   Severity
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Category, e.HTTPStatus)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Category)
}

// categorizeTransport maps a transport-level failure (no HTTP response) onto
// the error taxonomy.
func categorizeTransport(err error) *AuthError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()):
		return &AuthError{
			Code:      "timeout",
			Message:   "request timed out",
			Category:  CategoryTimeout,
			Retryable: true,
			Severity:  SeverityWarning,
		}
	default:
		return &AuthError{
			Code:      "network_error",
			Message:   "network request failed",
			Category:  CategoryNetwork,
			Retryable: true,
			Severity:  SeverityWarning,
		}
	}
}

// categorizeStatus maps an HTTP status plus the server's machine-readable
// error code onto the taxonomy. The login flag selects the login-specific
// meaning of 401; outside login a 401 means the session expired.
func categorizeStatus(status int, serverCode string, serverMessage string, login bool) *AuthError {
	message := serverMessage
	if message == "" {
		message = "request failed"
	}

	base := &AuthError{
		Code:       serverCode,
		Message:    message,
		HTTPStatus: status,
	}

	switch {
	case status == 401 && login:
		base.Code = "invalid_credentials"
		base.Message = "invalid email or password"
		base.Category = CategoryInvalidCredentials
		base.Retryable = false
		base.Severity = SeverityWarning

	case status == 401:
		base.Code = "session_expired"
		base.Message = "session expired, please log in again"
		base.Category = CategoryInvalidCredentials
		base.Retryable = false
		base.Severity = SeverityWarning

	case status == 422 && serverCode == "totp_required":
		// The server distinguishes "supply a second factor" from a generic
		// validation failure with a dedicated code, never message text.
		base.Code = "totp_required"
		base.Message = "a two-factor authentication code is required"
		base.Category = CategoryMissing2FA
		base.Retryable = true
		base.Severity = SeverityWarning

	case status == 403:
		base.Category = CategoryPermissionDenied
		base.Retryable = false
		base.Severity = SeverityError

	case status >= 500:
		base.Category = CategoryServerError
		base.Retryable = true
		base.Severity = SeverityError

	case status >= 400:
		base.Category = CategoryValidation
		base.Retryable = true
		base.Severity = SeverityWarning

	default:
		base.Category = CategoryUnknown
		base.Retryable = true
		base.Severity = SeverityError
	}

	if base.Code == "" {
		base.Code = string(base.Category)
	}

	return base
}

// invalidResponseError is returned when the server answered successfully but
// the body is missing required fields. The session fails closed.
func invalidResponseError(message string) *AuthError {
	return &AuthError{
		Code:      "invalid_response",
		Message:   message,
		Category:  CategoryInvalidResponse,
		Retryable: false,
		Severity:  SeverityCritical,
	}
}
