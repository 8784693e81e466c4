package threadly

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeUnauthorized      = "session_unauthorized"
	TextCodeNoCredentials     = "credentials_not_found"
	TextCodeInvalidTransition = "invalid_session_transition"
	TextCodeInvalidPayload    = "invalid_auth_payload"
)

// ErrUnauthorized is returned by the transport layer when any endpoint answers
// 401. The SessionManager reacts by clearing credentials and redirecting.
var ErrUnauthorized = errors.New("session is not authorized", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrNoCredentials is returned by credential stores when nothing is persisted.
var ErrNoCredentials = errors.New("no stored credentials", errors.CategoryNotFound).
	WithTextCode(TextCodeNoCredentials).
	WithCode(errors.CodeNotFound)

// ErrInvalidTransition is returned when a requested session state change is
// not allowed by the lifecycle table.
var ErrInvalidTransition = errors.New("invalid session state transition", errors.CategoryConflict).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(errors.CodeConflict)

// ErrInvalidPayload is returned when a login or registration payload fails
// validation before any request is made.
var ErrInvalidPayload = errors.New("invalid auth payload", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidPayload).
	WithCode(errors.CodeBadRequest)

// IsUnauthorizedError will check for 401-class failures
func IsUnauthorizedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return strings.Contains(err.Error(), "not authorized") ||
		strings.Contains(err.Error(), "unauthorized")
}
