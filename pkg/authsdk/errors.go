package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/parkmead/sprintdeck/pkg/httpx"
)

// Error codes shared between server responses and the SDK client.
const (
	ErrorCodeInvalidRequest    = "invalid_request"
	ErrorCodeInvalidCredential = "invalid_credentials"
	ErrorCodeInvalidSession    = "invalid_session"
	ErrorCodeUserNotFound      = "user_not_found"
	ErrorCodeUsernameTaken     = "username_taken"
	ErrorCodeInvalidCode       = "invalid_code"
	ErrorCodeNotEnrolled       = "two_factor_not_enrolled"
	ErrorCodeAlreadyEnabled    = "two_factor_already_enabled"
	ErrorCodeServerError       = "server_error"
)

// APIError is the error envelope used by every JSON endpoint. It implements
// the error interface so the SDK client can return decoded server errors
// directly, and the server uses WriteError to emit them.
type APIError struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	// Code is the machine-readable error code (e.g., "invalid_session")
	Code string `json:"error"`

	// Description is a human-readable description of the error
	Description string `json:"error_description"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// WriteError writes this APIError to an HTTP response writer.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":             e.Code,
		"error_description": e.Description,
	})
}

var (
	// ErrInvalidRequest is returned when the request body is malformed or
	// missing required fields.
	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	// ErrInvalidCredentials is returned on a failed username/password check.
	// Unknown usernames and wrong passwords deliberately share this error.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredential,
		Description: "invalid username or password",
	}

	// ErrInvalidSession is returned when the session cookie is missing,
	// unknown or expired.
	ErrInvalidSession = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidSession,
		Description: "the session is missing, invalid or expired",
	}

	// ErrUserNotFound is returned when a session resolves to a user record
	// that no longer exists.
	ErrUserNotFound = &APIError{
		StatusCode:  http.StatusNotFound,
		Code:        ErrorCodeUserNotFound,
		Description: "the session's user no longer exists",
	}

	// ErrUsernameTaken is returned when registering a username that is
	// already in use.
	ErrUsernameTaken = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeUsernameTaken,
		Description: "username is already taken",
	}

	// ErrInvalidCode is returned when a submitted TOTP code does not match.
	ErrInvalidCode = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidCode,
		Description: "invalid verification code",
	}

	// ErrNotEnrolled is returned when a 2FA operation requires an enrolled
	// secret that the user does not have.
	ErrNotEnrolled = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeNotEnrolled,
		Description: "two-factor authentication is not set up for this user",
	}

	// ErrAlreadyEnabled is returned when enrolling while 2FA is already
	// active for the user.
	ErrAlreadyEnabled = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeAlreadyEnabled,
		Description: "two-factor authentication is already enabled for this user",
	}

	// ErrServerError is returned for unexpected internal failures.
	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
