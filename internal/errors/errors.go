package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials covers unknown usernames, wrong passwords and
	// suspended accounts alike so callers cannot enumerate users.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAccountSuspended is returned when an account with quota left has been
	// switched off. Clients see it as ErrInvalidCredentials.
	ErrAccountSuspended = errors.New("account suspended")
	// ErrQuotaExhausted is returned when an account has no remaining uses.
	ErrQuotaExhausted = errors.New("no remaining uses in this account")
	// ErrClassificationFailure is returned when the classifier errors or answers with an unknown label.
	ErrClassificationFailure = errors.New("emotion classification failed")
	// ErrAssetMissing is returned when a display asset cannot be loaded.
	ErrAssetMissing = errors.New("asset not found")
	// ErrAccountNotFound is returned when an account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrSessionNotFound is returned when a session token does not resolve to a live session.
	ErrSessionNotFound = errors.New("session not found or expired")
	// ErrEmptyText is returned when a classification request carries no text.
	ErrEmptyText = errors.New("text must not be empty")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Wrapped errors are
// matched, but only the sentinel message reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountSuspended):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrQuotaExhausted):
		return NewHTTPError(http.StatusForbidden, ErrQuotaExhausted.Error(), "QUOTA_EXHAUSTED")
	case errors.Is(err, ErrClassificationFailure):
		return NewHTTPError(http.StatusBadGateway, ErrClassificationFailure.Error(), "CLASSIFICATION_FAILED")
	case errors.Is(err, ErrSessionNotFound):
		return NewHTTPError(http.StatusUnauthorized, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
	case errors.Is(err, ErrAccountNotFound):
		return NewHTTPError(http.StatusNotFound, ErrAccountNotFound.Error(), "ACCOUNT_NOT_FOUND")
	case errors.Is(err, ErrEmptyText):
		return NewHTTPError(http.StatusBadRequest, ErrEmptyText.Error(), "EMPTY_TEXT")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
