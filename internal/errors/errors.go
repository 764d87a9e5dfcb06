package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotActive is returned when the account status is not active.
	ErrAccountNotActive = errors.New("account not active")
	// ErrTooManyLoginAttempts is returned when the login attempt window is exhausted.
	ErrTooManyLoginAttempts = errors.New("too many login attempts, please try again later")
	// ErrInvalidToken is returned when a bearer token fails validation.
	ErrInvalidToken = errors.New("could not validate credentials")
	// ErrInvalidGoogleToken is returned when Google ID token verification fails.
	ErrInvalidGoogleToken = errors.New("invalid Google OAuth token")
	// ErrEmailAlreadyInUse is returned when signing up with a taken email.
	ErrEmailAlreadyInUse = errors.New("email already registered")
	// ErrEmailNotRegistered is returned when requesting a reset for an unknown email.
	ErrEmailNotRegistered = errors.New("no account with this email")
	// ErrWeakPassword is returned when a password fails the complexity rule.
	ErrWeakPassword = errors.New("password must be at least 8 characters with upper, lower, digit and special character")
	// ErrInvalidResetToken is returned for any password reset confirmation failure.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrUserNotFound is returned when a user lookup by id fails.
	ErrUserNotFound = errors.New("user not found")
)

// ErrorResponse is the JSON body for error replies.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// FieldError describes one input validation violation.
type FieldError struct {
	Location string `json:"location"`
	Message  string `json:"message"`
	Kind     string `json:"kind"`
}

// ValidationResponse is the 422 body listing input-shape violations.
type ValidationResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors"`
}

// NewErrorResponse builds the standard error body.
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Status: "error", Message: message}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrAccountNotActive),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidGoogleToken):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrTooManyLoginAttempts):
		return NewHTTPError(http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrEmailAlreadyInUse),
		errors.Is(err, ErrEmailNotRegistered),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrInvalidResetToken):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
