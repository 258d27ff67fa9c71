package errors

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors of the auth core. Services return these (possibly wrapped);
// the HTTP layer maps them to a deliberately small external set so callers
// cannot distinguish "no such user" from "wrong password".
var (
	ErrInternal           = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("account already exists")
	ErrUserNotFound       = errors.New("user not found")

	ErrExpiredToken     = errors.New("token has expired")
	ErrMalformedToken   = errors.New("token is malformed")
	ErrWrongTokenType   = errors.New("wrong token type")
	ErrRevokedToken     = errors.New("token has been revoked")
	ErrTokenAlreadyUsed = errors.New("token already used")

	ErrEmailNotVerified = errors.New("email not verified")
	ErrRateLimited      = errors.New("too many requests")
)

// RateLimitError wraps ErrRateLimited with the remaining window time so the
// handler can emit a Retry-After hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("too many requests, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// NewRateLimitError builds a RateLimitError with the given retry hint.
func NewRateLimitError(retryAfter time.Duration) *RateLimitError {
	return &RateLimitError{RetryAfter: retryAfter}
}

// AppError carries the HTTP status and stable API code for an error crossing
// the handler boundary.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
	Code       string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// NewAppError creates a new application error.
func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

// IsUnauthorized reports whether err belongs to the credentials/token family
// that must surface as 401.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrWrongTokenType) ||
		errors.Is(err, ErrRevokedToken) ||
		errors.Is(err, ErrTokenAlreadyUsed)
}

// IsConflict reports whether err is a uniqueness conflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

// IsNotFound reports whether err is a missing-resource error. The login path
// never returns this externally; it is merged into ErrInvalidCredentials
// before leaving the service layer.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsForbidden reports whether err must surface as 403.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrEmailNotVerified)
}

// IsRateLimited reports whether err is a rate-limit denial.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// RetryAfter extracts the retry hint from a rate-limit error, zero if absent.
func RetryAfter(err error) time.Duration {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}
	return 0
}
