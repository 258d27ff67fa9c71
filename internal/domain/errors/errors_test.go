package errors

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	unauthorized := []error{
		ErrInvalidCredentials,
		ErrExpiredToken,
		ErrMalformedToken,
		ErrWrongTokenType,
		ErrRevokedToken,
		ErrTokenAlreadyUsed,
	}
	for _, err := range unauthorized {
		assert.True(t, IsUnauthorized(err), err.Error())
		assert.True(t, IsUnauthorized(fmt.Errorf("wrapped: %w", err)), "wrapping must not hide the class")
	}

	assert.False(t, IsUnauthorized(ErrEmailExists))
	assert.True(t, IsConflict(ErrEmailExists))
	assert.True(t, IsNotFound(ErrUserNotFound))
	assert.True(t, IsForbidden(ErrEmailNotVerified))
	assert.False(t, IsUnauthorized(ErrEmailNotVerified))
	assert.False(t, IsRateLimited(ErrInternal))
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError(42 * time.Second)

	assert.True(t, IsRateLimited(err))
	assert.Equal(t, 42*time.Second, RetryAfter(err))
	assert.Equal(t, 42*time.Second, RetryAfter(fmt.Errorf("login: %w", err)))

	// The bare sentinel carries no hint.
	assert.Equal(t, time.Duration(0), RetryAfter(ErrRateLimited))
	assert.Equal(t, time.Duration(0), RetryAfter(ErrInternal))
}

func TestAppError(t *testing.T) {
	inner := ErrEmailExists
	err := NewAppError(inner, "signup failed", 409, "conflict")

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "signup failed")
	assert.True(t, IsConflict(err))
}
