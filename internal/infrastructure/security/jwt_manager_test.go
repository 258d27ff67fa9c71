package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
)

func newTestManager(t *testing.T) *TokenManager {
	t.Helper()
	ring, err := NewKeyring(SigningKey{ID: "k1", Secret: []byte("test-signing-secret")})
	require.NoError(t, err)
	return NewTokenManager(ring, "auth-service", 30*time.Second)
}

func TestTokenManager_SignParseRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, claims, err := m.Sign("user@example.com", models.ScopeAccess, 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotEmpty(t, claims.ID)

	parsed, err := m.Parse(token, models.ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", parsed.Subject)
	assert.Equal(t, models.ScopeAccess, parsed.Scope)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestTokenManager_ScopeMismatch(t *testing.T) {
	m := newTestManager(t)

	refresh, _, err := m.Sign("user@example.com", models.ScopeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = m.Parse(refresh, models.ScopeAccess)
	assert.ErrorIs(t, err, domainErrors.ErrWrongTokenType)

	access, _, err := m.Sign("user@example.com", models.ScopeAccess, time.Hour)
	require.NoError(t, err)

	_, err = m.Parse(access, models.ScopeRefresh)
	assert.ErrorIs(t, err, domainErrors.ErrWrongTokenType)
}

func TestTokenManager_Expiry(t *testing.T) {
	m := newTestManager(t)
	issuedAt := time.Now()
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.Sign("user@example.com", models.ScopeAccess, 15*time.Minute)
	require.NoError(t, err)

	// Just before expiry.
	m.now = func() time.Time { return issuedAt.Add(15*time.Minute - time.Second) }
	_, err = m.Parse(token, models.ScopeAccess)
	assert.NoError(t, err)

	// Past expiry but inside the leeway.
	m.now = func() time.Time { return issuedAt.Add(15*time.Minute + 20*time.Second) }
	_, err = m.Parse(token, models.ScopeAccess)
	assert.NoError(t, err, "clock-skew leeway must tolerate small drift")

	// Past expiry and past the leeway.
	m.now = func() time.Time { return issuedAt.Add(15*time.Minute + time.Minute) }
	_, err = m.Parse(token, models.ScopeAccess)
	assert.ErrorIs(t, err, domainErrors.ErrExpiredToken)
}

func TestTokenManager_MalformedInputs(t *testing.T) {
	m := newTestManager(t)

	cases := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt-at-all"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJ4In0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := m.Parse(tc.token, models.ScopeAccess)
			assert.ErrorIs(t, err, domainErrors.ErrMalformedToken)
		})
	}
}

func TestTokenManager_TamperedSignature(t *testing.T) {
	m := newTestManager(t)

	token, _, err := m.Sign("user@example.com", models.ScopeAccess, time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = m.Parse(tampered, models.ScopeAccess)
	assert.ErrorIs(t, err, domainErrors.ErrMalformedToken)
}

func TestTokenManager_WrongIssuer(t *testing.T) {
	ring, err := NewKeyring(SigningKey{ID: "k1", Secret: []byte("test-signing-secret")})
	require.NoError(t, err)

	other := NewTokenManager(ring, "some-other-service", 0)
	token, _, err := other.Sign("user@example.com", models.ScopeAccess, time.Hour)
	require.NoError(t, err)

	m := NewTokenManager(ring, "auth-service", 0)
	_, err = m.Parse(token, models.ScopeAccess)
	assert.ErrorIs(t, err, domainErrors.ErrMalformedToken)
}

func TestTokenManager_KeyRotation(t *testing.T) {
	oldKey := SigningKey{ID: "k1", Secret: []byte("old-secret")}
	newKey := SigningKey{ID: "k2", Secret: []byte("new-secret")}

	oldRing, err := NewKeyring(oldKey)
	require.NoError(t, err)
	oldManager := NewTokenManager(oldRing, "auth-service", 0)

	token, _, err := oldManager.Sign("user@example.com", models.ScopeAccess, time.Hour)
	require.NoError(t, err)

	// After rotation the old key rides along as a previous key and tokens it
	// signed keep verifying until they expire.
	rotatedRing, err := NewKeyring(newKey, oldKey)
	require.NoError(t, err)
	rotatedManager := NewTokenManager(rotatedRing, "auth-service", 0)

	parsed, err := rotatedManager.Parse(token, models.ScopeAccess)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", parsed.Subject)

	// Once the old key is dropped its tokens are rejected as malformed.
	prunedRing, err := NewKeyring(newKey)
	require.NoError(t, err)
	prunedManager := NewTokenManager(prunedRing, "auth-service", 0)

	_, err = prunedManager.Parse(token, models.ScopeAccess)
	assert.ErrorIs(t, err, domainErrors.ErrMalformedToken)
}

func TestHashToken(t *testing.T) {
	first := HashToken("some-refresh-token")
	second := HashToken("some-refresh-token")
	other := HashToken("another-refresh-token")

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, other)
	assert.Len(t, first, 64)
}
