package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/security"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Issuer:               "auth-service",
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      168 * time.Hour,
		VerificationTokenTTL: 24 * time.Hour,
	}
}

func newTestTokenManager(t *testing.T) *security.TokenManager {
	t.Helper()
	ring, err := security.NewKeyring(security.SigningKey{ID: "k1", Secret: []byte("test-secret")})
	require.NoError(t, err)
	return security.NewTokenManager(ring, "auth-service", 0)
}

func seedUser(t *testing.T, store *fakeUserStore, email string) {
	t.Helper()
	err := store.Create(context.Background(), &models.User{
		ID:       uuid.New(),
		Username: "tester",
		Email:    email,
	})
	require.NoError(t, err)
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	svc := NewTokenService(newTestTokenManager(t), store, testJWTConfig(), zap.NewNop())

	pair, err := svc.Issue(context.Background(), "User@Example.COM")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.Equal(t, int((15 * time.Minute).Seconds()), pair.ExpiresIn)

	principal, err := svc.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", principal.Email)
	assert.NotEmpty(t, principal.TokenID)

	user, err := store.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, security.HashToken(pair.RefreshToken), user.RefreshTokenHash)
}

func TestTokenService_VerifyAccess_RejectsRefreshToken(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	svc := NewTokenService(newTestTokenManager(t), store, testJWTConfig(), zap.NewNop())

	pair, err := svc.Issue(context.Background(), "user@example.com")
	require.NoError(t, err)

	_, err = svc.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, domainErrors.ErrWrongTokenType)
}

func TestTokenService_Refresh_RotatesAndRejectsReplay(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	svc := NewTokenService(newTestTokenManager(t), store, testJWTConfig(), zap.NewNop())
	ctx := context.Background()

	pair, err := svc.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	principal, err := svc.VerifyAccess(rotated.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", principal.Email)

	// The consumed token is gone even though it has lifetime left.
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domainErrors.ErrRevokedToken)

	// The rotated-in token works exactly once more.
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_Refresh_WrongScopeAndExpiry(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	manager := newTestTokenManager(t)
	svc := NewTokenService(manager, store, testJWTConfig(), zap.NewNop())
	ctx := context.Background()

	pair, err := svc.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, domainErrors.ErrWrongTokenType)

	expired, _, err := manager.Sign("user@example.com", models.ScopeRefresh, -time.Minute)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, expired)
	assert.ErrorIs(t, err, domainErrors.ErrExpiredToken)
}

func TestTokenService_Refresh_UnknownAccount(t *testing.T) {
	store := newFakeUserStore()
	manager := newTestTokenManager(t)
	svc := NewTokenService(manager, store, testJWTConfig(), zap.NewNop())

	// A well-formed token for an account that no longer exists.
	orphan, _, err := manager.Sign("gone@example.com", models.ScopeRefresh, time.Hour)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), orphan)
	assert.ErrorIs(t, err, domainErrors.ErrRevokedToken)
}

func TestTokenService_Issue_InvalidatesPriorSession(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	svc := NewTokenService(newTestTokenManager(t), store, testJWTConfig(), zap.NewNop())
	ctx := context.Background()

	first, err := svc.Issue(ctx, "user@example.com")
	require.NoError(t, err)
	second, err := svc.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, domainErrors.ErrRevokedToken)

	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.NoError(t, err)
}

func TestTokenService_Revoke(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	svc := NewTokenService(newTestTokenManager(t), store, testJWTConfig(), zap.NewNop())
	ctx := context.Background()

	pair, err := svc.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, "user@example.com"))

	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, domainErrors.ErrRevokedToken)

	// Access tokens stay valid until expiry; revocation only kills refresh.
	_, err = svc.VerifyAccess(pair.AccessToken)
	assert.NoError(t, err)
}

func TestTokenService_Refresh_ConcurrentSingleWinner(t *testing.T) {
	store := newFakeUserStore()
	seedUser(t, store, "user@example.com")
	svc := NewTokenService(newTestTokenManager(t), store, testJWTConfig(), zap.NewNop())
	ctx := context.Background()

	pair, err := svc.Issue(ctx, "user@example.com")
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Refresh(ctx, pair.RefreshToken)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var winners, losers int
	for err := range errs {
		switch {
		case err == nil:
			winners++
		case assert.ErrorIs(t, err, domainErrors.ErrRevokedToken):
			losers++
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent refresh may win")
	assert.Equal(t, attempts-1, losers)
}
