package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/security"
)

// TokenService issues, verifies and rotates access/refresh token pairs. A
// user has at most one valid refresh token at a time: issuing overwrites the
// stored hash, refreshing swaps it atomically, revoking clears it. Access
// tokens are verified purely by signature and expiry, never against the
// store.
type TokenService struct {
	tokens *security.TokenManager
	users  repository.UserRepository
	cfg    config.JWTConfig
	logger *zap.Logger
}

// NewTokenService creates a new TokenService.
func NewTokenService(tokens *security.TokenManager, users repository.UserRepository, cfg config.JWTConfig, logger *zap.Logger) *TokenService {
	return &TokenService{
		tokens: tokens,
		users:  users,
		cfg:    cfg,
		logger: logger,
	}
}

// Issue creates a fresh token pair for the user and records the refresh
// token's hash as the only valid one, implicitly revoking any prior session.
func (s *TokenService) Issue(ctx context.Context, email string) (models.TokenPair, error) {
	email = models.NormalizeEmail(email)

	accessToken, _, err := s.tokens.Sign(email, models.ScopeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	refreshToken, _, err := s.tokens.Sign(email, models.ScopeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := s.users.SetRefreshTokenHash(ctx, email, security.HashToken(refreshToken)); err != nil {
		return models.TokenPair{}, fmt.Errorf("failed to store refresh token hash: %w", err)
	}

	return s.pair(accessToken, refreshToken), nil
}

// VerifyAccess checks signature, expiry and scope of an access token and
// extracts the principal. No store lookup happens here.
func (s *TokenService) VerifyAccess(tokenString string) (models.Principal, error) {
	claims, err := s.tokens.Parse(tokenString, models.ScopeAccess)
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{Email: claims.Subject, TokenID: claims.ID}, nil
}

// Refresh exchanges a valid refresh token for a new pair, rotating the stored
// hash in a single compare-and-swap. A replayed or already-rotated token
// loses the swap and fails with ErrRevokedToken; of two concurrent calls with
// the same token exactly one wins.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken, models.ScopeRefresh)
	if err != nil {
		return models.TokenPair{}, err
	}
	email := claims.Subject

	newAccess, _, err := s.tokens.Sign(email, models.ScopeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return models.TokenPair{}, err
	}
	newRefresh, _, err := s.tokens.Sign(email, models.ScopeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return models.TokenPair{}, err
	}

	oldHash := security.HashToken(refreshToken)
	newHash := security.HashToken(newRefresh)

	if err := s.users.SwapRefreshTokenHash(ctx, email, oldHash, newHash); err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			// The account vanished since the token was minted; report it the
			// same as a rotated-away token.
			return models.TokenPair{}, domainErrors.ErrRevokedToken
		}
		if errors.Is(err, domainErrors.ErrRevokedToken) {
			s.logger.Warn("refresh token replay rejected", zap.String("email", email))
			return models.TokenPair{}, domainErrors.ErrRevokedToken
		}
		return models.TokenPair{}, fmt.Errorf("failed to rotate refresh token: %w", err)
	}

	return s.pair(newAccess, newRefresh), nil
}

// Revoke clears the user's stored refresh token hash, forcing
// re-authentication once the current access token expires.
func (s *TokenService) Revoke(ctx context.Context, email string) error {
	return s.users.SetRefreshTokenHash(ctx, models.NormalizeEmail(email), "")
}

func (s *TokenService) pair(accessToken, refreshToken string) models.TokenPair {
	return models.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.cfg.AccessTokenTTL.Seconds()),
	}
}
