package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
	"github.com/Petrenko-Anton/HW-13-REST/internal/infrastructure/security"
)

// VerificationService issues single-use email-verification tokens and flips
// the account's confirmed flag when one is consumed. A token's jti is burned
// in the used-token store on first consumption, so replaying it fails no
// matter how much lifetime it has left.
type VerificationService struct {
	tokens *security.TokenManager
	users  repository.UserRepository
	used   repository.UsedTokenStore
	cfg    config.JWTConfig
	logger *zap.Logger
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(tokens *security.TokenManager, users repository.UserRepository, used repository.UsedTokenStore, cfg config.JWTConfig, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		tokens: tokens,
		users:  users,
		used:   used,
		cfg:    cfg,
		logger: logger,
	}
}

// Issue signs a verification token for the email.
func (s *VerificationService) Issue(email string) (string, error) {
	token, _, err := s.tokens.Sign(models.NormalizeEmail(email), models.ScopeVerification, s.cfg.VerificationTokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue verification token: %w", err)
	}
	return token, nil
}

// Consume validates a verification token, burns its jti and marks the account
// verified. The second consumption of the same token returns
// ErrTokenAlreadyUsed and leaves the account untouched.
func (s *VerificationService) Consume(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.tokens.Parse(tokenString, models.ScopeVerification)
	if err != nil {
		return "", err
	}

	// Burn the jti before mutating the account so two concurrent consumers
	// cannot both pass. The marker outlives the token's remaining TTL, after
	// which expiry alone rejects it.
	ttl := time.Until(claims.ExpiresAt.Time) + time.Minute
	fresh, err := s.used.MarkUsed(ctx, claims.ID, ttl)
	if err != nil {
		return "", fmt.Errorf("failed to mark verification token used: %w", err)
	}
	if !fresh {
		return "", domainErrors.ErrTokenAlreadyUsed
	}

	if err := s.users.ConfirmEmail(ctx, claims.Subject); err != nil {
		s.logger.Error("failed to confirm email after consuming token",
			zap.String("email", claims.Subject), zap.Error(err))
		return "", err
	}

	return claims.Subject, nil
}
