package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/interfaces"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/rate"
)

// AuthService orchestrates registration, login, token refresh, logout, email
// confirmation and password changes. It is the only place where the internal
// error taxonomy is collapsed for the outside world: a missing user and a
// wrong password both leave as ErrInvalidCredentials.
type AuthService struct {
	users        repository.UserRepository
	passwords    interfaces.PasswordService
	tokens       *TokenService
	verification *VerificationService
	notifier     interfaces.NotificationService
	limiter      rate.Limiter
	rateCfg      config.RateLimitConfig
	logger       *zap.Logger

	// dummyHash is verified against when the account does not exist so the
	// login path costs the same either way.
	dummyHash string
}

// NewAuthService creates the auth gateway.
func NewAuthService(
	users repository.UserRepository,
	passwords interfaces.PasswordService,
	tokens *TokenService,
	verification *VerificationService,
	notifier interfaces.NotificationService,
	limiter rate.Limiter,
	rateCfg config.RateLimitConfig,
	logger *zap.Logger,
) (*AuthService, error) {
	dummyHash, err := passwords.HashPassword(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("failed to precompute dummy hash: %w", err)
	}
	return &AuthService{
		users:        users,
		passwords:    passwords,
		tokens:       tokens,
		verification: verification,
		notifier:     notifier,
		limiter:      limiter,
		rateCfg:      rateCfg,
		logger:       logger,
		dummyHash:    dummyHash,
	}, nil
}

// Register creates an unverified account and kicks off verification email
// delivery in the background. Delivery failure never rolls the account back.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	email = models.NormalizeEmail(email)

	passwordHash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Avatar:       gravatarURL(email),
		Confirmed:    false,
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.sendVerification(user)
	return user, nil
}

// Login authenticates credentials and issues a token pair. The limiter gates
// the attempt first; unknown email and wrong password are indistinguishable
// to the caller. Unverified accounts do receive tokens; verified-only routes
// enforce the flag separately.
func (s *AuthService) Login(ctx context.Context, email, password, clientIP string) (models.TokenPair, error) {
	email = models.NormalizeEmail(email)

	key := fmt.Sprintf("login:%s:%s", email, clientIP)
	decision, err := s.limiter.Allow(ctx, key, s.rateCfg.Login)
	if err != nil {
		s.logger.Error("rate limiter check failed on login", zap.Error(err))
	}
	if !decision.Allowed {
		return models.TokenPair{}, domainErrors.NewRateLimitError(decision.RetryAfter)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			// Still pay the hash verification cost.
			_, _ = s.passwords.CheckPasswordHash(password, s.dummyHash)
			return models.TokenPair{}, domainErrors.ErrInvalidCredentials
		}
		return models.TokenPair{}, err
	}

	match, err := s.passwords.CheckPasswordHash(password, user.PasswordHash)
	if err != nil {
		return models.TokenPair{}, err
	}
	if !match {
		return models.TokenPair{}, domainErrors.ErrInvalidCredentials
	}

	return s.tokens.Issue(ctx, email)
}

// Authenticate extracts the principal from an access token. This is the
// contract every protected handler consumes; it never touches the store.
func (s *AuthService) Authenticate(accessToken string) (models.Principal, error) {
	return s.tokens.VerifyAccess(accessToken)
}

// RequireVerified checks the principal's account against the store and fails
// with ErrEmailNotVerified until the confirmation token has been consumed.
// The lookup is deliberate: confirmation takes effect immediately, without
// waiting for a new access token.
func (s *AuthService) RequireVerified(ctx context.Context, principal models.Principal) error {
	user, err := s.users.FindByEmail(ctx, principal.Email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return domainErrors.ErrInvalidCredentials
		}
		return err
	}
	if !user.Confirmed {
		return domainErrors.ErrEmailNotVerified
	}
	return nil
}

// Refresh rotates a refresh token into a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	return s.tokens.Refresh(ctx, refreshToken)
}

// Logout revokes the user's refresh token.
func (s *AuthService) Logout(ctx context.Context, email string) error {
	return s.tokens.Revoke(ctx, email)
}

// ChangeSecret rehashes and persists a new password and revokes the current
// refresh token, forcing re-login everywhere.
func (s *AuthService) ChangeSecret(ctx context.Context, email, newPassword string) error {
	email = models.NormalizeEmail(email)

	passwordHash, err := s.passwords.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePasswordHash(ctx, email, passwordHash); err != nil {
		return err
	}
	return s.tokens.Revoke(ctx, email)
}

// ConfirmEmail consumes a verification token, marking the account verified.
func (s *AuthService) ConfirmEmail(ctx context.Context, token string) (string, error) {
	return s.verification.Consume(ctx, token)
}

// RequestVerification re-sends a confirmation email for an unverified
// account. Unknown and already-confirmed emails are ignored silently so the
// endpoint cannot be used to probe which accounts exist.
func (s *AuthService) RequestVerification(ctx context.Context, email string) error {
	email = models.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil
		}
		return err
	}
	if user.Confirmed {
		return nil
	}

	s.sendVerification(user)
	return nil
}

// Me returns the account for a principal.
func (s *AuthService) Me(ctx context.Context, principal models.Principal) (*models.User, error) {
	return s.users.FindByEmail(ctx, principal.Email)
}

// sendVerification issues a token and hands it to the notification sender in
// the background, detached from the request's lifetime.
func (s *AuthService) sendVerification(user *models.User) {
	token, err := s.verification.Issue(user.Email)
	if err != nil {
		s.logger.Error("failed to issue verification token",
			zap.String("email", user.Email), zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.notifier.SendVerificationEmail(ctx, user.Email, user.Username, token); err != nil {
			s.logger.Error("failed to send verification email",
				zap.String("email", user.Email), zap.Error(err))
		}
	}()
}

// gravatarURL derives the avatar reference for an email.
func gravatarURL(email string) string {
	sum := md5.Sum([]byte(models.NormalizeEmail(email)))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon", hex.EncodeToString(sum[:]))
}
