package repository

import (
	"context"
	"time"

	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
)

// UserRepository is the credential-store port. The durable store behind it is
// a collaborator; this core only depends on the operations below.
//
// Implementations must treat emails as case-normalized
// (models.NormalizeEmail) and return domain errors: ErrUserNotFound when the
// email is unknown, ErrEmailExists on a uniqueness conflict, ErrRevokedToken
// when SwapRefreshTokenHash loses the compare-and-swap.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	ConfirmEmail(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email, passwordHash string) error

	// SetRefreshTokenHash unconditionally records hash as the only valid
	// refresh token for the user. An empty hash clears the session.
	SetRefreshTokenHash(ctx context.Context, email, hash string) error

	// SwapRefreshTokenHash atomically replaces oldHash with newHash. Exactly
	// one of two concurrent callers presenting the same oldHash succeeds; the
	// loser gets ErrRevokedToken.
	SwapRefreshTokenHash(ctx context.Context, email, oldHash, newHash string) error
}

// UsedTokenStore remembers consumed single-use token IDs for at least the
// token's remaining lifetime.
type UsedTokenStore interface {
	// MarkUsed records tokenID as consumed. It returns false if the ID was
	// already present, in which case the caller must treat the token as
	// replayed.
	MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}
