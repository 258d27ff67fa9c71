package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
)

// UserRepository implements repository.UserRepository on PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a postgres-backed user repository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, avatar, refresh_token_hash, confirmed, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Username, user.Email, user.PasswordHash,
		user.Avatar, user.RefreshTokenHash, user.Confirmed, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return domainErrors.ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByEmail retrieves a user by normalized email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `
		SELECT id, username, email, password_hash, COALESCE(avatar, ''), COALESCE(refresh_token_hash, ''), confirmed, created_at
		FROM users
		WHERE email = $1
	`
	user := &models.User{}
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash,
		&user.Avatar, &user.RefreshTokenHash, &user.Confirmed, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return user, nil
}

// ConfirmEmail marks the account verified. Confirming an already-confirmed
// account is a no-op.
func (r *UserRepository) ConfirmEmail(ctx context.Context, email string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET confirmed = TRUE WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to confirm email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// UpdatePasswordHash replaces the stored password digest.
func (r *UserRepository) UpdatePasswordHash(ctx context.Context, email, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash = $2 WHERE email = $1`, email, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// SetRefreshTokenHash unconditionally records the current refresh token hash.
// An empty hash stores NULL, ending the session.
func (r *UserRepository) SetRefreshTokenHash(ctx context.Context, email, hash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = NULLIF($2, '') WHERE email = $1`, email, hash)
	if err != nil {
		return fmt.Errorf("failed to set refresh token hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// SwapRefreshTokenHash rotates the stored hash with a single conditional
// UPDATE, so of two concurrent rotations of the same token exactly one wins.
// The row either rotates fully or not at all; a cancelled request cannot
// leave a half-rotated state.
func (r *UserRepository) SwapRefreshTokenHash(ctx context.Context, email, oldHash, newHash string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET refresh_token_hash = $3 WHERE email = $1 AND refresh_token_hash = $2`,
		email, oldHash, newHash)
	if err != nil {
		return fmt.Errorf("failed to swap refresh token hash: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// Distinguish a lost swap from a missing account.
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if !exists {
		return domainErrors.ErrUserNotFound
	}
	return domainErrors.ErrRevokedToken
}

var _ repository.UserRepository = (*UserRepository)(nil)
