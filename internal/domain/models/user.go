package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the account record owned by the credential store. The password is
// kept only as an argon2id digest; RefreshTokenHash holds the SHA-256 of the
// single currently-valid refresh token (empty when no session is active).
type User struct {
	ID               uuid.UUID
	Username         string
	Email            string
	PasswordHash     string
	Avatar           string
	RefreshTokenHash string
	Confirmed        bool
	CreatedAt        time.Time
}

// NormalizeEmail lower-cases and trims an email so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
