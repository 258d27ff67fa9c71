package security

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken hashes a token string with SHA-256 and returns the hex encoding.
// Refresh tokens are stored only in this form; the plain token never touches
// the database.
func HashToken(plainToken string) string {
	sum := sha256.Sum256([]byte(plainToken))
	return hex.EncodeToString(sum[:])
}
