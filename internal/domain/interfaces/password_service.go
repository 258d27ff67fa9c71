package interfaces

// PasswordService defines the interface for password hashing and verification.
type PasswordService interface {
	// HashPassword creates an argon2id digest of the given password with a
	// fresh random salt.
	HashPassword(password string) (string, error)

	// CheckPasswordHash compares a plain password against a stored digest in
	// constant time. A malformed digest yields (false, nil), never a panic.
	CheckPasswordHash(password, hash string) (bool, error)
}
