package security

import (
	"errors"
	"fmt"
)

// SigningKey is one HMAC secret with its key ID. The ID travels in the token
// header so verification can pick the right secret after a rotation.
type SigningKey struct {
	ID     string
	Secret []byte
}

// Keyring is an immutable snapshot of the signing keys: the current key used
// for every new signature plus any previous keys still honored for
// verification during the rotation grace period. Rotation produces a new
// snapshot; an in-flight request keeps the one it started with.
type Keyring struct {
	current  SigningKey
	previous map[string][]byte
}

// NewKeyring builds a keyring from the current key and optional previous keys.
func NewKeyring(current SigningKey, previous ...SigningKey) (*Keyring, error) {
	if current.ID == "" || len(current.Secret) == 0 {
		return nil, errors.New("current signing key must have an ID and a secret")
	}
	prev := make(map[string][]byte, len(previous))
	for _, k := range previous {
		if k.ID == "" || len(k.Secret) == 0 {
			return nil, errors.New("previous signing key must have an ID and a secret")
		}
		if k.ID == current.ID {
			return nil, fmt.Errorf("previous key ID %q collides with the current key", k.ID)
		}
		prev[k.ID] = k.Secret
	}
	return &Keyring{current: current, previous: prev}, nil
}

// Current returns the key used for signing.
func (r *Keyring) Current() SigningKey {
	return r.current
}

// SecretFor resolves a key ID from a token header to its secret. Tokens
// without a kid are verified against the current key.
func (r *Keyring) SecretFor(keyID string) ([]byte, error) {
	if keyID == "" || keyID == r.current.ID {
		return r.current.Secret, nil
	}
	if secret, ok := r.previous[keyID]; ok {
		return secret, nil
	}
	return nil, fmt.Errorf("unknown signing key ID %q", keyID)
}
