package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
)

// TokenManager signs and parses the service's JWTs (HS256). Every token
// carries subject, issued-at, expiry, a jti and a scope discriminator; the
// signing key ID travels in the header so verification survives key rotation.
type TokenManager struct {
	keyring *Keyring
	issuer  string
	leeway  time.Duration
	now     func() time.Time
}

// NewTokenManager creates a TokenManager. leeway is the clock-skew tolerance
// applied to expiry checks.
func NewTokenManager(keyring *Keyring, issuer string, leeway time.Duration) *TokenManager {
	return &TokenManager{
		keyring: keyring,
		issuer:  issuer,
		leeway:  leeway,
		now:     time.Now,
	}
}

// Sign issues a token for subject with the given scope and TTL.
func (m *TokenManager) Sign(subject, scope string, ttl time.Duration) (string, *models.Claims, error) {
	now := m.now()
	claims := &models.Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	key := m.keyring.Current()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = key.ID

	signed, err := token.SignedString(key.Secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign %s token: %w", scope, err)
	}
	return signed, claims, nil
}

// Parse verifies signature, expiry and scope of a token. It returns
// ErrExpiredToken, ErrWrongTokenType or ErrMalformedToken; a bad signature or
// unknown key ID is reported as malformed so the caller learns nothing about
// the key set.
func (m *TokenManager) Parse(tokenString, wantScope string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		keyID, _ := t.Header["kid"].(string)
		return m.keyring.SecretFor(keyID)
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithLeeway(m.leeway),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainErrors.ErrExpiredToken
		}
		return nil, domainErrors.ErrMalformedToken
	}

	claims, ok := token.Claims.(*models.Claims)
	if !ok || !token.Valid {
		return nil, domainErrors.ErrMalformedToken
	}
	if claims.Scope != wantScope {
		return nil, domainErrors.ErrWrongTokenType
	}
	if claims.Subject == "" {
		return nil, domainErrors.ErrMalformedToken
	}
	return claims, nil
}
