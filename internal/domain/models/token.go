package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Token scope discriminators. Access and refresh values follow the original
// API contract; a token presented for the wrong operation is rejected.
const (
	ScopeAccess       = "access_token"
	ScopeRefresh      = "refresh_token"
	ScopeVerification = "email_verification"
)

// Claims is the signed claim set carried by every token this service issues.
// Subject is the normalized user email; Scope discriminates access, refresh
// and email-verification tokens.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// TokenPair is the login/refresh response: a short-lived self-contained
// access token plus a long-lived refresh token tracked by hash server-side.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Principal is the verified identity extracted from a valid access token.
type Principal struct {
	Email   string
	TokenID string
}
