package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/models"
	"github.com/Petrenko-Anton/HW-13-REST/internal/service"
)

const (
	authHeaderKey = "Authorization"
	bearerPrefix  = "bearer"
	principalKey  = "principal"
)

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(authHeaderKey)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// PrincipalFromContext returns the principal stored by AuthMiddleware.
func PrincipalFromContext(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	principal, ok := v.(models.Principal)
	return principal, ok
}

// AuthMiddleware authenticates the access token and stores the principal in
// the request context. Verification is pure signature and expiry checking;
// no store lookup happens per request.
func AuthMiddleware(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "could not validate credentials",
				"code":  "credentials_invalid",
			})
			return
		}

		principal, err := auth.Authenticate(token)
		if err != nil {
			logger.Debug("access token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "could not validate credentials",
				"code":  "credentials_invalid",
			})
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// RequireVerified blocks unverified accounts on verified-only routes. It runs
// after AuthMiddleware and consults the store so a freshly confirmed account
// passes without re-login.
func RequireVerified(auth *service.AuthService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "could not validate credentials",
				"code":  "credentials_invalid",
			})
			return
		}

		if err := auth.RequireVerified(c.Request.Context(), principal); err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrEmailNotVerified):
				logger.Debug("unverified account blocked", zap.String("email", principal.Email))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": "email not verified",
					"code":  "unverified",
				})
			case errors.Is(err, domainErrors.ErrInvalidCredentials):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "could not validate credentials",
					"code":  "credentials_invalid",
				})
			default:
				logger.Error("verified check failed", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal error",
					"code":  "internal",
				})
			}
			return
		}

		c.Next()
	}
}
