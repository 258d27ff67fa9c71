package http

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/Petrenko-Anton/HW-13-REST/internal/domain/errors"
)

// ResponseError is the error body of the API.
type ResponseError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// RespondWithError writes an error response.
func RespondWithError(c *gin.Context, statusCode int, message string, errorCode string) {
	c.JSON(statusCode, ResponseError{Error: message, Code: errorCode})
}

// RespondWithMessage writes a message-only success response.
func RespondWithMessage(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"message": message})
}

// RespondWithDomainError maps a service error to the small external error
// set. Internal distinctions (unknown user vs wrong password, expired vs
// revoked refresh token) deliberately collapse here.
func RespondWithDomainError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case domainErrors.IsRateLimited(err):
		retryAfter := domainErrors.RetryAfter(err)
		if retryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		}
		RespondWithError(c, http.StatusTooManyRequests, "too many requests", "rate_limited")

	case domainErrors.IsConflict(err):
		RespondWithError(c, http.StatusConflict, "account already exists", "conflict")

	case domainErrors.IsForbidden(err):
		RespondWithError(c, http.StatusForbidden, "email not verified", "unverified")

	case domainErrors.IsUnauthorized(err):
		RespondWithError(c, http.StatusUnauthorized, "could not validate credentials", "credentials_invalid")

	case domainErrors.IsNotFound(err):
		RespondWithError(c, http.StatusBadRequest, "verification error", "bad_request")

	default:
		logger.Error("unexpected service error",
			zap.Error(err),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		RespondWithError(c, http.StatusInternalServerError, "internal error", "internal")
	}
}
