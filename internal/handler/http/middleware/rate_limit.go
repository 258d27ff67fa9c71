package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/metrics"
	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/rate"
)

// RateLimitMiddleware gates a route class with the given rule. Requests are
// keyed by authenticated identity when AuthMiddleware ran earlier in the
// chain, otherwise by client IP, so anonymous and authenticated abuse are
// tracked separately. Denials carry a Retry-After hint.
func RateLimitMiddleware(limiter rate.Limiter, rule config.RateLimitRule, routeClass string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rule.Enabled {
			c.Next()
			return
		}

		key := fmt.Sprintf("%s:ip:%s", routeClass, c.ClientIP())
		if principal, ok := PrincipalFromContext(c); ok {
			key = fmt.Sprintf("%s:user:%s", routeClass, principal.Email)
		}

		decision, err := limiter.Allow(c.Request.Context(), key, rule)
		if err != nil {
			// The limiter fails open; the request proceeds on counter errors.
			logger.Error("rate limiter check failed", zap.Error(err), zap.String("key", key))
		}

		if !decision.Allowed {
			metrics.RateLimitedTotal.WithLabelValues(routeClass).Inc()
			logger.Warn("rate limit exceeded",
				zap.String("key", key),
				zap.Int("limit", rule.Limit),
				zap.Duration("window", rule.Window),
			)
			if decision.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(decision.RetryAfter.Seconds()))))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "too many requests",
				"code":  "rate_limited",
			})
			return
		}

		c.Next()
	}
}
