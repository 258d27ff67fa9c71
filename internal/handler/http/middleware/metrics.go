package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Petrenko-Anton/HW-13-REST/internal/utils/metrics"
)

// MetricsMiddleware records request counts, status codes and durations.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.RequestsTotal.Inc()

		start := time.Now()
		c.Next()

		metrics.RequestDuration.Observe(time.Since(start).Seconds())
		metrics.ResponsesTotal.WithLabelValues(strconv.Itoa(c.Writer.Status())).Inc()
	}
}
