package rate

import (
	"context"
	"time"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
)

// Decision is the outcome of a rate-limit check. RetryAfter carries the
// remaining window time when the request is denied.
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter gates requests per key within a fixed time window. Keys partition
// contention: checks for unrelated keys never block each other.
// Implementations fail open: on a counter-backend error they return an
// allowing Decision alongside the error, so a broken backend never locks
// every client out.
type Limiter interface {
	Allow(ctx context.Context, key string, rule config.RateLimitRule) (Decision, error)
}

func allowAll(rule config.RateLimitRule) Decision {
	return Decision{Allowed: true, Remaining: rule.Limit}
}
