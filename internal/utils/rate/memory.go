package rate

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
)

const shardCount = 32

// purgeThreshold bounds how large a shard may grow before an insert sweeps
// out expired windows.
const purgeThreshold = 1024

type window struct {
	count   int
	resetAt time.Time
}

type shard struct {
	mu      sync.Mutex
	windows map[string]*window
}

// MemoryLimiter is an in-process fixed-window limiter. Counters live only in
// memory and reset on restart. Keys are spread over shards so per-key
// increments stay atomic without a global lock.
type MemoryLimiter struct {
	shards [shardCount]*shard
	now    func() time.Time
}

// NewMemoryLimiter creates an in-memory limiter.
func NewMemoryLimiter() *MemoryLimiter {
	l := &MemoryLimiter{now: time.Now}
	for i := range l.shards {
		l.shards[i] = &shard{windows: make(map[string]*window)}
	}
	return l
}

func (l *MemoryLimiter) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return l.shards[h.Sum32()%shardCount]
}

// Allow counts the request against the key's active window. A request that
// arrives after the window elapsed resets the counter instead of
// accumulating.
func (l *MemoryLimiter) Allow(_ context.Context, key string, rule config.RateLimitRule) (Decision, error) {
	if !rule.Enabled || rule.Limit <= 0 {
		return allowAll(rule), nil
	}

	now := l.now()
	s := l.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		if !ok && len(s.windows) >= purgeThreshold {
			s.purgeLocked(now)
		}
		s.windows[key] = &window{count: 1, resetAt: now.Add(rule.Window)}
		return Decision{Allowed: true, Remaining: rule.Limit - 1}, nil
	}

	if w.count >= rule.Limit {
		return Decision{Allowed: false, RetryAfter: w.resetAt.Sub(now)}, nil
	}

	w.count++
	return Decision{Allowed: true, Remaining: rule.Limit - w.count}, nil
}

func (s *shard) purgeLocked(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.resetAt) {
			delete(s.windows, key)
		}
	}
}

var _ Limiter = (*MemoryLimiter)(nil)
