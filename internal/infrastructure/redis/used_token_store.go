package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/Petrenko-Anton/HW-13-REST/internal/domain/repository"
)

// UsedTokenStore records consumed verification token IDs in redis. SETNX
// makes the first-use check atomic across service instances; the key expires
// together with the token it guards.
type UsedTokenStore struct {
	client *redis.Client
}

// NewUsedTokenStore creates a redis-backed used-token store.
func NewUsedTokenStore(client *redis.Client) *UsedTokenStore {
	return &UsedTokenStore{client: client}
}

// MarkUsed burns a token ID. It returns false when the ID was already burned.
func (s *UsedTokenStore) MarkUsed(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := s.client.SetNX(ctx, fmt.Sprintf("used:%s", tokenID), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark token used: %w", err)
	}
	return ok, nil
}

var _ repository.UsedTokenStore = (*UsedTokenStore)(nil)
