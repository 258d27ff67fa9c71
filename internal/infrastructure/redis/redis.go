package redis

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/Petrenko-Anton/HW-13-REST/internal/config"
)

// NewClient connects to redis and verifies connectivity.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}
	return client, nil
}
