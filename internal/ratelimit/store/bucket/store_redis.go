package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"passgate/internal/ratelimit/models"
)

// RedisBucketStore is a fixed-window limiter shared by every replica.
type RedisBucketStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRedis(client redis.Cmdable, prefix string) *RedisBucketStore {
	return &RedisBucketStore{client: client, prefix: prefix, now: time.Now}
}

// Allow increments the window counter and sets its expiry on first use.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	windowStart := now.Truncate(window)
	resetAt := windowStart.Add(window)
	fullKey := fmt.Sprintf("%s%s:%d", s.prefix, key, windowStart.Unix())

	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, fullKey)
		pipe.PExpire(ctx, fullKey, window)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis rate limit %s: %w", key, err)
	}
	return models.NewRateLimitResult(int(incr.Val()), limit, resetAt, now), nil
}

// Reset drops the counter for the current window.
func (s *RedisBucketStore) Reset(ctx context.Context, key string, window time.Duration) error {
	windowStart := s.now().Truncate(window)
	return s.client.Del(ctx, fmt.Sprintf("%s%s:%d", s.prefix, key, windowStart.Unix())).Err()
}
