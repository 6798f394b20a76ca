package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

type QuotaRepo struct {
	client *goredis.Client
}

func NewQuotaRepo(client *goredis.Client) *QuotaRepo {
	return &QuotaRepo{client: client}
}

// Reserve adds n to the counter at key unless that would push it past limit.
// A rejected reservation is rolled back and leaves the counter unchanged.
func (r *QuotaRepo) Reserve(ctx context.Context, key string, n, limit int64, ttl time.Duration) (int64, bool, error) {
	if r.client == nil {
		return 0, false, fmt.Errorf("redis client is nil")
	}
	if key == "" || n <= 0 || ttl <= 0 {
		return 0, false, fmt.Errorf("invalid quota reservation payload")
	}

	count, err := r.client.IncrBy(ctx, key, n).Result()
	if err != nil {
		return 0, false, fmt.Errorf("increment quota key: %w", err)
	}
	if count == n {
		if err := r.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, false, fmt.Errorf("set quota key ttl: %w", err)
		}
	}
	if count <= limit {
		return count, true, nil
	}

	used, err := r.client.DecrBy(ctx, key, n).Result()
	if err != nil {
		return 0, false, fmt.Errorf("roll back quota key: %w", err)
	}
	return used, false, nil
}

func (r *QuotaRepo) Release(ctx context.Context, key string, n int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if key == "" || n <= 0 {
		return nil
	}

	used, err := r.client.DecrBy(ctx, key, n).Result()
	if err != nil {
		return fmt.Errorf("release quota key: %w", err)
	}
	if used < 0 {
		if err := r.client.Set(ctx, key, 0, goredis.KeepTTL).Err(); err != nil {
			return fmt.Errorf("reset quota key: %w", err)
		}
	}
	return nil
}

func (r *QuotaRepo) Used(ctx context.Context, key string) (int64, error) {
	if r.client == nil {
		return 0, fmt.Errorf("redis client is nil")
	}
	if key == "" {
		return 0, fmt.Errorf("quota key is required")
	}

	count, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, goredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get quota key: %w", err)
	}
	return count, nil
}
