package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis is a sliding-window limiter backed by a sorted set per key, for
// deployments with more than one server process. Entries are scored by
// request time and trimmed on every check, so the set self-expires.
type Redis struct {
	client *redis.Client
	max    int
	window time.Duration
}

// NewRedis allows max requests per key within window, tracked in rdb.
func NewRedis(rdb *redis.Client, max int, window time.Duration) *Redis {
	return &Redis{client: rdb, max: max, window: window}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	k := "ratelimit:" + key
	cutoff := strconv.FormatInt(now.Add(-r.window).UnixNano(), 10)

	if err := r.client.ZRemRangeByScore(ctx, k, "-inf", cutoff).Err(); err != nil {
		return false, err
	}
	count, err := r.client.ZCard(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if count >= int64(r.max) {
		return false, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	if err := r.client.ZAdd(ctx, k, &redis.Z{Score: float64(now.UnixNano()), Member: member}).Err(); err != nil {
		return false, err
	}
	// Keep the key from lingering after traffic stops.
	r.client.Expire(ctx, k, r.window)
	return true, nil
}
