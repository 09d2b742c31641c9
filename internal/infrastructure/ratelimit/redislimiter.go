package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	sharedConfig "singmerge/internal/shared/config"
)

const pingTimeout = 3 * time.Second

// RedisLimiter counts requests in a sorted set per key and window, so every
// server instance sharing the Redis database shares the budget.
type RedisLimiter struct {
	client redis.Cmdable
	limits Limits
	now    func() time.Time
}

func NewRedisLimiter(client redis.Cmdable, limits Limits) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		limits: limits,
		now:    time.Now,
	}
}

// NewRedisClient connects and pings. The caller owns the returned client.
func NewRedisClient(ctx context.Context, cfg sharedConfig.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.GetAddr(), err)
	}
	return client, nil
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := l.now()
	for _, w := range l.limits.windows() {
		allowed, err := l.checkWindow(ctx, key, w, now)
		if err != nil {
			return false, err
		}
		if !allowed {
			return false, nil
		}
	}
	return true, nil
}

func (l *RedisLimiter) checkWindow(ctx context.Context, key string, w window, now time.Time) (bool, error) {
	redisKey := Key(key, w.duration)
	nowNano := now.UnixNano()

	pipe := l.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(now.Add(-w.duration).UnixNano(), 10))
	count := pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(nowNano), Member: nowNano})
	pipe.Expire(ctx, redisKey, w.duration+time.Minute)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit pipeline failed: %w", err)
	}

	return count.Val() < int64(w.limit), nil
}

// Key is the Redis key holding one window of requests for identifier
func Key(identifier string, window time.Duration) string {
	return fmt.Sprintf("singmerge:ratelimit:%s:%s", identifier, window)
}
