package polllock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLock implements Lock over a shared Redis key using SET NX EX.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisLock connects to Redis and verifies connectivity. The TTL must
// exceed one poll cycle but stay short enough that a crashed holder's lock
// expires promptly.
func NewRedisLock(redisURL, key string, ttl time.Duration) (*RedisLock, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLock{client: client, key: key, ttl: ttl}, nil
}

// TryAcquire sets the token with SET NX EX.
func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, "1", l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire poll lock %s: %w", l.key, err)
	}
	return ok, nil
}

// Release deletes the token.
func (l *RedisLock) Release(ctx context.Context) error {
	if err := l.client.Del(ctx, l.key).Err(); err != nil {
		return fmt.Errorf("release poll lock %s: %w", l.key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (l *RedisLock) Close() error {
	return l.client.Close()
}
