package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/richxcame/car-rental/pkg/config"
)

// Client wraps the Redis client
type Client struct {
	*redis.Client
}

// NewRedisClient creates a new Redis client
func NewRedisClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("unable to connect to redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// releaseScript deletes the key only while it still holds the caller's token,
// so an expired lease never removes a newer holder's lease.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// TryAcquireLease sets key to token if the key is absent. It reports whether
// the caller now holds the lease.
func (c *Client) TryAcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	return RetryableOperation(ctx, "redis.setnx", func(ctx context.Context) (bool, error) {
		return c.SetNX(ctx, key, token, ttl).Result()
	})
}

// ReleaseLease removes key if it still holds token. It reports whether the
// lease was still owned by the caller.
func (c *Client) ReleaseLease(ctx context.Context, key, token string) (bool, error) {
	n, err := RetryableOperation(ctx, "redis.release", func(ctx context.Context) (int64, error) {
		return c.Eval(ctx, releaseScript, []string{key}, token).Int64()
	})
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// HealthCheck pings the server
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
