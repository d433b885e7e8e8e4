package redis

import (
	"context"
	"time"
)

// LeaseClient is the subset of Redis operations the vehicle lock needs
type LeaseClient interface {
	TryAcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, key, token string) (bool, error)
}

var _ LeaseClient = (*Client)(nil)
