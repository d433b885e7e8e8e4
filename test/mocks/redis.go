package mocks

import (
	"context"
	"time"

	"github.com/richxcame/car-rental/pkg/redis"
	"github.com/stretchr/testify/mock"
)

// MockLeaseClient is a mock implementation of redis.LeaseClient
type MockLeaseClient struct {
	mock.Mock
}

var _ redis.LeaseClient = (*MockLeaseClient)(nil)

// TryAcquireLease mocks SET NX with a TTL
func (m *MockLeaseClient) TryAcquireLease(ctx context.Context, key, token string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, token, ttl)
	return args.Bool(0), args.Error(1)
}

// ReleaseLease mocks the token-checked delete
func (m *MockLeaseClient) ReleaseLease(ctx context.Context, key, token string) (bool, error) {
	args := m.Called(ctx, key, token)
	return args.Bool(0), args.Error(1)
}
