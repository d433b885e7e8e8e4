package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load("rentals-service")
	require.NoError(t, err)

	assert.Equal(t, "rentals-service", cfg.Server.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, LockBackendLocal, cfg.Lock.Backend)
	assert.Equal(t, DefaultLockTTL*time.Second, cfg.Lock.TTL())
	assert.Equal(t, DefaultLockWaitMillis*time.Millisecond, cfg.Lock.Wait())
	assert.Equal(t, DefaultRequestTimeout*time.Second, cfg.Timeout.Request())
	assert.False(t, cfg.Maintenance.RequireAvailable)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, "file://db/migrations", cfg.Database.MigrationsPath)
}

func TestLoadCustomValues(t *testing.T) {
	os.Clearenv()
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("VEHICLE_LOCK_BACKEND", "Redis")
	t.Setenv("VEHICLE_LOCK_TTL_SECONDS", "5")
	t.Setenv("VEHICLE_LOCK_WAIT_MS", "250")
	t.Setenv("MAINTENANCE_REQUIRE_AVAILABLE", "true")
	t.Setenv("DB_QUERY_TIMEOUT", "20")

	cfg, err := Load("rentals-service")
	require.NoError(t, err)

	assert.Equal(t, LockBackendRedis, cfg.Lock.Backend)
	assert.Equal(t, 5*time.Second, cfg.Lock.TTL())
	assert.Equal(t, 250*time.Millisecond, cfg.Lock.Wait())
	assert.True(t, cfg.Maintenance.RequireAvailable)
	assert.Equal(t, 20*time.Second, cfg.Timeout.Query())
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		errText string
	}{
		{
			name:    "unknown lock backend",
			env:     map[string]string{"VEHICLE_LOCK_BACKEND": "zookeeper"},
			errText: "VEHICLE_LOCK_BACKEND",
		},
		{
			name:    "redis lock without redis",
			env:     map[string]string{"VEHICLE_LOCK_BACKEND": "redis"},
			errText: "REDIS_ENABLED",
		},
		{
			name:    "request timeout too large",
			env:     map[string]string{"REQUEST_TIMEOUT_SECONDS": "999"},
			errText: "REQUEST_TIMEOUT_SECONDS",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load("rentals-service")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestDatabaseURL(t *testing.T) {
	cfg := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: "5432", DBName: "carrental", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/carrental?sslmode=disable", cfg.URL())
	assert.Contains(t, cfg.DSN(), "dbname=carrental")
}
