package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Lock backends for per-vehicle serialization
const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

// Timeout defaults and limits, in seconds
const (
	DefaultRequestTimeout       = 30
	DefaultDatabaseQueryTimeout = 10
	DefaultLockTTL              = 15
	DefaultLockWaitMillis       = 5000
	MaxRequestTimeout           = 300
	MaxDatabaseQueryTimeout     = 120
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	NATS        NATSConfig
	Lock        LockConfig
	Maintenance MaintenanceConfig
	Tracing     TracingConfig
	Timeout     TimeoutConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	LogLevel     string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string // Comma-separated list of allowed origins
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsPath string
	RunMigrations  bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds the event bus connection settings
type NATSConfig struct {
	Enabled    bool
	URL        string
	StreamName string
}

// LockConfig selects how coordinators serialize work on a single vehicle
type LockConfig struct {
	Backend    string
	TTLSeconds int
	WaitMillis int
}

// MaintenanceConfig holds the maintenance admission policy
type MaintenanceConfig struct {
	// RequireAvailable rejects maintenance for rented vehicles.
	RequireAvailable bool
}

// TracingConfig holds OpenTelemetry exporter settings
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRate   float64
}

// TimeoutConfig holds request and query timeouts in seconds
type TimeoutConfig struct {
	RequestTimeout       int
	DatabaseQueryTimeout int
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			LogLevel:     getEnv("LOG_LEVEL", ""),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "carrental"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "file://db/migrations"),
			RunMigrations:  getEnvAsBool("RUN_MIGRATIONS", false),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			Enabled:    getEnvAsBool("NATS_ENABLED", false),
			URL:        getEnv("NATS_URL", "nats://localhost:4222"),
			StreamName: getEnv("NATS_STREAM", "CARRENTAL"),
		},
		Lock: LockConfig{
			Backend:    strings.ToLower(getEnv("VEHICLE_LOCK_BACKEND", LockBackendLocal)),
			TTLSeconds: getEnvAsInt("VEHICLE_LOCK_TTL_SECONDS", DefaultLockTTL),
			WaitMillis: getEnvAsInt("VEHICLE_LOCK_WAIT_MS", DefaultLockWaitMillis),
		},
		Maintenance: MaintenanceConfig{
			RequireAvailable: getEnvAsBool("MAINTENANCE_REQUIRE_AVAILABLE", false),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvAsFloat("OTEL_TRACE_SAMPLE_RATE", 0),
		},
		Timeout: TimeoutConfig{
			RequestTimeout:       getEnvAsInt("REQUEST_TIMEOUT_SECONDS", DefaultRequestTimeout),
			DatabaseQueryTimeout: getEnvAsInt("DB_QUERY_TIMEOUT", DefaultDatabaseQueryTimeout),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Lock.Backend {
	case LockBackendLocal:
	case LockBackendRedis:
		if !c.Redis.Enabled {
			return fmt.Errorf("VEHICLE_LOCK_BACKEND=redis requires REDIS_ENABLED=true")
		}
	default:
		return fmt.Errorf("invalid VEHICLE_LOCK_BACKEND %q: expected %q or %q", c.Lock.Backend, LockBackendLocal, LockBackendRedis)
	}

	if c.Lock.TTLSeconds <= 0 {
		c.Lock.TTLSeconds = DefaultLockTTL
	}
	if c.Lock.WaitMillis <= 0 {
		c.Lock.WaitMillis = DefaultLockWaitMillis
	}
	if c.Timeout.RequestTimeout <= 0 {
		c.Timeout.RequestTimeout = DefaultRequestTimeout
	}
	if c.Timeout.RequestTimeout > MaxRequestTimeout {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must not exceed %d", MaxRequestTimeout)
	}
	if c.Timeout.DatabaseQueryTimeout <= 0 {
		c.Timeout.DatabaseQueryTimeout = DefaultDatabaseQueryTimeout
	}
	if c.Timeout.DatabaseQueryTimeout > MaxDatabaseQueryTimeout {
		return fmt.Errorf("DB_QUERY_TIMEOUT must not exceed %d", MaxDatabaseQueryTimeout)
	}

	return nil
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL returns the database connection string in URL form, as golang-migrate expects
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// TTL returns the lock lease duration
func (c LockConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Wait returns how long a request may queue for a busy vehicle
func (c LockConfig) Wait() time.Duration {
	return time.Duration(c.WaitMillis) * time.Millisecond
}

// Request returns the per-request timeout
func (c TimeoutConfig) Request() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Query returns the per-statement database timeout
func (c TimeoutConfig) Query() time.Duration {
	return time.Duration(c.DatabaseQueryTimeout) * time.Second
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
