package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/richxcame/car-rental/internal/addons"
	"github.com/richxcame/car-rental/internal/fleet"
	"github.com/richxcame/car-rental/internal/maintenance"
	"github.com/richxcame/car-rental/internal/rentals"
	"github.com/richxcame/car-rental/pkg/common"
	"github.com/richxcame/car-rental/pkg/config"
	"github.com/richxcame/car-rental/pkg/database"
	"github.com/richxcame/car-rental/pkg/errors"
	"github.com/richxcame/car-rental/pkg/eventbus"
	"github.com/richxcame/car-rental/pkg/logger"
	"github.com/richxcame/car-rental/pkg/middleware"
	redisclient "github.com/richxcame/car-rental/pkg/redis"
	"github.com/richxcame/car-rental/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName = "rentals-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	if err := logger.Init(cfg.Server.Environment, serviceName, cfg.Server.LogLevel); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting rentals service",
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
		zap.String("lock_backend", cfg.Lock.Backend),
	)

	// Initialize Sentry for error tracking
	sentryConfig := errors.DefaultSentryConfig(cfg.Server.Environment, serviceName)
	if sentryConfig.Release == "" {
		sentryConfig.Release = version
	}
	if err := errors.InitSentry(sentryConfig); err != nil {
		logger.Warn("Failed to initialize Sentry, continuing without error tracking", zap.Error(err))
	} else if sentryConfig.Enabled() {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized")
	}

	// Initialize OpenTelemetry tracer
	if cfg.Tracing.Enabled {
		_, err := tracing.InitTracer(tracing.Config{
			ServiceName:    serviceName,
			ServiceVersion: version,
			Environment:    cfg.Server.Environment,
			OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
			SampleRate:     cfg.Tracing.SampleRate,
			Enabled:        true,
		}, logger.Get())
		if err != nil {
			logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
		} else {
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := tracing.Shutdown(shutdownCtx); err != nil {
					logger.Warn("Failed to shutdown tracer", zap.Error(err))
				}
			}()
			logger.Info("OpenTelemetry tracing initialized")
		}
	}

	if cfg.Database.RunMigrations {
		if err := database.Migrate(cfg.Database.MigrationsPath, cfg.Database.URL()); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	db, err := database.NewPostgresPool(rootCtx, &cfg.Database, cfg.Timeout.Query())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	var redisClient *redisclient.Client
	if cfg.Redis.Enabled {
		redisClient, err = redisclient.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()
	}

	// Per-vehicle serialization. Redis leases are required when more than
	// one replica serves the same fleet.
	var locker fleet.Locker = fleet.NewLocalLocker()
	if cfg.Lock.Backend == config.LockBackendRedis {
		locker = fleet.NewRedisLocker(redisClient, cfg.Lock.TTL())
		logger.Info("Vehicle locks backed by redis", zap.Duration("ttl", cfg.Lock.TTL()))
	}

	fleetRepo := fleet.NewRepository(db)
	guard := fleet.NewGuard(fleetRepo, locker, cfg.Lock.Wait())

	fleetService := fleet.NewService(fleetRepo, guard)
	addonsService := addons.NewService(addons.NewRepository(db))
	rentalsService := rentals.NewService(rentals.NewRepository(db), guard, addonsService)
	maintenancePolicy := maintenance.PolicyFromConfig(cfg.Maintenance.RequireAvailable)
	maintenanceService := maintenance.NewService(maintenance.NewRepository(db), guard, maintenancePolicy)
	logger.Info("Maintenance admission policy", zap.String("policy", maintenancePolicy.String()))

	// Initialize NATS event bus
	var eventBus *eventbus.Bus
	if cfg.NATS.Enabled && cfg.NATS.URL != "" {
		bus, err := eventbus.New(eventbus.Config{
			URL:        cfg.NATS.URL,
			Name:       serviceName,
			StreamName: cfg.NATS.StreamName,
		})
		if err != nil {
			logger.Warn("Failed to connect to NATS - events disabled", zap.Error(err))
		} else {
			eventBus = bus
			defer bus.Close()

			guard.SetEventBus(bus)
			rentalsService.SetEventBus(bus)
			maintenanceService.SetEventBus(bus)

			if err := fleet.NewAuditHandler().RegisterSubscriptions(rootCtx, bus); err != nil {
				logger.Warn("Failed to start vehicle state audit", zap.Error(err))
			}
		}
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.SentryMiddleware())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(cfg.Timeout.Request()))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))
	router.Use(middleware.Metrics(serviceName))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}
	router.Use(middleware.ErrorHandler())

	// Health check endpoints
	router.GET("/healthz", common.LivenessProbe(serviceName, version))
	router.GET("/health/live", common.LivenessProbe(serviceName, version))

	healthChecks := map[string]common.HealthCheckFunc{
		"database": db.Ping,
	}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.HealthCheck
	}
	if eventBus != nil {
		healthChecks["nats"] = eventBus.HealthCheck
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": serviceName,
			"version": version,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	fleet.NewHandler(fleetService).RegisterRoutes(api)
	rentals.NewHandler(rentalsService).RegisterRoutes(api)
	addons.NewHandler(addonsService).RegisterRoutes(api)
	maintenance.NewHandler(maintenanceService).RegisterRoutes(api)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
