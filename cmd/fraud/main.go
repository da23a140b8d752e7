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

	"github.com/richxcame/gear-rental/internal/fraud"
	"github.com/richxcame/gear-rental/pkg/cache"
	"github.com/richxcame/gear-rental/pkg/common"
	"github.com/richxcame/gear-rental/pkg/config"
	"github.com/richxcame/gear-rental/pkg/database"
	"github.com/richxcame/gear-rental/pkg/errors"
	"github.com/richxcame/gear-rental/pkg/eventbus"
	"github.com/richxcame/gear-rental/pkg/httpclient"
	"github.com/richxcame/gear-rental/pkg/logger"
	"github.com/richxcame/gear-rental/pkg/middleware"
	redisclient "github.com/richxcame/gear-rental/pkg/redis"
	"github.com/richxcame/gear-rental/pkg/resilience"
	"github.com/richxcame/gear-rental/pkg/tracing"
	"go.uber.org/zap"
)

const (
	serviceName = "fraud-service"
	version     = "1.0.0"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(cfg.Server.Environment, serviceName); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting fraud service",
		zap.String("service", serviceName),
		zap.String("version", version),
		zap.String("environment", cfg.Server.Environment),
	)

	if cfg.Server.InternalAPIKey == "" {
		logger.Warn("INTERNAL_API_KEY is not set, fraud API calls will be rejected")
	}

	if err := errors.InitSentry(cfg.Errors, cfg.Server.Environment, version, serviceName); err != nil {
		logger.Warn("Sentry not initialized, continuing without error tracking", zap.Error(err))
	} else {
		defer errors.Flush(2 * time.Second)
		logger.Info("Sentry error tracking initialized")
	}

	tp, err := tracing.InitTracer(tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: version,
		Environment:    cfg.Server.Environment,
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		SampleRate:     cfg.Tracing.SampleRate,
		Enabled:        cfg.Tracing.Enabled,
	}, logger.Get())
	if err != nil {
		logger.Warn("Failed to initialize tracer, continuing without tracing", zap.Error(err))
	} else if tp != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracing.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shutdown tracer", zap.Error(err))
			}
		}()
		logger.Info("OpenTelemetry tracing initialized")
	}

	if err := database.RunMigrations(cfg.Database.MigrationsPath, cfg.Database.URL()); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := database.NewPostgresPool(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	logger.Info("Connected to database")

	redisClient, err := redisclient.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("Failed to close redis client", zap.Error(err))
		}
	}()

	var publisher eventbus.Publisher
	var bus *eventbus.Bus
	if cfg.NATS.Enabled {
		bus, err = eventbus.New(eventbus.Config{
			URL:        cfg.NATS.URL,
			Name:       serviceName,
			StreamName: cfg.NATS.StreamName,
		})
		if err != nil {
			logger.Warn("Failed to connect to NATS, fraud events will not be published", zap.Error(err))
		} else {
			defer bus.Close()
			publisher = bus
			logger.Info("Connected to NATS", zap.String("stream", cfg.NATS.StreamName))
		}
	}

	var reputation fraud.ReputationProvider
	if cfg.Fraud.ReputationURL != "" {
		var opts []httpclient.Option
		if cfg.Fraud.ReputationAPIKey != "" {
			opts = append(opts, httpclient.WithHeader("X-API-Key", cfg.Fraud.ReputationAPIKey))
		}
		client := httpclient.NewClient(cfg.Fraud.ReputationURL, 2*time.Second, opts...)
		breaker := resilience.NewCircuitBreaker(resilience.SettingsFromConfig("ip-reputation", cfg.Fraud.Reputation))
		reputation = fraud.NewBreakerReputation(fraud.NewHTTPReputation(client), breaker)
		logger.Info("IP reputation provider configured",
			zap.String("url", cfg.Fraud.ReputationURL),
			zap.Int("failure_threshold", cfg.Fraud.Reputation.FailureThreshold),
		)
	}

	repo := fraud.NewRepository(db)
	service := fraud.NewService(fraud.Dependencies{
		Repository: repo,
		Cache:      cache.NewManager(redisClient),
		Audit:      fraud.NewAuditLog(repo, publisher),
		Reputation: reputation,
		Timeout:    cfg.Fraud.AssessmentTimeout(),
		ProfileTTL: cfg.Fraud.ProfileTTL(),
		MonitorTTL: cfg.Fraud.MonitorTTL(),
	})
	handler := fraud.NewHandler(service)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RequestTimeout(time.Duration(cfg.Server.WriteTimeout) * time.Second))
	router.Use(middleware.RequestLogger(serviceName))
	router.Use(middleware.Metrics(serviceName))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware(serviceName))
	}

	router.GET("/healthz", common.HealthCheck(serviceName, version))

	healthChecks := map[string]func() error{
		"database": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return db.Ping(ctx)
		},
		"redis": func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return redisClient.Ping(ctx)
		},
	}
	if bus != nil {
		healthChecks["nats"] = func() error {
			if !bus.Connected() {
				return fmt.Errorf("nats disconnected")
			}
			return nil
		}
	}
	router.GET("/health/ready", common.ReadinessProbe(serviceName, version, healthChecks))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router, middleware.InternalAPIKey(cfg.Server.InternalAPIKey))

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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server stopped")
}
