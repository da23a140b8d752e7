package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Tracing  TracingConfig
	Errors   ErrorTrackingConfig
	Fraud    FraudConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int

	// InternalAPIKey guards the fraud API; callers send it as X-Internal-API-Key
	InternalAPIKey string
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
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds event bus configuration
type NATSConfig struct {
	URL        string
	StreamName string
	Enabled    bool
}

// TracingConfig holds OpenTelemetry exporter configuration
type TracingConfig struct {
	Enabled      bool
	OTLPEndpoint string
	SampleRate   float64
}

// ErrorTrackingConfig configures Sentry reporting
type ErrorTrackingConfig struct {
	SentryDSN  string
	SampleRate float64
}

// FraudConfig tunes the risk assessment engine
type FraudConfig struct {
	ProfileTTLSeconds   int
	MonitorTTLSeconds   int
	AssessmentTimeoutMS int
	ReputationURL       string
	ReputationAPIKey    string
	Reputation          BreakerConfig
}

// BreakerConfig configures the circuit breaker around an enrichment provider
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	TimeoutSeconds   int
	IntervalSeconds  int
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
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),

			InternalAPIKey: getEnv("INTERNAL_API_KEY", ""),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			DBName:         getEnv("DB_NAME", "gearrental"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvAsInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "file://db/migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:        getEnv("NATS_URL", "nats://127.0.0.1:4222"),
			StreamName: getEnv("NATS_STREAM", "GEARRENTAL"),
			Enabled:    getEnvAsBool("NATS_ENABLED", false),
		},
		Tracing: TracingConfig{
			Enabled:      getEnvAsBool("OTEL_ENABLED", false),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			SampleRate:   getEnvAsFloat("OTEL_SAMPLE_RATE", 1.0),
		},
		Errors: ErrorTrackingConfig{
			SentryDSN:  getEnv("SENTRY_DSN", ""),
			SampleRate: getEnvAsFloat("SENTRY_SAMPLE_RATE", 1.0),
		},
		Fraud: FraudConfig{
			ProfileTTLSeconds:   getEnvAsInt("FRAUD_PROFILE_TTL", 3600),
			MonitorTTLSeconds:   getEnvAsInt("FRAUD_MONITOR_TTL", 3600),
			AssessmentTimeoutMS: getEnvAsInt("FRAUD_ASSESSMENT_TIMEOUT_MS", 3000),
			ReputationURL:       getEnv("FRAUD_REPUTATION_URL", ""),
			ReputationAPIKey:    getEnv("FRAUD_REPUTATION_API_KEY", ""),
			Reputation: BreakerConfig{
				FailureThreshold: getEnvAsInt("FRAUD_REPUTATION_FAILURE_THRESHOLD", 5),
				SuccessThreshold: getEnvAsInt("FRAUD_REPUTATION_SUCCESS_THRESHOLD", 1),
				TimeoutSeconds:   getEnvAsInt("FRAUD_REPUTATION_TIMEOUT_SECONDS", 30),
				IntervalSeconds:  getEnvAsInt("FRAUD_REPUTATION_INTERVAL_SECONDS", 60),
			},
		},
	}

	if cfg.Tracing.SampleRate < 0 || cfg.Tracing.SampleRate > 1 {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATE %v: must be within [0,1]", cfg.Tracing.SampleRate)
	}

	if cfg.Errors.SampleRate < 0 || cfg.Errors.SampleRate > 1 {
		return nil, fmt.Errorf("invalid SENTRY_SAMPLE_RATE %v: must be within [0,1]", cfg.Errors.SampleRate)
	}

	if cfg.Fraud.ProfileTTLSeconds <= 0 {
		cfg.Fraud.ProfileTTLSeconds = 3600
	}
	if cfg.Fraud.MonitorTTLSeconds <= 0 {
		cfg.Fraud.MonitorTTLSeconds = 3600
	}
	if cfg.Fraud.AssessmentTimeoutMS < 0 {
		return nil, fmt.Errorf("invalid FRAUD_ASSESSMENT_TIMEOUT_MS %d: must not be negative", cfg.Fraud.AssessmentTimeoutMS)
	}
	if cfg.Fraud.Reputation.FailureThreshold <= 0 {
		cfg.Fraud.Reputation.FailureThreshold = 5
	}
	if cfg.Fraud.Reputation.SuccessThreshold <= 0 {
		cfg.Fraud.Reputation.SuccessThreshold = 1
	}
	if cfg.Fraud.Reputation.TimeoutSeconds <= 0 {
		cfg.Fraud.Reputation.TimeoutSeconds = 30
	}
	if cfg.Fraud.Reputation.IntervalSeconds <= 0 {
		cfg.Fraud.Reputation.IntervalSeconds = 60
	}

	return cfg, nil
}

// ProfileTTL returns the behavior profile cache lifetime
func (c FraudConfig) ProfileTTL() time.Duration {
	return time.Duration(c.ProfileTTLSeconds) * time.Second
}

// MonitorTTL returns the monitoring sweep cache lifetime
func (c FraudConfig) MonitorTTL() time.Duration {
	return time.Duration(c.MonitorTTLSeconds) * time.Second
}

// AssessmentTimeout returns the overall deadline for one assessment; zero disables it
func (c FraudConfig) AssessmentTimeout() time.Duration {
	return time.Duration(c.AssessmentTimeoutMS) * time.Millisecond
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
