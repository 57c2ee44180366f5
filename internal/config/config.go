package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Environments
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Event bus backends
const (
	EventsBackendMemory = "memory"
	EventsBackendRedis  = "redis"
)

// Config holds all configuration for the values API
type Config struct {
	// AppName is used as the title of the API discovery document
	AppName     string `env:"APP_NAME" envDefault:"HelloWorldApi"`
	Environment string `env:"APP_ENV" envDefault:"production"`

	// Server configuration
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"GRPC_PORT" envDefault:"9090"` // 0 disables the gRPC server
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// CORS
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Events configuration
	Events EventsConfig

	// Redis configuration
	Redis RedisConfig

	// Health checks
	HealthCheckInterval time.Duration `env:"HEALTH_CHECK_INTERVAL" envDefault:"15s"`

	// Timeouts
	Timeouts TimeoutConfig
}

// EventsConfig holds operation event configuration
type EventsConfig struct {
	Backend string `env:"EVENTS_BACKEND" envDefault:"memory"`

	// FeedBuffer is the number of events buffered per websocket client
	FeedBuffer int `env:"EVENTS_FEED_BUFFER" envDefault:"32"`

	// Redis Streams settings
	ConsumerGroup string `env:"EVENTS_CONSUMER_GROUP" envDefault:"helloapi-feed"`
	StreamMaxLen  int64  `env:"EVENTS_STREAM_MAXLEN" envDefault:"10000"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// TimeoutConfig holds HTTP server and shutdown timeouts
type TimeoutConfig struct {
	ReadHeader time.Duration `env:"TIMEOUT_READ_HEADER" envDefault:"5s"`
	Read       time.Duration `env:"TIMEOUT_READ" envDefault:"15s"`
	Write      time.Duration `env:"TIMEOUT_WRITE" envDefault:"15s"`
	Idle       time.Duration `env:"TIMEOUT_IDLE" envDefault:"60s"`
	Shutdown   time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads configuration from the given variables instead of the
// process environment. A nil map reads the process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AppName == "" {
		return fmt.Errorf("application name is required")
	}

	if c.Environment != EnvDevelopment && c.Environment != EnvProduction {
		return fmt.Errorf("invalid environment: %s (must be development or production)", c.Environment)
	}

	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.GRPCPort != 0 && c.GRPCPort == c.HTTPPort {
		return fmt.Errorf("HTTP and gRPC ports must differ: %d", c.HTTPPort)
	}

	// Validate events config
	switch c.Events.Backend {
	case EventsBackendMemory:
	case EventsBackendRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis events backend")
		}
		if c.Events.ConsumerGroup == "" {
			return fmt.Errorf("events consumer group is required for the redis events backend")
		}
	default:
		return fmt.Errorf("unsupported events backend: %s (must be memory or redis)", c.Events.Backend)
	}
	if c.Events.FeedBuffer < 1 {
		return fmt.Errorf("events feed buffer must be at least 1")
	}

	if c.HealthCheckInterval <= 0 {
		return fmt.Errorf("health check interval must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// IsDevelopment reports whether the service runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == EnvDevelopment
}

// RedisEnabled reports whether a Redis connection is needed
func (c *Config) RedisEnabled() bool {
	return c.Events.Backend == EventsBackendRedis
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
