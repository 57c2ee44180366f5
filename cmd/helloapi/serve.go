package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aescanero/helloapi/internal/application/health"
	"github.com/aescanero/helloapi/internal/application/values"
	"github.com/aescanero/helloapi/internal/config"
	"github.com/aescanero/helloapi/pkg/adapters/events/memory"
	"github.com/aescanero/helloapi/pkg/adapters/events/redis"
	"github.com/aescanero/helloapi/pkg/adapters/metrics/prometheus"
	"github.com/aescanero/helloapi/pkg/api/grpc"
	"github.com/aescanero/helloapi/pkg/api/http"
	"github.com/aescanero/helloapi/pkg/api/openapi"
	"github.com/aescanero/helloapi/pkg/api/websocket"
	"github.com/aescanero/helloapi/pkg/ports"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP and gRPC servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(ctx context.Context) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := initLogger(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	logger.Info("starting values API",
		zap.String("app_name", cfg.AppName),
		zap.String("environment", cfg.Environment),
		zap.String("version", Version),
		zap.String("build_time", BuildTime))

	metricsCollector := prometheus.NewCollector()
	monitor := health.NewMonitor(cfg.HealthCheckInterval, metricsCollector, logger)

	// Initialize event bus
	var (
		eventBus    ports.EventBus
		redisClient *goredis.Client
	)
	if cfg.RedisEnabled() {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			MaxRetries:   cfg.Redis.MaxRetries,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})

		// Test Redis connection
		if err := redisClient.Ping(ctx).Err(); err != nil {
			_ = redisClient.Close()
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

		streams, err := redis.NewStreamsEventBus(redisClient, redis.Options{
			ConsumerGroup: cfg.Events.ConsumerGroup,
			ConsumerName:  fmt.Sprintf("helloapi-%d", os.Getpid()),
			MaxLen:        cfg.Events.StreamMaxLen,
		}, logger)
		if err != nil {
			_ = redisClient.Close()
			return fmt.Errorf("failed to create event bus: %w", err)
		}
		eventBus = streams

		monitor.AddCheck("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		eventBus = memory.NewInMemoryEventBus(logger)
	}

	// closeEvents releases the event bus and its Redis client
	closeEvents := func() {
		if err := eventBus.Close(); err != nil {
			logger.Error("event bus close error", zap.Error(err))
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Error("Redis close error", zap.Error(err))
			}
		}
	}

	// Initialize application components
	valuesService := values.NewService(eventBus, metricsCollector, logger)

	docs, err := openapi.New(openapi.Options{Title: cfg.AppName, Version: Version})
	if err != nil {
		closeEvents()
		return fmt.Errorf("failed to build API documents: %w", err)
	}

	// Initialize API servers
	httpServer := http.NewServer(&http.Config{
		Addr:           cfg.GetHTTPAddr(),
		Development:    cfg.IsDevelopment(),
		AllowedOrigins: cfg.AllowedOrigins,
		Timeouts: http.Timeouts{
			ReadHeader: cfg.Timeouts.ReadHeader,
			Read:       cfg.Timeouts.Read,
			Write:      cfg.Timeouts.Write,
			Idle:       cfg.Timeouts.Idle,
		},
		Values:         valuesService,
		Docs:           docs,
		Health:         monitor,
		Metrics:        metricsCollector,
		MetricsHandler: metricsCollector.Handler(),
		Logger:         logger,
	})

	// Add the event feed to the HTTP server
	feedHandler := websocket.NewHandler(&websocket.Config{
		EventBus: eventBus,
		Metrics:  metricsCollector,
		Logger:   logger,
		Buffer:   cfg.Events.FeedBuffer,
	})
	httpServer.SetupFeed(feedHandler)

	var grpcServer *grpc.Server
	if cfg.GRPCPort != 0 {
		grpcServer, err = grpc.NewServer(&grpc.Config{
			Addr:   cfg.GetGRPCAddr(),
			Logger: logger,
		})
		if err != nil {
			closeEvents()
			return fmt.Errorf("failed to create gRPC server: %w", err)
		}
		monitor.OnChange(grpcServer.SetServing)
	}

	monitor.Start()

	// Start servers
	errCh := make(chan error, 2)
	go func() {
		if err := httpServer.Start(); err != nil {
			errCh <- err
		}
	}()

	if grpcServer != nil {
		go func() {
			if err := grpcServer.Start(); err != nil {
				errCh <- err
			}
		}()
	}

	logger.Info("values API started",
		zap.Int("http_port", cfg.HTTPPort),
		zap.Int("grpc_port", cfg.GRPCPort),
		zap.String("events_backend", cfg.Events.Backend))

	// Wait for interrupt signal or a server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("server failed", zap.Error(runErr))
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeouts.Shutdown)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	if grpcServer != nil {
		if err := grpcServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("gRPC server shutdown error", zap.Error(err))
		}
	}

	monitor.Stop()

	closeEvents()

	logger.Info("values API shut down complete")
	return runErr
}
