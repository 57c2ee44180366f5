package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aescanero/helloapi/internal/application/health"
	"github.com/aescanero/helloapi/internal/application/values"
	"github.com/aescanero/helloapi/pkg/api/openapi"
	"github.com/aescanero/helloapi/pkg/ports"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server represents the HTTP API server
type Server struct {
	router  *gin.Engine
	server  *http.Server
	values  *values.Service
	docs    *openapi.Docs
	health  *health.Monitor
	metrics ports.MetricsCollector
	logger  *zap.Logger
}

// Timeouts holds HTTP server timeouts
type Timeouts struct {
	ReadHeader time.Duration
	Read       time.Duration
	Write      time.Duration
	Idle       time.Duration
}

// Config holds HTTP server configuration
type Config struct {
	// Addr is the listen address, e.g. ":8080"
	Addr           string
	Development    bool
	AllowedOrigins []string
	Timeouts       Timeouts

	Values *values.Service
	Docs   *openapi.Docs
	Health *health.Monitor

	// Metrics records request metrics; MetricsHandler serves /metrics. Both are optional.
	Metrics        ports.MetricsCollector
	MetricsHandler http.Handler

	Logger *zap.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *Config) *Server {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger(logger))
	if cfg.Metrics != nil {
		router.Use(requestMetrics(cfg.Metrics))
	}
	router.Use(securityHeaders(!cfg.Development))
	router.Use(corsMiddleware(cfg.AllowedOrigins))

	s := &Server{
		router:  router,
		values:  cfg.Values,
		docs:    cfg.Docs,
		health:  cfg.Health,
		metrics: cfg.Metrics,
		logger:  logger,
	}

	s.setupRoutes(cfg.MetricsHandler)

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.Timeouts.ReadHeader,
		ReadTimeout:       cfg.Timeouts.Read,
		WriteTimeout:      cfg.Timeouts.Write,
		IdleTimeout:       cfg.Timeouts.Idle,
	}

	return s
}

// setupRoutes configures API routes
func (s *Server) setupRoutes(metricsHandler http.Handler) {
	s.router.NoRoute(s.handleNoRoute)
	s.router.NoMethod(s.handleNoMethod)

	// Health check
	s.router.GET("/health", s.handleHealth)

	// Metrics
	if metricsHandler != nil {
		s.router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// API discovery
	if s.docs != nil {
		s.router.SetHTMLTemplate(openapi.UITemplate())
		s.router.GET(openapi.UIPath, s.handleSwaggerUI)
		s.router.GET(openapi.SwaggerPath, s.handleSwaggerDocument)
		s.router.GET(openapi.OpenAPIPath, s.handleOpenAPIDocument)
	}

	// Values
	api := s.router.Group("/api")
	{
		api.GET("/values", s.handleListValues)
		api.GET("/values/:id", s.handleGetValue)
		api.POST("/values", s.handleCreateValue)
		api.PUT("/values/:id", s.handleUpdateValue)
		api.DELETE("/values/:id", s.handleDeleteValue)
	}
}

// SetupFeed adds the event feed WebSocket handler to the server
func (s *Server) SetupFeed(handler interface{ HandleFeed(*gin.Context) }) {
	s.router.GET("/api/events/ws", handler.HandleFeed)
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.logger.Info("HTTP server shut down complete")
	return nil
}
