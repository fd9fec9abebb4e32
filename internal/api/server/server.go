package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-crowdfund/internal/adapter"
	"github.com/feral-file/ff-crowdfund/internal/api/middleware"
	"github.com/feral-file/ff-crowdfund/internal/api/rest"
	"github.com/feral-file/ff-crowdfund/internal/ledger"
	"github.com/feral-file/ff-crowdfund/internal/logger"
)

// Config holds the server configuration
type Config struct {
	Debug            bool
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	Auth             middleware.AuthConfig
	SignatureMaxSkew time.Duration
	// Nonces remembers accepted signed requests across instances sharing the ledger store
	Nonces middleware.NonceStore
}

// Server wraps the HTTP server
type Server struct {
	config     Config
	ledger     ledger.Ledger
	clock      adapter.Clock
	httpServer *http.Server
}

// New creates a new API server
func New(cfg Config, l ledger.Ledger, clock adapter.Clock) *Server {
	return &Server{
		config: cfg,
		ledger: l,
		clock:  clock,
	}
}

// Router builds the gin engine with middleware and routes
func (s *Server) Router() *gin.Engine {
	// Set Gin mode based on debug flag
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Setup middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.SetupCORS())

	write := []gin.HandlerFunc{
		middleware.Signatures(middleware.SignatureConfig{
			MaxSkew: s.config.SignatureMaxSkew,
			Clock:   s.clock,
			Nonces:  s.config.Nonces,
		}),
	}
	if s.config.Auth.Enabled() {
		write = append([]gin.HandlerFunc{middleware.Auth(s.config.Auth)}, write...)
	} else {
		logger.Warn("Operator authentication disabled, writes accept any client")
	}

	rest.SetupRoutes(router, rest.NewHandler(s.ledger), write...)
	return router
}

// Start initializes and starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}

	logger.Info("Starting API server",
		zap.String("address", addr),
	)

	// Start server
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down API server")

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	return nil
}
