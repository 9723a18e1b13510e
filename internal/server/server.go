package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-catalog/backend/config"
	"github.com/pageza/recipe-catalog/backend/internal/api"
	"github.com/pageza/recipe-catalog/backend/internal/router"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	logger *slog.Logger
}

// New creates a server for the given dependencies. A nil metricsHandler
// serves the default prometheus registry.
func New(cfg *config.Config, deps api.Deps, metricsHandler http.Handler) *Server {
	r := router.SetupRouter(cfg, deps, metricsHandler)
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		router: r,
		logger: logger,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.ServerHost, cfg.ServerPort),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr is the listen address.
func (s *Server) Addr() string {
	return s.http.Addr
}

// Start listens until Shutdown is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}
