// Package httpapi exposes the credential service over HTTP. It is thin
// plumbing: request parsing, bearer extraction, rate limiting, and mapping
// the service's typed failures onto status codes.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"credkeeper/internal/logging"
	"credkeeper/internal/server/config"
	"credkeeper/internal/server/credentials"
	"credkeeper/internal/server/ratelimit"
)

// Server serves the /api/auth endpoints.
type Server struct {
	addr    string
	engine  *gin.Engine
	service *credentials.Service
	limiter *ratelimit.Limiter
	logger  logging.Logger
}

// NewServer wires routes onto a gin engine. limiter may be nil, in which
// case no rate limiting is applied.
func NewServer(cfg *config.Config, service *credentials.Service, limiter *ratelimit.Limiter, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{
		addr:    cfg.EndpointAddrHTTP,
		engine:  engine,
		service: service,
		limiter: limiter,
		logger:  logger.With("module", "httpapi"),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api/auth")
	api.POST("/register", s.register)
	api.POST("/login", s.rateLimited(), s.login)
	api.POST("/refresh", s.refresh)
	api.POST("/forgot-password", s.rateLimited(), s.forgotPassword)
	api.POST("/reset-password/:token", s.resetPassword)
	api.GET("/me", s.authRequired(), s.me)
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "starting HTTP server", "address", s.addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Handler exposes the underlying handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
