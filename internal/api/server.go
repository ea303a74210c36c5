// internal/api/server.go

// Package api is the HTTP boundary of the assistant.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"assistant-engine/internal/common/config"
	"assistant-engine/internal/common/database"
	"assistant-engine/internal/common/logger"
	"assistant-engine/internal/common/validation"
	"assistant-engine/internal/conversation"
)

// ChatService answers chat messages.
type ChatService interface {
	HandleMessage(ctx context.Context, sessionID, message, surface string) (*conversation.Result, error)
}

type Server struct {
	config     config.ServerConfig
	chat       ChatService
	checkers   []database.Checker
	validator  *validation.Validator
	logger     logger.Logger
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer wires routes and middleware. checkers are pinged by /ready.
func NewServer(cfg config.ServerConfig, environment string, chat ChatService, log logger.Logger, checkers ...database.Checker) *Server {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:    cfg,
		chat:      chat,
		checkers:  checkers,
		validator: validation.MustValidator(validation.ChatRequestSchema),
		logger:    log.With(map[string]interface{}{"component": "http"}),
		router:    gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Address,
		Handler:      s.router,
		ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.WriteTimeout),
	}
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(recovery(s.logger))
	s.router.Use(cors(s.config.AllowedOrigins))
	s.router.Use(requestLogger(s.logger))
	s.router.Use(httpMetrics())
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)
	s.router.GET("/ready", s.ready)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api")
	api.POST("/chat", s.handleChat)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", map[string]interface{}{"address": s.config.Address})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(s.config.ShutdownTimeout))
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

const readinessTimeout = 2 * time.Second
