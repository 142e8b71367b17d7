package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ufilesorg/promptly/internal/config"
	"github.com/ufilesorg/promptly/internal/logger"
	"github.com/ufilesorg/promptly/internal/services"
)

// APIResponse is the uniform envelope for all endpoints
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Server hosts the HTTP API
type Server struct {
	cfg        *config.Config
	answers    *services.AnswerService
	translator *services.TranslateService
	router     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a new API server
func NewServer(cfg *config.Config, answers *services.AnswerService, translator *services.TranslateService) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		cfg:        cfg,
		answers:    answers,
		translator: translator,
		router:     gin.New(),
	}

	s.router.Use(gin.Recovery())
	s.router.Use(s.corsMiddleware())
	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.health)

	ai := s.router.Group("/ai")
	{
		ai.POST("/translate", s.translate)
		ai.POST("/search", s.search)
		ai.POST("/raw", s.rawAnswer)
		ai.POST("/vision/:key", s.visionAnswer)
		ai.POST("/:key", s.answer)
		ai.GET("/:key/fields", s.templateFields)
	}
}

// Run starts the server and blocks until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API server listening on %s", addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down API server")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router, used by tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) corsMiddleware() gin.HandlerFunc {
	origin := s.cfg.Server.CORSOrigin
	if origin == "" {
		origin = "*"
	}

	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// health handles GET /health
func (s *Server) health(c *gin.Context) {
	s.successResponse(c, gin.H{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, APIResponse{
		Success: false,
		Message: message,
	})
}
