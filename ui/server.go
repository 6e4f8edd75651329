package ui

import (
	"net/http"

	"focusgate/app"
	"focusgate/internal"

	"github.com/gin-gonic/gin"
)

// Server is the JSON API consumed by the focus client
type Server struct {
	router  *gin.Engine
	service *app.FocusService
	logger  *internal.Logger
}

// NewServer creates the API server around the lifecycle manager
func NewServer(service *app.FocusService, logger *internal.Logger, ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		router:  router,
		service: service,
		logger:  logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api/session")
	{
		api.POST("/start", s.handleStart)
		api.POST("/end", s.handleEnd)
		api.POST("/timer-complete", s.handleTimerComplete)
		api.POST("/abandon", s.handleAbandon)
		api.GET("/status", s.handleStatus)
		api.GET("/can-start", s.handleCanStart)
	}
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Router exposes the handler for tests and for mounting
func (s *Server) Router() http.Handler {
	return s.router
}

// Run starts the server on the given address
func (s *Server) Run(addr string) error {
	s.logger.Info("api server listening on %s", addr)
	return s.router.Run(addr)
}
