package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"review-sentiment/services"
	"review-sentiment/storage"
	"review-sentiment/utils"
)

// Server exposes the review pipeline over HTTP for a presentation layer.
type Server struct {
	router   *gin.Engine
	handlers *Handlers
}

// New creates a Server. writer may be nil when persistence is disabled.
func New(analyzer *services.Analyzer, scorer services.Scorer, serviceURL string,
	writer storage.ReviewWriter, gatherer prometheus.Gatherer, logger *utils.Logger, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:   gin.New(),
		handlers: NewHandlers(analyzer, scorer, serviceURL, writer, logger),
	}
	s.router.Use(gin.Recovery())
	s.setupRoutes(gatherer)
	return s
}

func (s *Server) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/status", s.handlers.Status)
		api.POST("/sentiment", s.handlers.AnalyzeText)
		api.POST("/reviews", s.handlers.UploadReviews)
		api.GET("/reviews", s.handlers.CurrentReviews)
	}

	if gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// Handler returns the HTTP handler, for use with http.Server or tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
