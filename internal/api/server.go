// Package api exposes the instrument catalog and the evaluation pipeline
// over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/psych-instrument-server/internal/catalog"
	"github.com/psych-instrument-server/internal/domain"
	"github.com/psych-instrument-server/internal/middleware"
	"github.com/psych-instrument-server/internal/service"
)

// Server is the HTTP front of the scoring engine.
type Server struct {
	config  *domain.Config
	logger  *logrus.Logger
	catalog *catalog.Catalog
	scoring *service.ScoringService

	// structures caches rendered instrument projections per (id, context).
	// Definitions are immutable after load, so entries never go stale.
	structures *lru.Cache[string, *service.InstrumentStructure]

	router *gin.Engine
	server *http.Server
}

// NewServer wires routes and middleware around the loaded catalog.
func NewServer(cfg *domain.Config, logger *logrus.Logger, cat *catalog.Catalog) (*Server, error) {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	structures, err := lru.New[string, *service.InstrumentStructure](cfg.Cache.StructureEntries)
	if err != nil {
		return nil, fmt.Errorf("creating structure cache: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.RateLimit(cfg.RateLimit))
	router.Use(middleware.RequestLogger(logger))

	s := &Server{
		config:     cfg,
		logger:     logger,
		catalog:    cat,
		scoring:    service.NewScoringService(logger),
		structures: structures,
		router:     router,
	}
	s.setupRoutes()
	return s, nil
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.config.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	s.logger.WithField("addr", addr).Info("HTTP server listening")

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/instruments", s.handleListInstruments)
		v1.GET("/instruments/:id", s.handleGetStructure)
		v1.POST("/instruments/:id/validate", s.handleValidate)
		v1.POST("/instruments/:id/score", s.handleScore)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"instruments": len(s.catalog.IDs()),
	})
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length, X-Correlation-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
