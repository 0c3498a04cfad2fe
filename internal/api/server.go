// Package api exposes the intake workflow over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/drarshadhere/mypcos-ai/internal/domain"
	"github.com/drarshadhere/mypcos-ai/internal/middleware"
	"github.com/drarshadhere/mypcos-ai/internal/service"
)

// ReportReader retrieves persisted report records.
type ReportReader interface {
	GetByID(ctx context.Context, id string) (*domain.ReportRecord, error)
	ListByPatient(ctx context.Context, patientName string, limit, offset int) ([]*domain.ReportRecord, error)
}

// ProgressReader retrieves progress tracker history.
type ProgressReader interface {
	History(ctx context.Context, patientName string) ([]*domain.ProgressRecord, error)
	Patients(ctx context.Context) ([]string, error)
}

// HealthChecker reports storage backend health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server represents the HTTP server. The report reader, progress reader, and
// health checker are optional; a nil collaborator disables its endpoints.
type Server struct {
	config   *domain.Config
	intake   *service.IntakeService
	renderer service.DocumentRenderer
	reports  ReportReader
	progress ProgressReader
	health   HealthChecker
	logger   *logrus.Logger
	router   *gin.Engine
	server   *http.Server
}

// NewServer creates a new HTTP server instance
func NewServer(
	config *domain.Config,
	intake *service.IntakeService,
	renderer service.DocumentRenderer,
	reports ReportReader,
	progress ProgressReader,
	health HealthChecker,
	logger *logrus.Logger,
) *Server {
	if config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(requestIDMiddleware())

	s := &Server{
		config:   config,
		intake:   intake,
		renderer: renderer,
		reports:  reports,
		progress: progress,
		health:   health,
		logger:   logger,
		router:   router,
	}

	s.setupRoutes()
	return s
}

// Start starts the HTTP server and blocks until ctx is cancelled.
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

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("starting server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/reports", s.handleGenerateReport)
		v1.GET("/reports/:id", s.handleGetReport)
		v1.GET("/reports/:id/pdf", s.handleGetReportPDF)
		v1.GET("/patients/:name/reports", s.handleListReports)
		v1.GET("/patients/:name/progress", s.handleProgressHistory)
		v1.GET("/patients", s.handleListPatients)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}
