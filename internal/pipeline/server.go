package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/furnicam/furnicam/internal/logging"
)

// Server wraps a gin.Engine exposing C10's routes, grounded on
// mbflow's pkg/server.Server (router + *http.Server + logger, an
// Option-free constructor since the pipeline has no auth/tenant
// surface of its own to configure — that lives in the gateway
// collaborator).
type Server struct {
	router          *gin.Engine
	httpServer      *http.Server
	logger          *logging.Logger
	shutdownTimeout time.Duration
}

// NewServer builds the gin router and binds it to addr.
func NewServer(svc *Service, logger *logging.Logger, port int, shutdownTimeout time.Duration) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(recoveryMiddleware(logger), loggingMiddleware(logger))

	h := NewHandlers(svc, logger)
	router.GET("/healthz", h.HandleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/jobs/dxf", h.HandleSubmitDXF)
		v1.POST("/jobs/gcode", h.HandleSubmitGCode)
		v1.POST("/jobs/drilling", h.HandleSubmitDrilling)
		v1.POST("/jobs/zip", h.HandleSubmitZIP)
		v1.GET("/jobs/:id", h.HandleGetJob)
		v1.GET("/jobs/:id/download", h.HandleGetArtifactDownload)
	}

	return &Server{
		router:          router,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
		httpServer: &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Router exposes the underlying gin.Engine, used directly by tests
// (httptest.NewServer/NewRecorder) instead of binding a real port.
func (s *Server) Router() http.Handler { return s.router }

// Run blocks serving HTTP until ctx is cancelled, then drains
// in-flight requests with the configured shutdown timeout — the same
// ListenAndServe/Shutdown pairing cmd/worker's Run/context-cancel
// pair mirrors from the other direction.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("pipeline API listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		s.logger.Info("pipeline API shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func loggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

func recoveryMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", "error", r, "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"code": "INTERNAL_ERROR", "message": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
