// Package api serves a tracker over a local JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/sipstreak/internal/logger"
	"github.com/julianstephens/sipstreak/internal/metrics"
	"github.com/julianstephens/sipstreak/internal/tracker"
)

// Server owns the router. Mutating handlers run one at a time so each
// response reflects exactly its own change.
type Server struct {
	tracker *tracker.Tracker
	metrics *metrics.Manager
	engine  *gin.Engine
	mu      sync.Mutex
	started time.Time
}

// New builds a Server. m may be nil, in which case /metrics is not mounted.
func New(t *tracker.Tracker, m *metrics.Manager) *Server {
	gin.SetMode(gin.ReleaseMode)

	s := &Server{tracker: t, metrics: m, started: time.Now()}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	s.routes(r)
	s.engine = r
	return s
}

// Handler exposes the router for tests and custom servers.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/healthz", s.health)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	api := r.Group("/api")
	{
		api.GET("/today", s.today)
		api.POST("/drink", s.drink)
		api.POST("/undo", s.undo)
		api.GET("/history", s.history)
		api.GET("/chart/:day", s.chart)
		api.GET("/days", s.days)
		api.PUT("/goal", s.setGoal)
		api.GET("/profile", s.profile)
		api.PUT("/profile", s.setProfile)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		elapsed := time.Since(start)
		logger.Debug("HTTP request",
			"method", c.Request.Method,
			"route", route,
			"status", c.Writer.Status(),
			"elapsed", elapsed,
		)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, c.Request.Method, c.Writer.Status(), elapsed)
		}
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("API shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
