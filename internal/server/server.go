// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the pipeline over HTTP and as a serverless event
// handler.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/newspulse/internal/archive"
	"github.com/pdiddy/newspulse/internal/pipeline"
	"github.com/pdiddy/newspulse/pkg/types"
)

// Runner executes one analysis request. *pipeline.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, req types.AnalysisRequest) (types.AnalysisResponse, error)
}

// RunStore reads archived runs. *archive.Store satisfies it.
type RunStore interface {
	List(ctx context.Context, limit int) ([]archive.Run, error)
	Get(ctx context.Context, id string) (archive.Run, error)
	Search(ctx context.Context, query string, limit int) ([]archive.Hit, error)
}

// Server holds the HTTP handlers. Runs may be nil, in which case the
// history endpoints answer 404.
type Server struct {
	runner Runner
	runs   RunStore
	logger *slog.Logger
}

// New returns a Server for runner and an optional run store.
func New(runner Runner, runs RunStore, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{runner: runner, runs: runs, logger: logger}
}

// Router builds the gin engine. allowOrigin is the CORS origin; empty or
// "*" allows every origin.
func (s *Server) Router(allowOrigin string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}
	if allowOrigin == "" || allowOrigin == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = []string{allowOrigin}
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", s.health)
	r.POST("/analyze", s.analyze)
	r.GET("/runs", s.listRuns)
	r.GET("/runs/:id", s.getRun)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) analyze(c *gin.Context) {
	var req types.AnalysisRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.AnalysisResponse{Success: false, Error: "invalid request body: " + err.Error()})
			return
		}
	}

	resp, err := s.runner.Run(c.Request.Context(), req)
	if err != nil {
		if resp.Error == "" {
			resp = types.AnalysisResponse{Success: false, Error: err.Error()}
		}
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrInvalidRequest) {
			status = http.StatusBadRequest
		}
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) listRuns(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive is disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	if q := c.Query("q"); q != "" {
		hits, err := s.runs.Search(c.Request.Context(), q, limit)
		if err != nil {
			s.logger.Error("searching archive", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
			return
		}
		if hits == nil {
			hits = []archive.Hit{}
		}
		c.JSON(http.StatusOK, gin.H{"hits": hits})
		return
	}

	runs, err := s.runs.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("listing runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing runs failed"})
		return
	}
	if runs == nil {
		runs = []archive.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) getRun(c *gin.Context) {
	if s.runs == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "archive is disabled"})
		return
	}

	run, err := s.runs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, archive.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("loading run", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading run failed"})
		return
	}
	c.JSON(http.StatusOK, run)
}

// ListenAndServe serves the router on addr until ctx is cancelled, then
// shuts down, waiting up to shutdownTimeout for in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr, allowOrigin string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(allowOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}

const shutdownTimeout = 10 * time.Second
