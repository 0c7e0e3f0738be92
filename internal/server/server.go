// Package server exposes worksheet generation and history over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/worksheet/internal/config"
	"github.com/abhisek/worksheet/internal/store"
	"github.com/abhisek/worksheet/internal/worksheet"
)

// Generator produces worksheets. *problemgen.Service implements it.
type Generator interface {
	GenerateMath(ctx context.Context, s worksheet.MathSettings) (*worksheet.Worksheet, error)
	LocalMath(s worksheet.MathSettings) (*worksheet.Worksheet, error)
	GenerateHanja(ctx context.Context, s worksheet.HanjaSettings) (*worksheet.Worksheet, error)
	GenerateEnglish(ctx context.Context, s worksheet.EnglishSettings) (*worksheet.Worksheet, error)
}

// Server is the HTTP API.
type Server struct {
	gen      Generator
	repo     store.WorksheetRepo
	defaults func() config.Defaults
	logger   *slog.Logger
	metrics  *Metrics
	engine   *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithRepo enables saving generated worksheets and the history routes.
func WithRepo(repo store.WorksheetRepo) Option {
	return func(s *Server) { s.repo = repo }
}

// WithDefaults sets the source of request defaults. It is called on every
// request so hot-reloaded values take effect immediately.
func WithDefaults(fn func() config.Defaults) Option {
	return func(s *Server) { s.defaults = fn }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New builds a Server and its routes.
func New(gen Generator, opts ...Option) *Server {
	s := &Server{
		gen:      gen,
		defaults: func() config.Defaults { return config.DefaultConfig().Defaults },
		logger:   slog.Default(),
		metrics:  newMetrics(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.metrics.middleware(), s.requestLogger())

	r.GET("/health", s.health)
	r.GET("/metrics", s.metrics.handler())

	api := r.Group("/api")
	{
		api.GET("/defaults", s.getDefaults)
		api.POST("/worksheets/math", s.createMath)
		api.POST("/worksheets/hanja", s.createHanja)
		api.POST("/worksheets/english", s.createEnglish)
		api.GET("/worksheets", s.listWorksheets)
		api.GET("/worksheets/:id", s.getWorksheet)
		api.GET("/worksheets/:id/print", s.printWorksheet)
		api.DELETE("/worksheets/:id", s.deleteWorksheet)
	}
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
