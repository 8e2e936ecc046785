// Package server exposes story PDF generation over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	storypdf "github.com/alnah/go-storypdf"
)

// Service is the generation pipeline served over HTTP.
// *storypdf.Generator satisfies it.
type Service interface {
	Generate(ctx context.Context, doc *storypdf.StoryDocument, opts storypdf.GenerateOptions) (*storypdf.ArtifactRecord, error)
	Preview(ctx context.Context, doc *storypdf.StoryDocument, outputPath string) (*storypdf.PreviewResult, error)
	Stats(ctx context.Context) storypdf.StoreStats
	PruneOlderThan(ctx context.Context, maxAge time.Duration) storypdf.PruneResult
	Engine() storypdf.Engine
}

var _ Service = (*storypdf.Generator)(nil)

// Defaults applied by New when an option is zero.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultRetentionMaxAge = 24 * time.Hour
	readHeaderTimeout      = 10 * time.Second
)

// Options configures a Server.
type Options struct {
	Addr            string
	ShutdownTimeout time.Duration
	// RetentionMaxAge is the default age for prune requests and the pruner.
	RetentionMaxAge time.Duration
	// RetentionInterval is the pruner period. Zero disables the pruner.
	RetentionInterval time.Duration
	Version           string
	Logger            *zap.Logger
}

// Server is the HTTP front end of a Service.
type Server struct {
	svc     Service
	opts    Options
	logger  *zap.Logger
	handler http.Handler
}

// New builds a Server. Zero options take their defaults.
func New(svc Service, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.RetentionMaxAge <= 0 {
		opts.RetentionMaxAge = DefaultRetentionMaxAge
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	s := &Server{svc: svc, opts: opts, logger: opts.Logger}
	s.handler = s.setupRouter()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) setupRouter() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(s.logger))
	r.Use(RequestID())
	r.Use(Metrics())
	r.Use(Logger(s.logger))

	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		stories := v1.Group("/stories")
		stories.POST("/pdf", s.handleGenerate)
		stories.POST("/preview", s.handlePreview)

		artifacts := v1.Group("/artifacts")
		artifacts.GET("/stats", s.handleStats)
		artifacts.POST("/prune", s.handlePrune)
	}

	return r
}

// Run serves until ctx is canceled, then drains in-flight requests for up
// to ShutdownTimeout. The pruner runs alongside when RetentionInterval > 0.
// Run does not shut the engine down.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	pruneCtx, stopPruner := context.WithCancel(ctx)
	defer stopPruner()
	prunerDone := make(chan struct{})
	go func() {
		defer close(prunerDone)
		if s.opts.RetentionInterval > 0 {
			newPruner(s.svc, s.opts.RetentionMaxAge, s.opts.RetentionInterval, s.logger).run(pruneCtx)
		}
	}()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		serveErr <- srv.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		stopPruner()
		<-prunerDone
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving http: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", zap.Duration("timeout", s.opts.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	err := srv.Shutdown(shutdownCtx)
	<-prunerDone
	if err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
