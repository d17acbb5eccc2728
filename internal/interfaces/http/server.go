// Package http assembles the gin engine and HTTP server for the analysis
// API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/safespeak/internal/application/moderation"
	"github.com/turtacn/safespeak/internal/config"
	"github.com/turtacn/safespeak/internal/infrastructure/monitoring/logging"
	monPrometheus "github.com/turtacn/safespeak/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/safespeak/internal/interfaces/http/handlers"
	"github.com/turtacn/safespeak/internal/interfaces/http/middleware"
	"github.com/turtacn/safespeak/pkg/errors"
)

// limiterCleanupInterval bounds the rate limiter's bucket map: keys are
// derived from client-supplied forwarding headers, so stale buckets must be
// reaped.
const limiterCleanupInterval = 5 * time.Minute

// Server wraps the HTTP server and its routing engine.
type Server struct {
	srv     *http.Server
	engine  *gin.Engine
	limiter *middleware.TokenBucketLimiter
	logger  logging.Logger
}

// Options carries the server's collaborators.
type Options struct {
	Config    *config.Config
	Service   *moderation.Service
	Collector monPrometheus.MetricsCollector
	Metrics   *monPrometheus.AppMetrics
	Logger    logging.Logger
	Version   string
}

// NewServer wires the middleware chain and routes.
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, errors.New(errors.CodeInvalidParam, "config is required")
	}
	if opts.Service == nil {
		return nil, errors.New(errors.CodeInvalidParam, "moderation service is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	gin.SetMode(ginMode(opts.Config.Server.Mode))
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.RequestLogging(logger, opts.Metrics))
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	s := &Server{
		engine: engine,
		logger: logger.Named("server"),
		srv: &http.Server{
			Addr:         fmt.Sprintf(":%d", opts.Config.Server.Port),
			Handler:      engine,
			ReadTimeout:  opts.Config.Server.ReadTimeout,
			WriteTimeout: opts.Config.Server.WriteTimeout,
		},
	}

	handlers.NewHealthHandler(opts.Version).Register(engine)

	if opts.Config.Metrics.Enabled && opts.Collector != nil {
		engine.GET(opts.Config.Metrics.Path, gin.WrapH(opts.Collector.Handler()))
	}

	api := engine.Group("/api/v1")
	if opts.Config.RateLimit.Enabled {
		s.limiter = middleware.NewTokenBucketLimiter(
			opts.Config.RateLimit.RPS,
			opts.Config.RateLimit.Burst,
			limiterCleanupInterval,
		)
		api.Use(middleware.RateLimit(s.limiter))
	}

	analysisHandler, err := handlers.NewAnalysisHandler(
		opts.Service,
		opts.Config.FallbackLevel(),
		opts.Config.Server.MaxBodySize,
	)
	if err != nil {
		return nil, err
	}
	analysisHandler.Register(api)

	return s, nil
}

func ginMode(mode string) string {
	switch mode {
	case "debug":
		return gin.DebugMode
	case "test":
		return gin.TestMode
	default:
		return gin.ReleaseMode
	}
}

// Start blocks serving requests until Stop is called or the listener fails.
func (s *Server) Start() error {
	s.logger.Info("http server listening", logging.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, errors.CodeInternal, "http server failed")
	}
	return nil
}

// Stop drains in-flight requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.limiter != nil {
		defer s.limiter.Stop()
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "http server shutdown failed")
	}
	return nil
}

// Handler exposes the routing engine, for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
