// Package server exposes people, resolved families, family graphs and
// kinship paths over HTTP.
package server

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"pedigree/internal/gedcom"
	"pedigree/internal/logger"
	"pedigree/internal/resolver"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

type Server struct {
	echo        *echo.Echo
	snap        atomic.Pointer[Snapshot]
	logger      *zap.SugaredLogger
	maxHops     int
	concurrency int
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.logger = logger.OrNop(l) }
}

// WithMaxHops sets the default hop limit for /relate.
func WithMaxHops(n int) Option {
	return func(s *Server) { s.maxHops = n }
}

// WithConcurrency sets the lookup fan-out used by reloads and /relate.
func WithConcurrency(n int) Option {
	return func(s *Server) { s.concurrency = n }
}

// New creates a server over snap.
func New(snap *Snapshot, opts ...Option) *Server {
	s := &Server{
		logger:      logger.OrNop(nil),
		maxHops:     12,
		concurrency: resolver.DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(snap)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debugw("request",
				"uri", v.URI,
				"status", v.Status,
				logger.FieldDurationMS, v.Latency.Milliseconds(),
			)
			return nil
		},
	}))

	s.echo = e
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Snapshot returns the data currently served.
func (s *Server) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Swap replaces the served snapshot and returns the previous one. Requests
// already running keep the snapshot they started with.
func (s *Server) Swap(next *Snapshot) *Snapshot {
	return s.snap.Swap(next)
}

// Reload re-parses the record file at path and swaps in a fresh snapshot.
func (s *Server) Reload(path string) error {
	start := time.Now()
	store, err := gedcom.ParseFile(path)
	if err != nil {
		return err
	}
	s.Swap(SnapshotFromStore(store, s.concurrency, s.logger))
	s.logger.Infow("records reloaded",
		logger.FieldPath, path,
		logger.FieldCount, store.NumIndividuals(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("starting server", logger.FieldAddress, addr)
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorw("failed to shutdown server", logger.FieldError, err)
		return err
	}
	return nil
}
