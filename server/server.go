// Package server exposes a list registry over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/ardnew/maillist/lang"
	"github.com/ardnew/maillist/log"
	"github.com/ardnew/maillist/metrics"
	"github.com/ardnew/maillist/pkg"
)

// DefaultAddr is the default listen address.
const DefaultAddr = "localhost:8025"

// Server routes HTTP requests to an [lang.Evaluator].
type Server struct {
	eval    *lang.Evaluator
	metrics *metrics.Metrics
	logger  log.Logger
	router  chi.Router
}

// Option configures a [Server].
type Option = pkg.Option[Server]

// WithMetrics records request metrics in m and serves them at /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s Server) Server {
		s.metrics = m

		return s
	}
}

// WithLogger sets the request logger.
func WithLogger(l log.Logger) Option {
	return func(s Server) Server {
		s.logger = l

		return s
	}
}

// New returns a Server evaluating requests with e.
func New(e *lang.Evaluator, opts ...Option) *Server {
	s := pkg.Apply(Server{eval: e, logger: log.Default()}, opts...)
	s.router = s.routes()

	return &s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	if s.metrics != nil {
		r.Use(s.observe)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/healthz", s.handleHealth)
	r.Get("/eval/{expression}", s.handleEval)
	r.Post("/eval", s.handleEval)
	r.Get("/lists", s.handleLists)
	r.Get("/lists/{name}", s.handleList)

	return r
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// HTTPServer returns an [http.Server] serving s on addr.
func (s *Server) HTTPServer(ctx context.Context, addr string) *http.Server {
	if addr == "" {
		addr = DefaultAddr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

// Serve runs an HTTP server on addr until ctx is done, then shuts it down,
// waiting at most timeout for active requests.
func (s *Server) Serve(ctx context.Context, addr string, timeout time.Duration) error {
	srv := s.HTTPServer(ctx, addr)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.InfoContext(ctx, "server listening", slog.String("addr", srv.Addr))

		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		s.logger.InfoContext(ctx, "server shutting down", slog.Duration("timeout", timeout))

		return srv.Shutdown(sctx)
	})

	return g.Wait()
}
