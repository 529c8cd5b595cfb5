// Package mockserver serves a paged collection over HTTP using the same
// query parameters the HTTP provider sends.
package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"scrollgrid/internal/metrics"
	"scrollgrid/internal/provider"
	"scrollgrid/internal/provider/httpapi"
)

// Options configures a Server
type Options struct {
	Logger   zerolog.Logger
	Metrics  metrics.ServerMetrics
	Gatherer prometheus.Gatherer // serves /metrics when set
}

type Server struct {
	source   provider.Provider
	log      zerolog.Logger
	metrics  metrics.ServerMetrics
	gatherer prometheus.Gatherer
	router   *chi.Mux
}

// New creates a server answering page requests from source
func New(source provider.Provider, opts Options) *Server {
	if opts.Metrics == nil {
		opts.Metrics = metrics.Noop{}
	}

	s := &Server{
		source:   source,
		log:      opts.Logger.With().Str("component", "mockserver").Logger(),
		metrics:  opts.Metrics,
		gatherer: opts.Gatherer,
		router:   chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggerMiddleware)
	s.router.Use(middleware.Recoverer)

	s.routes()
	return s
}

func (s *Server) loggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			took := time.Since(start)
			s.metrics.ObserveRequest(route, ww.Status(), took)
			s.log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("query", r.URL.RawQuery).
				Int("status", ww.Status()).
				Dur("duration", took).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request completed")
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) routes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get(httpapi.ServersPath, s.handleServers)
	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleServers(w http.ResponseWriter, r *http.Request) {
	req, err := httpapi.DecodeQuery(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	page, err := s.source.FetchPage(r.Context(), req)
	if err != nil {
		status := http.StatusServiceUnavailable
		var pe *provider.Error
		if errors.As(err, &pe) && pe.StatusCode != 0 {
			status = pe.StatusCode
		}
		s.log.Warn().Err(err).Int("status", status).Msg("page request rejected")
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(page); err != nil {
		s.log.Error().Err(err).Msg("failed to encode page")
	}
}

// Start serves on addr until ctx is cancelled
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			s.log.Error().Err(err).Msg("failed to shutdown server")
		}
	}()

	s.log.Info().Str("addr", addr).Msg("starting server")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
