// CLAUDE:SUMMARY chi-based HTTP JSON API for snapshots: transform, adaptive search, ground truth, health and metrics.
// Package server exposes the snapshot pipeline over HTTP.
//
//	POST /v1/snapshot           one Transform run
//	POST /v1/snapshot/adaptive  AdaptiveTransform
//	GET  /v1/ground-truth       the classification tables in use
//	GET  /v1/cache/stats        cache counters (when a cache is configured)
//	GET  /healthz               liveness
//	GET  /metrics               Prometheus exposition
//
// A request carries either the markup itself or, when the server has a
// Loader, a URL to fetch. An optional selector picks the root element.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hazyhaar/domsnap/domtree"
	"github.com/hazyhaar/domsnap/idgen"
	"github.com/hazyhaar/domsnap/kit"
	"github.com/hazyhaar/domsnap/snapcache"
	"github.com/hazyhaar/domsnap/snapshot"
	"github.com/hazyhaar/domsnap/source"
)

var (
	errBadRequest = errors.New("bad request")
	errUpstream   = errors.New("upstream")
)

// Config configures a Server.
type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	MaxBodyBytes      int64

	Snapshotter *snapshot.Snapshotter
	// Options apply to requests that carry none. Default:
	// snapshot.DefaultOptions().
	Options *snapshot.Options
	// Cache stores results. Nil disables caching.
	Cache *snapcache.Cache
	// Loader fetches the url of a request. Nil rejects url requests.
	Loader *source.Loader
	// Gatherer is served on /metrics. Default: prometheus.DefaultGatherer.
	Gatherer   prometheus.Gatherer
	RequestIDs idgen.Generator
	Logger     *slog.Logger
}

func (c *Config) defaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = 10 * time.Second
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 10 << 20
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Snapshotter == nil {
		c.Snapshotter = snapshot.New(snapshot.Config{Logger: c.Logger})
	}
	if c.Options == nil {
		opts := snapshot.DefaultOptions()
		c.Options = &opts
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.RequestIDs == nil {
		c.RequestIDs = idgen.Request
	}
}

// Server is the HTTP API.
type Server struct {
	cfg    Config
	logger *slog.Logger
	router chi.Router
}

// New creates a Server and builds its routes.
func New(cfg Config) *Server {
	cfg.defaults()
	s := &Server{cfg: cfg, logger: cfg.Logger}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestID(s.cfg.RequestIDs, s.logger))
	r.Use(HeadToGet)
	r.Use(SecurityHeaders(DefaultHeaders()))
	r.Use(MaxBody(s.cfg.MaxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/snapshot", s.endpoint("snapshot", s.transform, kit.DecodeJSON[SnapshotRequest]()))
		r.Post("/snapshot/adaptive", s.endpoint("snapshot_adaptive", s.adaptive, kit.DecodeJSON[AdaptiveRequest]()))
		r.Get("/ground-truth", func(w http.ResponseWriter, _ *http.Request) {
			kit.WriteJSON(w, http.StatusOK, s.cfg.Snapshotter.Tables())
		})
		if s.cfg.Cache != nil {
			r.Get("/cache/stats", func(w http.ResponseWriter, r *http.Request) {
				st, err := s.cfg.Cache.Stats(r.Context())
				if err != nil {
					kit.WriteError(w, http.StatusInternalServerError, err)
					return
				}
				kit.WriteJSON(w, http.StatusOK, st)
			})
		}
	})
	return r
}

func (s *Server) endpoint(name string, e kit.Endpoint, decode func(*http.Request) (any, error)) http.HandlerFunc {
	return kit.HTTPHandler(kit.Chain(kit.Logging(s.logger, name))(e), decode, statusOf)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server: listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	s.logger.Info("server: stopped")
	return nil
}

// statusOf maps endpoint errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, snapshot.ErrInvalidParameter):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errUpstream):
		return http.StatusBadGateway
	case errors.Is(err, snapshot.ErrUnresolvable),
		errors.Is(err, snapshot.ErrBudgetUnreachable),
		errors.Is(err, source.ErrNoMatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// resolve acquires and parses the document of a request and selects its
// root. markup is the rendered root, the input of the cache key.
func (s *Server) resolve(ctx context.Context, d Document) (tree *domtree.Tree, root domtree.NodeID, markup string, err error) {
	switch {
	case d.HTML != "" && d.URL != "":
		return nil, domtree.None, "", fmt.Errorf("%w: html and url are exclusive", errBadRequest)
	case d.HTML != "":
		tree, err = domtree.ParseString(d.HTML)
		if err != nil {
			return nil, domtree.None, "", fmt.Errorf("%w: %w", errBadRequest, err)
		}
	case d.URL != "":
		if s.cfg.Loader == nil {
			return nil, domtree.None, "", fmt.Errorf("%w: url requests are disabled", errBadRequest)
		}
		doc, err := s.cfg.Loader.Load(ctx, d.URL)
		if err != nil {
			if errors.Is(err, source.ErrTooLarge) {
				return nil, domtree.None, "", err
			}
			if errors.Is(err, source.ErrUnsafeURL) {
				return nil, domtree.None, "", fmt.Errorf("%w: %w", errBadRequest, err)
			}
			return nil, domtree.None, "", fmt.Errorf("%w: %w", errUpstream, err)
		}
		if tree, err = doc.Parse(); err != nil {
			return nil, domtree.None, "", fmt.Errorf("%w: %w", errUpstream, err)
		}
	default:
		return nil, domtree.None, "", fmt.Errorf("%w: html or url is required", errBadRequest)
	}

	root, err = source.Select(tree, d.Selector)
	if err != nil {
		return nil, domtree.None, "", err
	}
	markup, err = tree.Render(root)
	if err != nil {
		return nil, domtree.None, "", err
	}
	return tree, root, markup, nil
}
