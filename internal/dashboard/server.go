// Package dashboard serves the interactive quality dashboard: a selector
// page, rendered charts and a small JSON API over the dataset catalog.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/ringoview/internal/chart"
	"github.com/banshee-data/ringoview/internal/config"
	"github.com/banshee-data/ringoview/internal/httputil"
	"github.com/banshee-data/ringoview/internal/metrics"
	"github.com/banshee-data/ringoview/internal/monitoring"
	"github.com/banshee-data/ringoview/internal/quality"
)

// Catalog is the subset of the dataset catalog the dashboard reads from.
type Catalog interface {
	Datasets() []quality.DatasetDescriptor
	Label(id string) (string, bool)
	Has(id string) bool
	Table(ctx context.Context, id string) (*quality.Table, error)
	Sites(ctx context.Context, id string) ([]string, error)
}

// Options holds the selection defaults and chart presentation settings.
type Options struct {
	DefaultSite           string
	DefaultMetric         quality.Metric
	DefaultConstellations []quality.Constellation
	Chart                 chart.HTMLOptions
	RequestTimeout        time.Duration
}

// OptionsFromConfig maps the dashboard configuration onto server options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DefaultSite:           cfg.GetDefaultSite(),
		DefaultMetric:         cfg.GetDefaultMetric(),
		DefaultConstellations: cfg.GetDefaultConstellations(),
		Chart: chart.HTMLOptions{
			Theme:      cfg.GetTheme(),
			AssetsHost: cfg.GetAssetsHost(),
		},
	}
}

// Server is the dashboard HTTP server.
type Server struct {
	catalog Catalog
	metrics *metrics.Metrics
	opts    Options
	router  *chi.Mux
}

// NewServer creates a Server. m may be nil, in which case /metrics is not
// mounted.
func NewServer(cat Catalog, m *metrics.Metrics, opts Options) *Server {
	if opts.DefaultMetric == "" {
		opts.DefaultMetric = quality.MP1
	}
	if len(opts.DefaultConstellations) == 0 {
		opts.DefaultConstellations = quality.DefaultConstellations
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	s := &Server{
		catalog: cat,
		metrics: m,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.RequestTimeout))

	r.NotFound(httputil.NotFound)
	r.MethodNotAllowed(httputil.MethodNotAllowed)

	r.Get("/", s.handleIndex)
	r.Get("/chart", s.handleChart)
	r.Get("/chart.png", s.handleImage(chart.FormatPNG))
	r.Get("/chart.svg", s.handleImage(chart.FormatSVG))
	r.Get("/overview", s.handleOverview)
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/datasets", s.listDatasets)
		r.Get("/metrics", s.listMetrics)
		r.Get("/constellations", s.listConstellations)
		r.Get("/sites", s.listSites)
		r.Get("/series", s.getSeries)
	})

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		monitoring.Logf("dashboard listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		monitoring.Logf("shutting down dashboard...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			monitoring.Logf("dashboard shutdown error: %v", err)
			return srv.Close()
		}
		return nil
	})
	return g.Wait()
}
