// Package metrics exposes Prometheus instruments for dataset loading, the
// table cache and chart rendering.
package metrics

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ringoview"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheStale = "stale"
)

// Metrics holds the instruments. A nil *Metrics is valid and records nothing,
// so library callers and tests can skip instrumentation.
type Metrics struct {
	r *prometheus.Registry

	CacheLookups *prometheus.CounterVec
	TableLoads   *prometheus.CounterVec
	LoadSeconds  prometheus.Histogram
	TableRows    *prometheus.GaugeVec
	ChartRenders *prometheus.CounterVec
	ChartPoints  prometheus.Histogram
}

// New creates the instruments on a private registry.
func New() *Metrics {
	r := prometheus.NewRegistry()

	m := &Metrics{
		r: r,
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_cache_lookups_total",
			Help:      "table cache lookups by result (hit, miss, stale)",
		}, []string{"result"}),
		TableLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_loads_total",
			Help:      "quality table loads by dataset and result",
		}, []string{"dataset", "result"}),
		LoadSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "table_load_seconds",
			Help:      "time spent reading and parsing a quality table",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		TableRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "table_rows",
			Help:      "rows in the most recently loaded table per dataset",
		}, []string{"dataset"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "charts rendered by output format",
		}, []string{"format"}),
		ChartPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_points",
			Help:      "points per rendered chart",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	r.MustRegister(m.CacheLookups, m.TableLoads, m.LoadSeconds, m.TableRows, m.ChartRenders, m.ChartPoints)
	return m
}

// Registry returns the registerer for additional collectors.
func (m *Metrics) Registry() prometheus.Registerer {
	return m.r
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.r, promhttp.HandlerOpts{
		ErrorLog:          log.New(os.Stderr, "prom http: ", log.LstdFlags),
		Registry:          m.r,
		EnableOpenMetrics: true,
	})
}

// ObserveCacheLookup counts a cache lookup result.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveLoad records a table load. rows is ignored when err is non-nil.
func (m *Metrics) ObserveLoad(dataset string, rows int, took time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.TableLoads.WithLabelValues(dataset, "error").Inc()
		return
	}
	m.TableLoads.WithLabelValues(dataset, "ok").Inc()
	m.LoadSeconds.Observe(took.Seconds())
	m.TableRows.WithLabelValues(dataset).Set(float64(rows))
}

// ObserveRender records a rendered chart.
func (m *Metrics) ObserveRender(format string, points int) {
	if m == nil {
		return
	}
	m.ChartRenders.WithLabelValues(format).Inc()
	m.ChartPoints.Observe(float64(points))
}
