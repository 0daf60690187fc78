// file: metrics/prometheus.go
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder exposes the portal metrics for scraping on /metrics.
type PrometheusRecorder struct {
	registry      *prometheus.Registry
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	signups       *prometheus.CounterVec
	unregisters   *prometheus.CounterVec
	liveClients   prometheus.Gauge
}

// NewPrometheusRecorder registers the portal collectors on reg. A nil reg gets a
// fresh registry so tests never collide on the global one.
func NewPrometheusRecorder(reg *prometheus.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		registry: reg,
		fetches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_catalog_fetches_total",
				Help: "Total number of catalog fetches from the activities API",
			},
			[]string{"result"},
		),
		fetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portal_catalog_fetch_duration_seconds",
				Help:    "Duration of catalog fetches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		signups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_signups_total",
				Help: "Signup attempts by outcome",
			},
			[]string{"outcome"},
		),
		unregisters: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_unregisters_total",
				Help: "Unregister attempts by outcome",
			},
			[]string{"outcome"},
		),
		liveClients: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "portal_live_clients",
				Help: "Number of pages subscribed to live catalog updates",
			},
		),
	}
}

func (p *PrometheusRecorder) CatalogFetch(ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	p.fetches.WithLabelValues(result).Inc()
	p.fetchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) Signup(outcome string) {
	p.signups.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) Unregister(outcome string) {
	p.unregisters.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) LiveClients(n int) {
	p.liveClients.Set(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
