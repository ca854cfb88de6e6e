// Package metrics exposes pipeline counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "postcard"

// Prometheus records source attempts, scrape outcomes and proxy results
// on its own registry.
type Prometheus struct {
	registry       *prometheus.Registry
	sourceAttempts *prometheus.CounterVec
	scrapeDuration *prometheus.HistogramVec
	proxyRequests  *prometheus.CounterVec
}

// NewPrometheus creates the collectors, plus Go runtime and process
// collectors, on a fresh registry.
func NewPrometheus() *Prometheus {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		sourceAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Upstream source attempts by source and outcome.",
		}, []string{"source", "outcome"}),
		scrapeDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scrape_duration_seconds",
			Help:      "Time to resolve a scrape request by outcome.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30},
		}, []string{"outcome"}),
		proxyRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_proxy_requests_total",
			Help:      "Image proxy responses by HTTP status.",
		}, []string{"status"}),
	}
}

// SourceAttempt counts one attempt of source ending with outcome.
func (p *Prometheus) SourceAttempt(source, outcome string) {
	p.sourceAttempts.WithLabelValues(source, outcome).Inc()
}

// ScrapeCompleted observes the duration of a finished scrape.
func (p *Prometheus) ScrapeCompleted(outcome string, d time.Duration) {
	p.scrapeDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// ProxyRequest counts one image proxy response.
func (p *Prometheus) ProxyRequest(status int) {
	p.proxyRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Registry returns the underlying registry.
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}
