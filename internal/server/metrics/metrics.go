// Package metrics holds the Prometheus collector of the vault server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "glider"

// Collector is a prometheus.Collector with the RPC and vault metrics of one
// server instance.
type Collector struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	idempotentHits  prometheus.Counter
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "rpc_requests_total",
				Help:      "The number of handled vault RPCs by method and status code.",
			}, []string{"method", "code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "rpc_duration_seconds",
				Help:      "The time taken to handle a vault RPC.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			}, []string{"method"},
		),
		idempotentHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "idempotent_replays_total",
				Help:      "The number of create RPCs answered from the idempotency cache.",
			},
		),
	}
}

// ObserveRequest records one finished RPC.
func (c *Collector) ObserveRequest(method, code string, took time.Duration) {
	c.requests.WithLabelValues(method, code).Inc()
	c.requestDuration.WithLabelValues(method).Observe(took.Seconds())
}

// IdempotentReplay counts a response served from the idempotency cache.
func (c *Collector) IdempotentReplay() {
	c.idempotentHits.Inc()
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.requests.Describe(ch)
	c.requestDuration.Describe(ch)
	c.idempotentHits.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.requests.Collect(ch)
	c.requestDuration.Collect(ch)
	c.idempotentHits.Collect(ch)
}
