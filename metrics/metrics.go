// Package metrics provides the Prometheus metrics listener and the storage
// operation latency histogram.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultLatencyBuckets are the histogram buckets used when none are
// configured, in seconds.
var DefaultLatencyBuckets = []float64{0.1, 0.5, 1, 2, 5, 10}

// MetricsServer serves the Prometheus /metrics endpoint on a dedicated
// listen address, separate from the API server.
type MetricsServer struct {
	registry *prometheus.Registry
	reg      prometheus.Registerer
	srv      *http.Server
}

// New creates a metrics server with a fresh registry, pre-registered with
// the Go runtime and process collectors. pkgName is attached to every
// metric as a "service" label.
func New(pkgName, listenAddr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"service": pkgName}, registry)
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	return &MetricsServer{
		registry: registry,
		reg:      reg,
		srv: &http.Server{
			Addr:              listenAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Registry returns the registerer backing this server, for registering
// additional collectors. Metrics registered through it carry the server's
// service label.
func (m *MetricsServer) Registry() prometheus.Registerer {
	return m.reg
}

// Handler returns the /metrics handler, mainly for tests.
func (m *MetricsServer) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}

// OperationLatency is a best-effort latency histogram for storage facade
// operations. A nil *OperationLatency is valid and records nothing, so
// metrics can never affect an operation's outcome.
type OperationLatency struct {
	hist *prometheus.HistogramVec
}

// NewOperationLatency creates and registers the operation latency histogram.
// Buckets default to DefaultLatencyBuckets when empty.
func NewOperationLatency(buckets []float64, reg prometheus.Registerer) (*OperationLatency, error) {
	if len(buckets) == 0 {
		buckets = DefaultLatencyBuckets
	}

	hist := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storage_operation_duration_seconds",
		Help:    "Histogram of storage operation latency in seconds.",
		Buckets: buckets,
	}, []string{"operation", "backend"})

	if err := reg.Register(hist); err != nil {
		return nil, err
	}

	return &OperationLatency{hist: hist}, nil
}

// Observe records one operation's duration. Safe on a nil receiver.
func (l *OperationLatency) Observe(operation, backend string, d time.Duration) {
	if l == nil || l.hist == nil {
		return
	}
	l.hist.WithLabelValues(operation, backend).Observe(d.Seconds())
}
