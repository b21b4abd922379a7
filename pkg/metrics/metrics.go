package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the client-side Prometheus collectors
type Metrics struct {
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Optimistic update metrics
	OptimisticUpdatesTotal   *prometheus.CounterVec
	OptimisticRollbacksTotal *prometheus.CounterVec

	// Upload metrics
	UploadsTotal    *prometheus.CounterVec
	UploadBytesSent prometheus.Counter

	// Realtime metrics
	RealtimeEventsTotal     *prometheus.CounterVec
	RealtimeReconnectsTotal prometheus.Counter
	RealtimeConnected       prometheus.Gauge
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all collectors once per process
func Initialize() *Metrics {
	once.Do(func() {
		instance = New()
	})
	return instance
}

// Get returns the process metrics, initializing them if needed
func Get() *Metrics {
	return Initialize()
}

// New builds an independent set of collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_http_requests_total",
				Help: "API requests issued, by method and status code",
			},
			[]string{"method", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pulse_http_request_duration_seconds",
				Help:    "API request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),

		OptimisticUpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_optimistic_updates_total",
				Help: "Optimistic local mutations applied, by kind",
			},
			[]string{"kind"},
		),
		OptimisticRollbacksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_optimistic_rollbacks_total",
				Help: "Optimistic local mutations reverted after a failed commit, by kind",
			},
			[]string{"kind"},
		),

		UploadsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_uploads_total",
				Help: "Media uploads, by final state",
			},
			[]string{"state"},
		),
		UploadBytesSent: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_upload_bytes_sent_total",
				Help: "Bytes PUT to presigned upload URLs",
			},
		),

		RealtimeEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_realtime_events_total",
				Help: "Realtime events received, by routed kind",
			},
			[]string{"kind"},
		),
		RealtimeReconnectsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_realtime_reconnects_total",
				Help: "Realtime reconnect attempts",
			},
		),
		RealtimeConnected: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_realtime_connected",
				Help: "1 while the realtime connection is up",
			},
		),
	}
}

// WriteTextfile writes the current values in the Prometheus text format
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
