package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "foldergraph"

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Channel metrics
	ChannelCalls    *prometheus.CounterVec
	ChannelDuration *prometheus.HistogramVec
	ChannelErrors   *prometheus.CounterVec

	// World metrics
	WorldsSaved prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	startTime time.Time

	// Snapshot for the health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals reported by the health endpoint
type Snapshot struct {
	TotalCalls    int64 `json:"totalCalls"`
	FailedCalls   int64 `json:"failedCalls"`
	TotalRequests int64 `json:"totalRequests"`
	WSConnections int64 `json:"wsConnections"`
}

// NewMetrics creates a metrics collector with its own registry, so tests and
// multiple servers in one process never collide on registration
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_size_bytes",
				Help:      "HTTP request size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000, 10000000},
			},
			[]string{"method", "path"},
		),

		ChannelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "channel_calls_total",
				Help:      "Total number of channel invocations",
			},
			[]string{"channel", "status"},
		),
		ChannelDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "channel_duration_seconds",
				Help:      "Channel invocation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"channel"},
		),
		ChannelErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "channel_errors_total",
				Help:      "Total number of failed channel invocations by error kind",
			},
			[]string{"channel", "kind"},
		),

		WorldsSaved: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "worlds_saved",
				Help:      "Number of saved worlds after the last listing",
			},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction"},
		),
	}

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "uptime_seconds",
			Help:      "Service uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Registry returns the registry all metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Uptime returns the time since the collector was created
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.mu.Unlock()
}

// RecordChannelCall records one channel invocation. An empty kind means it
// succeeded.
func (m *Metrics) RecordChannelCall(channel, kind string, duration time.Duration) {
	status := "success"
	if kind != "" {
		status = "failure"
		m.ChannelErrors.WithLabelValues(channel, kind).Inc()
	}
	m.ChannelCalls.WithLabelValues(channel, status).Inc()
	m.ChannelDuration.WithLabelValues(channel).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalCalls++
	if kind != "" {
		m.snapshot.FailedCalls++
	}
	m.mu.Unlock()
}

// SetWorldsSaved sets the number of saved worlds
func (m *Metrics) SetWorldsSaved(count int) {
	m.WorldsSaved.Set(float64(count))
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction string) {
	m.WSMessages.WithLabelValues(direction).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.WSConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.WSConnections--
	m.mu.Unlock()
}

// Snapshot returns the running totals
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}
