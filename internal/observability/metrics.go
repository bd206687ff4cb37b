package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the prometheus collectors of the process on a private registry.
// All recorders are safe to call on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	httpErrors         *prometheus.CounterVec
	requestsCreated    *prometheus.CounterVec
	requestsResolved   *prometheus.CounterVec
	alertsEmitted      prometheus.Counter
	availabilityEvents *prometheus.CounterVec
	activeDonors       prometheus.Gauge
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redlink_http_requests_total",
			Help: "HTTP requests served, by route, method and status",
		}, []string{"path", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redlink_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		httpErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redlink_http_errors_total",
			Help: "HTTP requests that ended in an error envelope, by code",
		}, []string{"path", "method", "code"}),
		requestsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redlink_requests_created_total",
			Help: "Emergency requests broadcast, by blood group",
		}, []string{"blood_group"}),
		requestsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redlink_requests_resolved_total",
			Help: "Emergency requests resolved by a donor, by outcome",
		}, []string{"status"}),
		alertsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "redlink_alerts_emitted_total",
			Help: "Donor alerts emitted",
		}),
		availabilityEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "redlink_availability_events_total",
			Help: "One-shot availability events, by kind",
		}, []string{"kind"}),
		activeDonors: factory.NewGauge(prometheus.GaugeOpts{
			Name: "redlink_active_donor_sessions",
			Help: "Donor sessions currently logged in",
		}),
	}
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.httpErrors.WithLabelValues(path, method, code).Inc()
}

func (m *Metrics) RequestCreated(bloodGroup string) {
	if m == nil {
		return
	}
	m.requestsCreated.WithLabelValues(bloodGroup).Inc()
}

func (m *Metrics) RequestResolved(status string) {
	if m == nil {
		return
	}
	m.requestsResolved.WithLabelValues(status).Inc()
}

func (m *Metrics) AlertEmitted() {
	if m == nil {
		return
	}
	m.alertsEmitted.Inc()
}

func (m *Metrics) AvailabilityEvent(kind string) {
	if m == nil {
		return
	}
	m.availabilityEvents.WithLabelValues(kind).Inc()
}

func (m *Metrics) DonorSessionOpened() {
	if m == nil {
		return
	}
	m.activeDonors.Inc()
}

func (m *Metrics) DonorSessionClosed() {
	if m == nil {
		return
	}
	m.activeDonors.Dec()
}
