package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Token operation outcomes recorded by the share service.
const (
	OutcomeValid       = "valid"
	OutcomeInvalid     = "invalid"
	OutcomeExpired     = "expired"
	OutcomeConsumed    = "consumed"
	OutcomeNotFound    = "not_found"
	OutcomeAlreadyUsed = "already_used"
	OutcomeResolved    = "resolved"
	OutcomeError       = "error"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	linksIssued     *prometheus.CounterVec
	tokenOutcomes   *prometheus.CounterVec
	tokensScanned   *prometheus.HistogramVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_share_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survey_share_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_share_http_errors_total",
			Help: "HTTP error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
		linksIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_share_links_issued_total",
			Help: "Share links issued by share type.",
		}, []string{"share_type"}),
		tokenOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "survey_share_token_operations_total",
			Help: "Share token validations, consumptions and resolutions by outcome.",
		}, []string{"operation", "outcome"}),
		tokensScanned: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "survey_share_tokens_scanned",
			Help:    "Candidate rows verified per token lookup.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.errors,
		m.linksIssued,
		m.tokenOutcomes,
		m.tokensScanned,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// RecordLinksIssued counts issued links of one share type.
func (m *Metrics) RecordLinksIssued(shareType string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.linksIssued.WithLabelValues(shareType).Add(float64(count))
}

// RecordTokenOutcome counts a token operation result.
func (m *Metrics) RecordTokenOutcome(operation, outcome string) {
	if m == nil {
		return
	}
	m.tokenOutcomes.WithLabelValues(operation, outcome).Inc()
}

// RecordScan observes how many candidates a lookup verified.
func (m *Metrics) RecordScan(operation string, scanned int) {
	if m == nil {
		return
	}
	m.tokensScanned.WithLabelValues(operation).Observe(float64(scanned))
}
