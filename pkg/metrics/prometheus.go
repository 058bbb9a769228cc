package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements SuiteMetrics with client_golang
// collectors registered on a private registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	checks         *prometheus.CounterVec
	checkDuration  *prometheus.HistogramVec
	assertions     *prometheus.CounterVec
	sessions       *prometheus.CounterVec
	statusReports  *prometheus.CounterVec
	activeSessions prometheus.Gauge
	runTotal       prometheus.Counter
}

// NewPrometheusMetrics creates a PrometheusMetrics instance.
func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		checks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crossbrowser_checks_total",
			Help: "Check executions by check, descriptor and status.",
		}, []string{"check", "descriptor", "status"}),
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "crossbrowser_check_duration_seconds",
			Help:    "Wall-clock duration of check executions.",
			Buckets: []float64{1, 2.5, 5, 10, 20, 40, 80, 160},
		}, []string{"descriptor"}),
		assertions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crossbrowser_assertions_total",
			Help: "Assertion evaluations by check, evaluator and result.",
		}, []string{"check", "evaluator", "passed"}),
		sessions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crossbrowser_sessions_total",
			Help: "Remote session creation attempts.",
		}, []string{"descriptor", "result"}),
		statusReports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "crossbrowser_status_reports_total",
			Help: "Session status commands sent to the grid.",
		}, []string{"status", "delivered"}),
		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "crossbrowser_active_sessions",
			Help: "Remote sessions currently open.",
		}),
		runTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "crossbrowser_runs_total",
			Help: "Suite runs started.",
		}),
	}
}

func (m *PrometheusMetrics) RecordCheck(
	checkID, descriptorID, status string,
	duration time.Duration,
) {
	m.checks.WithLabelValues(checkID, descriptorID, status).Inc()
	m.checkDuration.WithLabelValues(descriptorID).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordAssertion(checkID, evaluator string, passed bool) {
	m.assertions.WithLabelValues(checkID, evaluator, strconv.FormatBool(passed)).Inc()
}

func (m *PrometheusMetrics) RecordSession(descriptorID, result string) {
	m.sessions.WithLabelValues(descriptorID, result).Inc()
}

func (m *PrometheusMetrics) RecordStatusReport(status string, delivered bool) {
	m.statusReports.WithLabelValues(status, strconv.FormatBool(delivered)).Inc()
}

func (m *PrometheusMetrics) AddActiveSessions(delta int) {
	m.activeSessions.Add(float64(delta))
}

func (m *PrometheusMetrics) IncrementRunTotal() {
	m.runTotal.Inc()
}

// Registry exposes the underlying registry for gathering.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
