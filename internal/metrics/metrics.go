// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the application collectors.
//
// Metrics:
//   - sitebook_http_requests_total{method,route,status}
//   - sitebook_http_request_duration_seconds{method,route}
//   - sitebook_schedule_outcomes_total{kind,resolution}
//   - sitebook_login_attempts_total{result}
//   - sitebook_clients_advanced_total
//   - sitebook_sessions_active (registered by WatchSessions)
type Metrics struct {
	reg prometheus.Registerer

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	ScheduleOutcome *prometheus.CounterVec
	LoginAttempts   *prometheus.CounterVec
	ClientsAdvanced prometheus.Counter
}

// New registers the collectors with reg; nil means the default registerer
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		reg: reg,
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitebook_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitebook_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ScheduleOutcome: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitebook_schedule_outcomes_total",
				Help: "Committed schedule changes by conflict kind and resolution",
			},
			[]string{"kind", "resolution"},
		),
		LoginAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitebook_login_attempts_total",
				Help: "Sign-in attempts by result",
			},
			[]string{"result"}, // "ok", "rejected", "throttled", "error"
		),
		ClientsAdvanced: factory.NewCounter(prometheus.CounterOpts{
			Name: "sitebook_clients_advanced_total",
			Help: "Signed clients moved to in progress by the status sweep",
		}),
	}
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveSchedule counts a committed schedule change. A conflict-free change
// has an empty kind and resolution.
func (m *Metrics) ObserveSchedule(kind, resolution string) {
	if kind == "" {
		kind = "none"
	}
	if resolution == "" {
		resolution = "none"
	}
	m.ScheduleOutcome.WithLabelValues(kind, resolution).Inc()
}

// ObserveLogin counts a sign-in attempt
func (m *Metrics) ObserveLogin(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

// ObserveAdvanced counts clients moved by the status sweep
func (m *Metrics) ObserveAdvanced(n int) {
	m.ClientsAdvanced.Add(float64(n))
}

// WatchSessions exports the active session count read from active
func (m *Metrics) WatchSessions(active func() int) error {
	return m.reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sitebook_sessions_active",
		Help: "Sessions currently held in memory",
	}, func() float64 { return float64(active()) }))
}

// Register adds an extra collector, such as the event daemon's counters
func (m *Metrics) Register(c prometheus.Collector) error {
	return m.reg.Register(c)
}
