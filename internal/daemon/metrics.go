package daemon

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks daemon statistics using atomic operations for thread-safety.
// It is also a prometheus.Collector so the counters can be scraped.
type Metrics struct {
	EventsSent       atomic.Int64
	EventsReceived   atomic.Int64
	EventsDropped    atomic.Int64
	RefreshesTotal   atomic.Int64
	ConnectedClients atomic.Int32
	StartTime        time.Time

	sentDesc      *prometheus.Desc
	receivedDesc  *prometheus.Desc
	droppedDesc   *prometheus.Desc
	refreshesDesc *prometheus.Desc
	clientsDesc   *prometheus.Desc
	uptimeDesc    *prometheus.Desc
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
		sentDesc: prometheus.NewDesc("sitebook_daemon_events_sent_total",
			"Messages queued to subscribers.", nil, nil),
		receivedDesc: prometheus.NewDesc("sitebook_daemon_events_received_total",
			"Events received from publishers.", nil, nil),
		droppedDesc: prometheus.NewDesc("sitebook_daemon_events_dropped_total",
			"Messages dropped because a subscriber queue was full.", nil, nil),
		refreshesDesc: prometheus.NewDesc("sitebook_daemon_broadcasts_total",
			"Events broadcast after sequencing.", nil, nil),
		clientsDesc: prometheus.NewDesc("sitebook_daemon_connected_clients",
			"Currently connected clients.", nil, nil),
		uptimeDesc: prometheus.NewDesc("sitebook_daemon_uptime_seconds",
			"Seconds since the daemon started.", nil, nil),
	}
}

// IncEventsSent increments the events sent counter
func (m *Metrics) IncEventsSent() {
	m.EventsSent.Add(1)
}

// IncEventsReceived increments the events received counter
func (m *Metrics) IncEventsReceived() {
	m.EventsReceived.Add(1)
}

// IncEventsDropped increments the dropped counter
func (m *Metrics) IncEventsDropped() {
	m.EventsDropped.Add(1)
}

// IncRefreshesTotal increments the refreshes total counter
func (m *Metrics) IncRefreshesTotal() {
	m.RefreshesTotal.Add(1)
}

// SetConnectedClients sets the current connected clients count
func (m *Metrics) SetConnectedClients(count int32) {
	m.ConnectedClients.Store(count)
}

// Describe implements prometheus.Collector
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.sentDesc
	ch <- m.receivedDesc
	ch <- m.droppedDesc
	ch <- m.refreshesDesc
	ch <- m.clientsDesc
	ch <- m.uptimeDesc
}

// Collect implements prometheus.Collector
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(m.sentDesc, prometheus.CounterValue, float64(m.EventsSent.Load()))
	ch <- prometheus.MustNewConstMetric(m.receivedDesc, prometheus.CounterValue, float64(m.EventsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(m.droppedDesc, prometheus.CounterValue, float64(m.EventsDropped.Load()))
	ch <- prometheus.MustNewConstMetric(m.refreshesDesc, prometheus.CounterValue, float64(m.RefreshesTotal.Load()))
	ch <- prometheus.MustNewConstMetric(m.clientsDesc, prometheus.GaugeValue, float64(m.ConnectedClients.Load()))
	ch <- prometheus.MustNewConstMetric(m.uptimeDesc, prometheus.GaugeValue, time.Since(m.StartTime).Seconds())
}

// MetricsSnapshot represents a point-in-time snapshot of metrics
type MetricsSnapshot struct {
	EventsSent       int64     `json:"events_sent"`
	EventsReceived   int64     `json:"events_received"`
	EventsDropped    int64     `json:"events_dropped"`
	RefreshesTotal   int64     `json:"refreshes_total"`
	ConnectedClients int32     `json:"connected_clients"`
	StartTime        time.Time `json:"start_time"`
	Uptime           string    `json:"uptime"`
}

// GetSnapshot returns a snapshot of current metrics
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		EventsSent:       m.EventsSent.Load(),
		EventsReceived:   m.EventsReceived.Load(),
		EventsDropped:    m.EventsDropped.Load(),
		RefreshesTotal:   m.RefreshesTotal.Load(),
		ConnectedClients: m.ConnectedClients.Load(),
		StartTime:        m.StartTime,
		Uptime:           time.Since(m.StartTime).Round(time.Second).String(),
	}
}
