package daemon

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncEventsSent()
	m.IncEventsSent()
	m.IncEventsReceived()
	m.IncEventsDropped()
	m.IncRefreshesTotal()
	m.SetConnectedClients(4)

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.EventsSent)
	assert.Equal(t, int64(1), snap.EventsReceived)
	assert.Equal(t, int64(1), snap.EventsDropped)
	assert.Equal(t, int64(1), snap.RefreshesTotal)
	assert.Equal(t, int32(4), snap.ConnectedClients)
	assert.False(t, snap.StartTime.IsZero())
}

func TestMetrics_ConcurrentIncrements(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.IncEventsSent()
				m.IncEventsReceived()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5000), m.EventsSent.Load())
	assert.Equal(t, int64(5000), m.EventsReceived.Load())
}

func TestMetrics_PrometheusCollector(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.IncEventsSent()
	m.SetConnectedClients(2)

	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(m))

	expected := `
# HELP sitebook_daemon_connected_clients Currently connected clients.
# TYPE sitebook_daemon_connected_clients gauge
sitebook_daemon_connected_clients 2
# HELP sitebook_daemon_events_sent_total Messages queued to subscribers.
# TYPE sitebook_daemon_events_sent_total counter
sitebook_daemon_events_sent_total 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"sitebook_daemon_connected_clients", "sitebook_daemon_events_sent_total"))
}
