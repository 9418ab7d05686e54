package daemon

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thenoetrevino/sitebook/internal/events"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// Test helpers live here to avoid an import cycle with testutil

func setupTestDaemon(t *testing.T, opts ...Option) (*Server, string) {
	t.Helper()
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")

	server, err := NewServer(socketPath, opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = server.Start(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool {
		_, err := os.Stat(socketPath)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)

	return server, socketPath
}

func connectRawClient(t *testing.T, socketPath string) (net.Conn, *json.Encoder, *json.Decoder) {
	t.Helper()
	conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn, json.NewEncoder(conn), json.NewDecoder(conn)
}

func subscribe(t *testing.T, enc *json.Encoder, orgID int) {
	t.Helper()
	require.NoError(t, enc.Encode(events.Message{
		Version:   events.ProtocolVersion,
		Type:      "subscribe",
		Subscribe: &events.SubscribeMessage{OrganizationID: orgID},
	}))
}

func readEvent(t *testing.T, conn net.Conn, dec *json.Decoder) events.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg events.Message
		require.NoError(t, dec.Decode(&msg))
		if msg.Type == "event" && msg.Event != nil {
			return *msg.Event
		}
	}
}

func expectSilence(t *testing.T, conn net.Conn, dec *json.Decoder) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var msg events.Message
	err := dec.Decode(&msg)
	require.Error(t, err, "unexpected message %+v", msg)
}

func waitForClients(t *testing.T, server *Server, n int32) {
	t.Helper()
	require.Eventually(t, func() bool {
		return server.Metrics().ConnectedClients.Load() == n
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNewServer_CreatesDirectoryAndRemovesStaleSocket(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "run")
	socketPath := filepath.Join(dir, "daemon.sock")

	require.NoError(t, os.MkdirAll(dir, 0o700))
	require.NoError(t, os.WriteFile(socketPath, []byte("stale"), 0o600))

	server, err := NewServer(socketPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.Shutdown() })

	info, err := os.Stat(socketPath)
	require.NoError(t, err)
	assert.Equal(t, os.ModeSocket, info.Mode()&os.ModeSocket)
}

func TestBroadcast_SubscriptionFiltering(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	connA, encA, decA := connectRawClient(t, socketPath)
	subscribe(t, encA, 1)
	connB, encB, decB := connectRawClient(t, socketPath)
	subscribe(t, encB, 2)
	connAll, encAll, decAll := connectRawClient(t, socketPath)
	subscribe(t, encAll, 0)
	waitForClients(t, server, 3)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, server.Broadcast(events.Event{Type: events.EventDatabaseChanged, OrganizationID: 1}))

	assert.Equal(t, 1, readEvent(t, connA, decA).OrganizationID)
	assert.Equal(t, 1, readEvent(t, connAll, decAll).OrganizationID)
	expectSilence(t, connB, decB)
}

func TestBroadcast_OrganizationZeroReachesEveryone(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	connA, encA, decA := connectRawClient(t, socketPath)
	subscribe(t, encA, 1)
	connB, encB, decB := connectRawClient(t, socketPath)
	subscribe(t, encB, 2)
	waitForClients(t, server, 2)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, server.Broadcast(events.Event{Type: events.EventDatabaseChanged}))

	assert.Equal(t, 0, readEvent(t, connA, decA).OrganizationID)
	assert.Equal(t, 0, readEvent(t, connB, decB).OrganizationID)
}

func TestBroadcast_SequenceNumbersIncrease(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, enc, dec := connectRawClient(t, socketPath)
	subscribe(t, enc, 0)
	waitForClients(t, server, 1)
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, server.Broadcast(events.Event{Type: events.EventDatabaseChanged, OrganizationID: 7}))
	}

	var last int64
	for i := 0; i < 3; i++ {
		e := readEvent(t, conn, dec)
		assert.Greater(t, e.SequenceID, last)
		last = e.SequenceID
	}
	assert.Equal(t, int64(3), server.Metrics().RefreshesTotal.Load())
}

func TestRelay_PublisherToSubscriber(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, enc, dec := connectRawClient(t, socketPath)
	subscribe(t, enc, 4)

	publisher, err := events.NewClient(socketPath)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, publisher.Connect(ctx))
	waitForClients(t, server, 2)

	require.NoError(t, publisher.SendEvent(events.Event{
		Type: events.EventDatabaseChanged, OrganizationID: 4, Entity: "project", EntityID: 9,
	}))

	got := readEvent(t, conn, dec)
	assert.Equal(t, 4, got.OrganizationID)
	assert.Equal(t, "project", got.Entity)
	assert.Equal(t, 9, got.EntityID)
	assert.Equal(t, int64(1), server.Metrics().EventsReceived.Load())

	require.NoError(t, publisher.Close())
}

func TestClientListen_ReceivesBroadcast(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	sub, err := events.NewClient(socketPath)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, sub.Connect(ctx))
	require.NoError(t, sub.Subscribe(3))
	ch, err := sub.Listen(ctx)
	require.NoError(t, err)
	waitForClients(t, server, 1)
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, server.Broadcast(events.Event{Type: events.EventDatabaseChanged, OrganizationID: 3}))

	select {
	case e := <-ch:
		assert.Equal(t, 3, e.OrganizationID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for event")
	}

	cancel()
	require.NoError(t, sub.Close())
	for range ch {
	}
}

func TestClientDisconnection_UpdatesCount(t *testing.T) {
	server, socketPath := setupTestDaemon(t)

	conn, enc, _ := connectRawClient(t, socketPath)
	subscribe(t, enc, 0)
	waitForClients(t, server, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, server, 0)
}

func TestStaleClientsAreRemoved(t *testing.T) {
	server, socketPath := setupTestDaemon(t, WithPingInterval(50*time.Millisecond))

	// Never answers pings
	_, enc, _ := connectRawClient(t, socketPath)
	subscribe(t, enc, 0)

	require.Eventually(t, func() bool {
		return server.Metrics().ConnectedClients.Load() == 0 && server.Metrics().EventsSent.Load() > 0
	}, 3*time.Second, 20*time.Millisecond)
}

func TestShutdown_IdempotentAndRejectsBroadcast(t *testing.T) {
	socketPath := filepath.Join(t.TempDir(), "daemon.sock")
	server, err := NewServer(socketPath)
	require.NoError(t, err)

	require.NoError(t, server.Shutdown())
	require.NoError(t, server.Shutdown())

	_, statErr := os.Stat(socketPath)
	assert.True(t, os.IsNotExist(statErr))
	assert.Error(t, server.Broadcast(events.Event{}))
}
