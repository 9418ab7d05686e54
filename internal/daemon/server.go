// Package daemon runs the local fan-out server that relays store change
// events between sitebook processes over a unix socket.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenoetrevino/sitebook/internal/events"
	"go.uber.org/zap"
)

// client represents a connected client to the daemon
type client struct {
	conn         net.Conn
	send         chan events.Message
	subscription events.SubscribeMessage
	lastPong     time.Time
	mu           sync.Mutex // Protects subscription and lastPong
	closeOnce    sync.Once  // Ensures send channel is closed only once
}

// Server represents the sitebook event daemon
type Server struct {
	socketPath       string
	listener         net.Listener
	clients          map[*client]bool
	mu               sync.RWMutex
	ctx              context.Context
	cancel           context.CancelFunc
	broadcast        chan events.Event
	metrics          *Metrics
	log              *zap.Logger
	sequenceCounter  atomic.Int64
	clientBufferSize int
	pingInterval     time.Duration
	staleAfter       time.Duration
	wg               sync.WaitGroup
	shutdownOnce     sync.Once
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithPingInterval sets how often clients are pinged. Clients silent for three
// intervals are dropped.
func WithPingInterval(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.pingInterval = d
			s.staleAfter = 3 * d
		}
	}
}

// getEnvInt reads an integer from an environment variable, returning defaultVal if not set or invalid
func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultVal
}

// NewServer creates the socket listener. A stale socket file left by a
// crashed daemon is removed first.
func NewServer(socketPath string, opts ...Option) (*Server, error) {
	if dir := filepath.Dir(socketPath); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create socket directory: %w", err)
		}
	}

	if _, err := os.Stat(socketPath); err == nil {
		if err := os.Remove(socketPath); err != nil {
			return nil, fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	lc := net.ListenConfig{}
	listener, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket listener: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		socketPath:       socketPath,
		listener:         listener,
		clients:          make(map[*client]bool),
		ctx:              ctx,
		cancel:           cancel,
		broadcast:        make(chan events.Event, getEnvInt("SITEBOOK_DAEMON_BROADCAST_BUFFER", 100)),
		metrics:          NewMetrics(),
		log:              zap.L().Named("daemon"),
		clientBufferSize: getEnvInt("SITEBOOK_DAEMON_CLIENT_BUFFER", 10),
		pingInterval:     30 * time.Second,
		staleAfter:       90 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Metrics exposes the daemon counters (also a prometheus.Collector)
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// SocketPath returns the path the daemon listens on
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start runs the accept, broadcast and health loops until ctx is cancelled
// or Shutdown is called, then shuts down and waits for every goroutine.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("daemon starting", zap.String("socket", s.socketPath))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.wg.Add(3)
	acceptErr := make(chan error, 1)
	go func() {
		defer s.wg.Done()
		acceptErr <- s.acceptLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.broadcastLoop(runCtx)
	}()
	go func() {
		defer s.wg.Done()
		s.monitorHealth(runCtx)
	}()

	var loopErr error
	select {
	case <-runCtx.Done():
	case <-s.ctx.Done():
	case loopErr = <-acceptErr:
		if loopErr != nil {
			s.log.Error("accept loop failed", zap.Error(loopErr))
		}
	}

	cancel()
	err := s.Shutdown()
	s.wg.Wait()
	if err == nil {
		err = loopErr
	}
	return err
}

// acceptLoop accepts incoming client connections
func (s *Server) acceptLoop(ctx context.Context) error {
	ul, _ := s.listener.(*net.UnixListener)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		// Deadline lets the loop notice cancellation
		if ul != nil {
			if err := ul.SetDeadline(time.Now().Add(250 * time.Millisecond)); err != nil {
				s.log.Debug("failed to set listener deadline", zap.Error(err))
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept error: %w", err)
		}

		c := &client{
			conn:     conn,
			send:     make(chan events.Message, s.clientBufferSize),
			lastPong: time.Now(),
		}

		s.mu.Lock()
		s.clients[c] = true
		s.mu.Unlock()
		s.updateClientCount()

		s.log.Debug("client connected", zap.Int("clients", s.getClientCount()))

		s.wg.Add(2)
		go func() {
			defer s.wg.Done()
			s.handleClient(c)
		}()
		go func() {
			defer s.wg.Done()
			s.clientWriter(c)
		}()
	}
}

// broadcastLoop sequences events and distributes them to subscribed clients
func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event := <-s.broadcast:
			event.SequenceID = s.sequenceCounter.Add(1)
			s.metrics.IncRefreshesTotal()

			s.mu.RLock()
			for c := range s.clients {
				c.mu.Lock()
				subscribed := event.Matches(c.subscription.OrganizationID)
				c.mu.Unlock()

				if !subscribed {
					continue
				}
				msg := events.Message{
					Version: events.ProtocolVersion,
					Type:    "event",
					Event:   &event,
				}
				// Slow clients miss events rather than stall everyone
				if !s.sendToClient(c, msg) {
					s.metrics.IncEventsDropped()
					s.log.Warn("client send queue full, event dropped",
						zap.Int64("sequence", event.SequenceID))
				}
			}
			s.mu.RUnlock()
		}
	}
}

// handleClient reads messages from a connected client
func (s *Server) handleClient(c *client) {
	defer func() {
		s.removeClient(c)
		s.log.Debug("client disconnected", zap.Int("clients", s.getClientCount()))
	}()

	decoder := json.NewDecoder(c.conn)

	for {
		var msg events.Message
		if err := decoder.Decode(&msg); err != nil {
			return
		}

		if msg.Version != 0 && msg.Version != events.ProtocolVersion {
			s.log.Warn("protocol version mismatch",
				zap.Int("got", msg.Version), zap.Int("want", events.ProtocolVersion))
		}

		switch msg.Type {
		case "event":
			if msg.Event == nil {
				continue
			}
			s.metrics.IncEventsReceived()
			if err := s.Broadcast(*msg.Event); err != nil {
				s.metrics.IncEventsDropped()
				s.log.Warn("dropping event", zap.Error(err))
			}

		case "subscribe":
			if msg.Subscribe != nil {
				c.mu.Lock()
				c.subscription = *msg.Subscribe
				c.mu.Unlock()
				s.log.Debug("client subscribed", zap.Int("organization_id", msg.Subscribe.OrganizationID))
			}

		case "pong":
			c.mu.Lock()
			c.lastPong = time.Now()
			c.mu.Unlock()
		}
	}
}

// clientWriter sends messages to a client
func (s *Server) clientWriter(c *client) {
	encoder := json.NewEncoder(c.conn)

	for msg := range c.send {
		if err := encoder.Encode(msg); err != nil {
			s.removeClient(c)
			// Drain so senders never block on a dead client
			for range c.send {
			}
			return
		}
	}
}

// monitorHealth sends ping messages and removes stale clients
func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	pingMsg := events.Message{
		Version: events.ProtocolVersion,
		Type:    "ping",
		Event:   &events.Event{Type: events.EventPing},
	}

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			now := time.Now()

			// Sends happen under the read lock; removal needs the write lock
			s.mu.RLock()
			var stale []*client
			for c := range s.clients {
				c.mu.Lock()
				silent := now.Sub(c.lastPong)
				c.mu.Unlock()
				if silent > s.staleAfter {
					stale = append(stale, c)
					continue
				}
				if !s.sendToClient(c, pingMsg) {
					s.log.Debug("failed to ping client, queue full")
				}
			}
			s.mu.RUnlock()

			for _, c := range stale {
				s.log.Info("removing stale client")
				s.removeClient(c)
			}
		}
	}
}

// Broadcast sends an event to the broadcast channel (non-blocking)
func (s *Server) Broadcast(event events.Event) error {
	if s.ctx.Err() != nil {
		return fmt.Errorf("daemon is shutting down")
	}
	select {
	case s.broadcast <- event:
		return nil
	default:
		return fmt.Errorf("broadcast channel full")
	}
}

// Shutdown closes the listener and every client connection and removes the
// socket file. It is safe to call more than once.
func (s *Server) Shutdown() error {
	var err error
	s.shutdownOnce.Do(func() {
		s.log.Info("shutting down daemon")

		s.cancel()

		if s.listener != nil {
			if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
				err = closeErr
			}
		}

		s.mu.Lock()
		clients := make([]*client, 0, len(s.clients))
		for c := range s.clients {
			clients = append(clients, c)
		}
		s.clients = make(map[*client]bool)
		s.mu.Unlock()

		for _, c := range clients {
			_ = c.conn.Close()
			c.closeOnce.Do(func() { close(c.send) })
		}
		s.updateClientCount()

		if removeErr := os.Remove(s.socketPath); removeErr != nil && !os.IsNotExist(removeErr) {
			s.log.Warn("failed to remove socket file", zap.Error(removeErr))
		}
	})

	return err
}

func (s *Server) getClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) updateClientCount() {
	s.metrics.SetConnectedClients(int32(s.getClientCount()))
}

// removeClient safely removes a client from the server
func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	_ = c.conn.Close()
	c.closeOnce.Do(func() { close(c.send) })
	s.mu.Unlock()

	s.updateClientCount()
}

// sendToClient attempts to send a message to a client (non-blocking).
// Callers hold s.mu so removeClient cannot close c.send concurrently.
func (s *Server) sendToClient(c *client, msg events.Message) bool {
	select {
	case c.send <- msg:
		s.metrics.IncEventsSent()
		return true
	default:
		return false
	}
}
