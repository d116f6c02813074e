package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/nightreign/go/internal/events"
	"github.com/mcdev12/nightreign/go/internal/metrics"
	"github.com/mcdev12/nightreign/go/internal/phasetimer"
	"github.com/mcdev12/nightreign/go/internal/scheduler"
	"github.com/rs/zerolog/log"
)

// ConnectionManager owns one timer session per websocket connection
type ConnectionManager struct {
	connections map[uuid.UUID]*Connection
	mu          sync.RWMutex

	// Upgrader for WebSocket connections
	upgrader websocket.Upgrader

	config    ConnectionConfig
	sequence  *phasetimer.Sequence
	clock     scheduler.Clock
	publisher events.EventPublisher
	metrics   metrics.MetricsCollector
}

// ConnectionConfig holds configuration for WebSocket connections
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	SendBufferSize  int
	TickInterval    time.Duration
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns default WebSocket configuration
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // 1KB max message size
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  64,
		TickInterval:    phasetimer.Tick,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production
			return true
		},
	}
}

// Dependencies are the collaborators shared by every session
type Dependencies struct {
	Sequence  *phasetimer.Sequence
	Clock     scheduler.Clock
	Publisher events.EventPublisher
	Metrics   metrics.MetricsCollector
}

// NewConnectionManager creates a new WebSocket connection manager
func NewConnectionManager(config ConnectionConfig, deps Dependencies) *ConnectionManager {
	if deps.Clock == nil {
		deps.Clock = clockwork.NewRealClock()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NewLogPublisher()
	}
	if deps.Metrics == nil {
		deps.Metrics = &metrics.NoOpMetricsCollector{}
	}
	if config.SendBufferSize <= 0 {
		config.SendBufferSize = DefaultConnectionConfig().SendBufferSize
	}

	return &ConnectionManager{
		connections: make(map[uuid.UUID]*Connection),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:    config,
		sequence:  deps.Sequence,
		clock:     deps.Clock,
		publisher: deps.Publisher,
		metrics:   deps.Metrics,
	}
}

// UpgradeConnection upgrades an HTTP connection to WebSocket and opens a
// fresh timer session for it.
func (cm *ConnectionManager) UpgradeConnection(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upgrade connection: %w", err)
	}

	connection := cm.newConnection(conn)
	cm.registerConnection(connection)

	// Queue the greeting before the pumps start so it is always first
	connection.sendHello()
	connection.pushDisplay()

	go connection.writePump()
	go connection.readPump()

	log.Info().
		Str("session_id", connection.ID.String()).
		Str("remote_addr", r.RemoteAddr).
		Msg("timer session established")

	return connection, nil
}

func (cm *ConnectionManager) newConnection(conn *websocket.Conn) *Connection {
	now := cm.clock.Now()
	c := &Connection{
		ID:          uuid.New(),
		Conn:        conn,
		Send:        make(chan []byte, cm.config.SendBufferSize),
		Manager:     cm,
		ConnectedAt: now,
	}

	listener := &sessionListener{
		forward: events.NewTimerListener(c.ID, events.NewMetricPublisher(cm.publisher, cm.metrics)),
		metrics: cm.metrics,
	}
	c.Timer = phasetimer.New(cm.sequence,
		phasetimer.WithClock(cm.clock),
		phasetimer.WithRenderer(c),
		phasetimer.WithListener(listener),
		phasetimer.WithTickInterval(cm.config.TickInterval),
	)
	return c
}

// registerConnection adds a connection to the manager
func (cm *ConnectionManager) registerConnection(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.connections[conn.ID] = conn
	cm.metrics.SessionOpened()

	log.Debug().
		Str("session_id", conn.ID.String()).
		Int("total_connections", len(cm.connections)).
		Msg("connection registered")
}

// unregisterConnection removes a connection and stops its timer. Safe to
// call more than once.
func (cm *ConnectionManager) unregisterConnection(conn *Connection) {
	cm.mu.Lock()
	_, exists := cm.connections[conn.ID]
	delete(cm.connections, conn.ID)
	cm.mu.Unlock()

	if !exists {
		return
	}

	// Closing the timer first waits out any render in progress.
	conn.Timer.Close()
	conn.closeSend()
	cm.metrics.SessionClosed()

	log.Info().
		Str("session_id", conn.ID.String()).
		Dur("duration", cm.clock.Now().Sub(conn.ConnectedAt)).
		Msg("timer session closed")
}

// Connection returns the session with the given id.
func (cm *ConnectionManager) Connection(id uuid.UUID) (*Connection, bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	c, ok := cm.connections[id]
	return c, ok
}

// CloseAll disconnects every session.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for _, c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	for _, c := range conns {
		cm.unregisterConnection(c)
		c.Conn.Close()
	}
}

// ConnectionStats summarizes active sessions
type ConnectionStats struct {
	TotalConnections int `json:"total_connections"`
	RunningTimers    int `json:"running_timers"`
	FinishedTimers   int `json:"finished_timers"`
}

// GetConnectionStats returns statistics about active connections
func (cm *ConnectionManager) GetConnectionStats() ConnectionStats {
	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections))
	for _, c := range cm.connections {
		conns = append(conns, c)
	}
	cm.mu.RUnlock()

	stats := ConnectionStats{TotalConnections: len(conns)}
	for _, c := range conns {
		st := c.Timer.State()
		switch {
		case st.Running:
			stats.RunningTimers++
		case st.Exhausted(cm.sequence):
			stats.FinishedTimers++
		}
	}
	return stats
}

// sessionListener records boss fights and forwards events to the publisher
type sessionListener struct {
	forward phasetimer.Listener
	metrics metrics.MetricsCollector
}

func (l *sessionListener) OnTimerEvent(e phasetimer.Event) {
	if e.Kind == phasetimer.EventExhausted {
		l.metrics.BossFightReached()
	}
	l.forward.OnTimerEvent(e)
}

var errConnectionClosed = errors.New("connection closed")
