// Package realtime maintains the Socket.IO connection that carries
// message and notification pushes. A Manager is owned by the session that
// creates it and handed to the stores that listen on it.
package realtime

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	json "github.com/json-iterator/go"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/config"
	clierrors "github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/errors"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/logger"
	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/metrics"
)

// Config holds connection manager configuration
type Config struct {
	URL                  string
	Header               http.Header
	DialTimeout          time.Duration
	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectMaxDelay    time.Duration
	MaxReconnectAttempts int
}

// MinReconnectDelay is the smallest reconnect backoff a manager uses
const MinReconnectDelay = 10 * time.Millisecond

// DefaultConfig returns a local development configuration
func DefaultConfig() Config {
	return Config{
		URL:                  "http://localhost:5050",
		DialTimeout:          15 * time.Second,
		HeartbeatInterval:    25 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectMaxDelay:    30 * time.Second,
		MaxReconnectAttempts: -1, // unlimited
	}
}

// ConfigFromSettings reads the realtime.* keys and authenticates with the
// given session cookies
func ConfigFromSettings(cookies []*http.Cookie) Config {
	cfg := DefaultConfig()
	cfg.URL = config.GetString("realtime.url")
	cfg.MaxReconnectAttempts = config.GetInt("realtime.max_reconnects")
	if ms := config.GetInt("realtime.heartbeat_ms"); ms > 0 {
		cfg.HeartbeatInterval = time.Duration(ms) * time.Millisecond
	}
	if ms := config.GetInt("realtime.reconnect_base_ms"); ms > 0 {
		cfg.ReconnectBaseDelay = time.Duration(ms) * time.Millisecond
	}
	if ms := config.GetInt("realtime.reconnect_max_ms"); ms > 0 {
		cfg.ReconnectMaxDelay = time.Duration(ms) * time.Millisecond
	}

	if len(cookies) > 0 {
		parts := make([]string, 0, len(cookies))
		for _, c := range cookies {
			parts = append(parts, c.Name+"="+c.Value)
		}
		cfg.Header = http.Header{"Cookie": []string{strings.Join(parts, "; ")}}
	}
	return cfg
}

// SocketURL converts an http(s) base into the Socket.IO websocket endpoint
func SocketURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported realtime scheme %q", u.Scheme)
	}

	u.Path += "/socket.io/"
	u.RawQuery = url.Values{"EIO": {"4"}, "transport": {"websocket"}}.Encode()
	return u.String(), nil
}

// ConnectionState represents the state of the connection
type ConnectionState int

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "disconnected"
	}
}

// ConnectionStats holds connection statistics
type ConnectionStats struct {
	EventsReceived int64
	EventsSent     int64
	ReconnectCount int
	LastError      string
	SessionID      string
	ConnectedAt    time.Time
	DisconnectedAt time.Time
}

// Handler receives a routed event. Handlers run on the read loop and must
// not block.
type Handler func(Event)

type subscription struct {
	id uint64
	fn Handler
}

// Manager owns one Socket.IO connection
type Manager struct {
	config Config

	mu                sync.RWMutex
	conn              *websocket.Conn
	writeMu           sync.Mutex
	reconnectAttempts int
	reconnectDelay    time.Duration
	pingWindow        time.Duration
	lastSeen          atomic.Int64
	state             atomic.Value // ConnectionState

	listenersMu sync.RWMutex
	listeners   map[string][]subscription
	anyHandlers []subscription
	nextID      atomic.Uint64

	ctx    context.Context
	cancel context.CancelFunc

	statsLock sync.RWMutex
	stats     ConnectionStats
}

// withBackoffFloor keeps the reconnect backoff positive and ordered
func (c Config) withBackoffFloor() Config {
	if c.ReconnectBaseDelay < MinReconnectDelay {
		c.ReconnectBaseDelay = MinReconnectDelay
	}
	if c.ReconnectMaxDelay < c.ReconnectBaseDelay {
		c.ReconnectMaxDelay = c.ReconnectBaseDelay
	}
	return c
}

// NewManager creates a disconnected manager
func NewManager(cfg Config) *Manager {
	cfg = cfg.withBackoffFloor()
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:         cfg,
		listeners:      make(map[string][]subscription),
		reconnectDelay: cfg.ReconnectBaseDelay,
		ctx:            ctx,
		cancel:         cancel,
	}
	m.state.Store(StateDisconnected)
	return m
}

// Connect dials the server and completes the Socket.IO handshake. The
// connection is kept alive and re-established until Close.
func (m *Manager) Connect(ctx context.Context) error {
	m.setState(StateConnecting)

	conn, err := m.dial(ctx)
	if err != nil {
		m.setState(StateError)
		m.recordError(err.Error())
		return clierrors.RealtimeError("Failed to connect to live updates", err)
	}

	m.attach(conn)
	logger.Debug("Realtime connected", "url", m.config.URL, "sid", m.GetStats().SessionID)
	return nil
}

// Close disconnects and stops reconnecting. It is safe to call twice.
func (m *Manager) Close() error {
	m.cancel()

	m.mu.Lock()
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		m.writeMu.Lock()
		_ = conn.WriteMessage(websocket.TextMessage, disconnectFrame())
		m.writeMu.Unlock()
		conn.Close()
	}

	if m.getState() != StateDisconnected {
		m.setState(StateDisconnected)
		m.recordDisconnected()
		logger.Debug("Realtime disconnected")
	}
	return nil
}

// IsConnected returns true if the connection is established
func (m *Manager) IsConnected() bool {
	return m.getState() == StateConnected
}

// State returns the current connection state
func (m *Manager) State() ConnectionState {
	return m.getState()
}

// On subscribes to one event name and returns the unsubscribe function
func (m *Manager) On(event string, fn Handler) func() {
	sub := subscription{id: m.nextID.Add(1), fn: fn}

	m.listenersMu.Lock()
	m.listeners[event] = append(m.listeners[event], sub)
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		m.listeners[event] = without(m.listeners[event], sub.id)
		if len(m.listeners[event]) == 0 {
			delete(m.listeners, event)
		}
	}
}

// OnAny subscribes to every event and returns the unsubscribe function
func (m *Manager) OnAny(fn Handler) func() {
	sub := subscription{id: m.nextID.Add(1), fn: fn}

	m.listenersMu.Lock()
	m.anyHandlers = append(m.anyHandlers, sub)
	m.listenersMu.Unlock()

	return func() {
		m.listenersMu.Lock()
		defer m.listenersMu.Unlock()
		m.anyHandlers = without(m.anyHandlers, sub.id)
	}
}

func without(subs []subscription, id uint64) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Emit sends an event to the server
func (m *Manager) Emit(event string, data interface{}) error {
	frame, err := encodeEvent(event, data)
	if err != nil {
		return err
	}
	if err := m.write(frame); err != nil {
		return err
	}
	m.recordEventSent()
	return nil
}

// GetStats returns connection statistics
func (m *Manager) GetStats() ConnectionStats {
	m.statsLock.RLock()
	defer m.statsLock.RUnlock()
	return m.stats
}

// Private methods

// dial opens the websocket and runs the Engine.IO and Socket.IO handshakes
func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	endpoint, err := SocketURL(m.config.URL)
	if err != nil {
		return nil, err
	}

	timeout := m.config.DialTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, endpoint, m.config.Header)
	if err != nil {
		return nil, err
	}

	if err := m.handshake(conn, timeout); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (m *Manager) handshake(conn *websocket.Conn, timeout time.Duration) error {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("failed to read open packet: %w", err)
	}
	h, err := parseHandshake(string(data))
	if err != nil {
		return err
	}

	interval := time.Duration(h.PingInterval) * time.Millisecond
	if interval <= 0 {
		interval = m.config.HeartbeatInterval
	}
	m.mu.Lock()
	m.pingWindow = interval + time.Duration(h.PingTimeout)*time.Millisecond
	m.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, connectFrame()); err != nil {
		return fmt.Errorf("failed to open namespace: %w", err)
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("failed to read connect ack: %w", err)
		}
		frame := string(data)
		switch {
		case frame == string(eioPing):
			if err := conn.WriteMessage(websocket.TextMessage, pongFrame()); err != nil {
				return err
			}
		case len(frame) >= 2 && frame[0] == eioMessage && frame[1] == sioConnect:
			var ack struct {
				SID string `json:"sid"`
			}
			if len(frame) > 2 {
				_ = json.UnmarshalFromString(frame[2:], &ack)
			}
			m.statsLock.Lock()
			m.stats.SessionID = ack.SID
			if m.stats.SessionID == "" {
				m.stats.SessionID = h.SID
			}
			m.statsLock.Unlock()
			return nil
		case len(frame) >= 2 && frame[0] == eioMessage && frame[1] == sioConnectError:
			return fmt.Errorf("server refused connection: %s", frame[2:])
		}
	}
}

// attach installs a handshaken connection and starts its loops
func (m *Manager) attach(conn *websocket.Conn) {
	m.mu.Lock()
	m.conn = conn
	m.reconnectAttempts = 0
	m.reconnectDelay = m.config.ReconnectBaseDelay
	m.mu.Unlock()

	m.touch()
	m.setState(StateConnected)
	m.recordConnected()

	go m.readLoop(conn)
	go m.heartbeatLoop(conn)
}

func (m *Manager) write(frame []byte) error {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, frame)
}

func (m *Manager) readLoop(conn *websocket.Conn) {
	defer m.handleDisconnect(conn)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-m.ctx.Done():
			default:
				m.recordError(err.Error())
				logger.Warn("Realtime read error", "error", err)
			}
			return
		}
		m.touch()

		frame := string(data)
		if frame == "" {
			continue
		}

		switch frame[0] {
		case eioPing:
			if err := m.write(pongFrame()); err != nil {
				logger.Debug("Failed to answer ping", "error", err)
			}
		case eioClose:
			return
		case eioMessage:
			if len(frame) < 2 {
				continue
			}
			switch frame[1] {
			case sioEvent:
				ev, err := decodeEvent(frame[2:])
				if err != nil {
					logger.Debug("Dropping malformed event", "error", err)
					continue
				}
				m.dispatch(ev)
			case sioDisconnect:
				return
			}
		}
	}
}

func (m *Manager) dispatch(ev Event) {
	m.recordEventReceived()

	kind := KindOther
	if IsNotifyEvent(ev.Name) {
		kind = Classify(ev.Data)
	}
	metrics.Get().RealtimeEventsTotal.WithLabelValues(string(kind)).Inc()
	logger.Debug("Realtime event", "event", ev.Name, "kind", kind)

	m.listenersMu.RLock()
	subs := append([]subscription{}, m.listeners[ev.Name]...)
	subs = append(subs, m.anyHandlers...)
	m.listenersMu.RUnlock()

	for _, s := range subs {
		s.fn(ev)
	}
}

// heartbeatLoop closes a connection that has been silent for longer than
// the server's ping interval plus timeout
func (m *Manager) heartbeatLoop(conn *websocket.Conn) {
	m.mu.RLock()
	window := m.pingWindow
	m.mu.RUnlock()
	if window <= 0 {
		window = m.config.HeartbeatInterval * 2
	}
	if window <= 0 {
		return
	}

	ticker := time.NewTicker(window / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			current := m.conn
			m.mu.RUnlock()
			if current != conn {
				return
			}
			if time.Since(time.Unix(0, m.lastSeen.Load())) > window {
				logger.Warn("Realtime heartbeat timed out", "window", window)
				conn.Close()
				return
			}
		}
	}
}

func (m *Manager) handleDisconnect(conn *websocket.Conn) {
	m.mu.Lock()
	if m.conn == conn {
		m.conn = nil
	}
	m.mu.Unlock()
	conn.Close()

	select {
	case <-m.ctx.Done():
		return
	default:
	}

	m.setState(StateReconnecting)
	m.recordDisconnected()

	// Attempt reconnection with exponential backoff
	for {
		m.mu.Lock()
		attempts := m.reconnectAttempts
		delay := m.reconnectDelay
		m.mu.Unlock()

		if m.config.MaxReconnectAttempts >= 0 && attempts >= m.config.MaxReconnectAttempts {
			m.setState(StateError)
			logger.Error("Max realtime reconnection attempts reached")
			return
		}

		// Calculate backoff delay with jitter
		waitTime := delay
		if delay > 0 {
			waitTime += time.Duration(rand.Int63n(int64(delay)/2 + 1))
		}

		logger.Debug("Reconnecting realtime", "attempt", attempts+1, "wait_ms", waitTime.Milliseconds())

		select {
		case <-m.ctx.Done():
			return
		case <-time.After(waitTime):
		}

		metrics.Get().RealtimeReconnectsTotal.Inc()
		m.statsLock.Lock()
		m.stats.ReconnectCount++
		m.statsLock.Unlock()

		next, err := m.dial(m.ctx)
		if err != nil {
			m.recordError(err.Error())
			m.mu.Lock()
			m.reconnectAttempts++
			// Exponential backoff: 2x each time, capped at max
			m.reconnectDelay *= 2
			if m.reconnectDelay > m.config.ReconnectMaxDelay {
				m.reconnectDelay = m.config.ReconnectMaxDelay
			}
			m.mu.Unlock()
			continue
		}

		select {
		case <-m.ctx.Done():
			next.Close()
			return
		default:
		}

		m.attach(next)
		logger.Debug("Realtime reconnected")
		return
	}
}

func (m *Manager) touch() {
	m.lastSeen.Store(time.Now().UnixNano())
}

func (m *Manager) setState(state ConnectionState) {
	m.state.Store(state)
	connected := 0.0
	if state == StateConnected {
		connected = 1
	}
	metrics.Get().RealtimeConnected.Set(connected)
}

func (m *Manager) getState() ConnectionState {
	return m.state.Load().(ConnectionState)
}

func (m *Manager) recordEventReceived() {
	m.statsLock.Lock()
	m.stats.EventsReceived++
	m.statsLock.Unlock()
}

func (m *Manager) recordEventSent() {
	m.statsLock.Lock()
	m.stats.EventsSent++
	m.statsLock.Unlock()
}

func (m *Manager) recordError(errMsg string) {
	m.statsLock.Lock()
	m.stats.LastError = errMsg
	m.statsLock.Unlock()
}

func (m *Manager) recordConnected() {
	m.statsLock.Lock()
	m.stats.ConnectedAt = time.Now()
	m.statsLock.Unlock()
}

func (m *Manager) recordDisconnected() {
	m.statsLock.Lock()
	m.stats.DisconnectedAt = time.Now()
	m.statsLock.Unlock()
}
