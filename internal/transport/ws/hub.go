package ws

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xiaot623/chatbot/internal/observability"
)

// ErrBufferFull is returned when a connection's send buffer is full.
var ErrBufferFull = errors.New("send buffer full")

const sendBufferSize = 64

// Connection is one websocket client bound to a chat session.
type Connection struct {
	ID        string
	SessionID string
	Conn      *websocket.Conn
	Send      chan []byte

	mu        sync.Mutex
	closeOnce sync.Once
}

// Hub tracks the open connections of each session.
type Hub struct {
	sessions map[string]map[string]*Connection
	mu       sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		sessions: make(map[string]map[string]*Connection),
	}
}

// NewConnection wraps ws for sessionID. It is not registered yet.
func (h *Hub) NewConnection(ws *websocket.Conn, sessionID string) *Connection {
	return &Connection{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Conn:      ws,
		Send:      make(chan []byte, sendBufferSize),
	}
}

// Register adds conn to its session.
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sessions[conn.SessionID] == nil {
		h.sessions[conn.SessionID] = make(map[string]*Connection)
	}
	h.sessions[conn.SessionID][conn.ID] = conn
	h.logger(conn).Info("connection registered")
}

// Unregister removes conn and closes its send channel. It is safe to call
// more than once.
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.sessions[conn.SessionID]
	if !ok {
		return
	}
	if _, ok := conns[conn.ID]; !ok {
		return
	}
	delete(conns, conn.ID)
	if len(conns) == 0 {
		delete(h.sessions, conn.SessionID)
	}
	close(conn.Send)
	h.logger(conn).Info("connection unregistered")
}

// BroadcastJSON sends v to every connection of a session. Connections
// whose buffer is full are dropped.
func (h *Hub) BroadcastJSON(sessionID string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.RLock()
	var stalled []*Connection
	for _, conn := range h.sessions[sessionID] {
		select {
		case conn.Send <- data:
		default:
			stalled = append(stalled, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range stalled {
		h.logger(conn).Warn("connection buffer full, closing")
		h.Unregister(conn)
		conn.Close()
	}
	return nil
}

// SendJSON sends v to a single connection.
func (h *Hub) SendJSON(conn *Connection, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.sessions[conn.SessionID][conn.ID]; !ok {
		return nil
	}
	select {
	case conn.Send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// ConnectionCount returns the number of connections open on a session.
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[sessionID])
}

func (h *Hub) logger(conn *Connection) *slog.Logger {
	return observability.Logger().With("connection_id", conn.ID, "session_id", conn.SessionID)
}

// WriteMessage writes a message to the connection with proper locking.
func (c *Connection) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SetWriteDeadline sets the write deadline for the connection.
func (c *Connection) SetWriteDeadline(t time.Time) error {
	return c.Conn.SetWriteDeadline(t)
}

// SetReadDeadline sets the read deadline for the connection.
func (c *Connection) SetReadDeadline(t time.Time) error {
	return c.Conn.SetReadDeadline(t)
}

// Close closes the underlying connection once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.Conn.Close()
	})
	return err
}

// CloseAll closes every open connection. Their read loops then unregister
// them.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	var conns []*Connection
	for _, session := range h.sessions {
		for _, conn := range session {
			conns = append(conns, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		conn.Close()
	}
}
