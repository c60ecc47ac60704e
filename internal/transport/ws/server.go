// Package ws serves live chat turns over websocket connections bound to a
// single session.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatbot/internal/config"
	"github.com/xiaot623/chatbot/internal/domain"
	"github.com/xiaot623/chatbot/internal/observability"
	"github.com/xiaot623/chatbot/internal/service"
	"github.com/xiaot623/chatbot/internal/transport/http/api"
)

const turnTimeout = 30 * time.Second

// Server handles WebSocket connections.
type Server struct {
	cfg      *config.Config
	service  *service.Service
	hub      *Hub
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server.
func NewServer(cfg *config.Config, svc *service.Service) *Server {
	return &Server{
		cfg:     cfg,
		service: svc,
		hub:     NewHub(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// RegisterRoutes registers the websocket route with the echo server.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/chat/:session_id/ws", s.HandleWebSocket)
}

// Hub returns the connection registry.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Shutdown closes every open connection.
func (s *Server) Shutdown() {
	s.hub.CloseAll()
}

// HandleWebSocket resolves the session, upgrades the connection and starts
// its read and write loops.
// GET /chat/:session_id/ws
func (s *Server) HandleWebSocket(c echo.Context) error {
	session, err := s.service.GetSession(c.Request().Context(), c.Param("session_id"))
	if err != nil {
		return c.JSON(api.StatusFor(err), map[string]string{"error": err.Error()})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		observability.LoggerFromContext(c.Request().Context()).Warn("failed to upgrade websocket", "error", err)
		return nil
	}
	ws.SetReadLimit(s.cfg.WSMaxMessageSize)

	conn := s.hub.NewConnection(ws, session.ID)
	s.hub.Register(conn)

	s.hub.SendJSON(conn, SessionReadyMessage{
		BaseMessage: s.base(TypeSessionReady, "", session.ID),
		Title:       session.Title,
	})

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

// readPump reads messages from the WebSocket connection. Turns from one
// connection are handled in order.
func (s *Server) readPump(conn *Connection) {
	defer func() {
		s.hub.Unregister(conn)
		conn.Close()
	}()

	conn.SetReadDeadline(time.Now().Add(s.cfg.WSReadTimeout))
	conn.Conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(s.cfg.WSReadTimeout))
		return nil
	})

	for {
		_, message, err := conn.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.hub.logger(conn).Warn("websocket read failed", "error", err)
			}
			break
		}
		conn.SetReadDeadline(time.Now().Add(s.cfg.WSReadTimeout))

		s.handleMessage(conn, message)
	}
}

// writePump writes messages to the WebSocket connection.
func (s *Server) writePump(conn *Connection) {
	ticker := time.NewTicker(s.cfg.WSPingInterval)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.hub.logger(conn).Warn("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(s.cfg.WSWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage dispatches incoming messages to appropriate handlers.
func (s *Server) handleMessage(conn *Connection, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid JSON message")
		return
	}

	switch baseMsg.Type {
	case TypeUserMessage:
		s.handleUserMessage(conn, data)
	case TypePing:
		s.hub.SendJSON(conn, s.base(TypePong, baseMsg.RequestID, conn.SessionID))
	default:
		s.sendError(conn, baseMsg.RequestID, ErrorCodeInvalidMessage, "unknown message type: "+baseMsg.Type)
	}
}

// handleUserMessage posts one turn and fans the stored user message and
// the reply out to every connection of the session.
func (s *Server) handleUserMessage(conn *Connection, data []byte) {
	var msg UserMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(conn, "", ErrorCodeInvalidMessage, "invalid user_message message")
		return
	}
	if msg.Content == nil {
		s.sendError(conn, msg.RequestID, ErrorCodeInvalidMessage, "content is required")
		return
	}

	requestID := msg.RequestID
	if requestID == "" {
		requestID = uuid.New().String()
	}

	ctx, cancel := context.WithTimeout(observability.WithRequestID(context.Background(), requestID), turnTimeout)
	defer cancel()

	turn, err := s.service.PostTurn(ctx, conn.SessionID, *msg.Content)
	if err != nil {
		code := ErrorCodeInternalError
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			code = ErrorCodeSessionNotFound
		case errors.Is(err, domain.ErrValidation):
			code = ErrorCodeValidationFailed
		}
		s.sendError(conn, requestID, code, err.Error())
		return
	}

	if turn.User != nil {
		s.hub.BroadcastJSON(conn.SessionID, ChatMessage{
			BaseMessage: s.base(TypeUserEcho, requestID, conn.SessionID),
			Message:     *turn.User,
		})
	}
	s.hub.BroadcastJSON(conn.SessionID, ChatMessage{
		BaseMessage: s.base(TypeAssistantMessage, requestID, conn.SessionID),
		Message:     *turn.Assistant,
	})
}

// sendError sends an error message to a connection.
func (s *Server) sendError(conn *Connection, requestID, code, message string) {
	s.hub.SendJSON(conn, ErrorMessage{
		BaseMessage: s.base(TypeError, requestID, conn.SessionID),
		Code:        code,
		Message:     message,
	})
}

func (s *Server) base(msgType, requestID, sessionID string) BaseMessage {
	return BaseMessage{
		Type:      msgType,
		Ts:        time.Now().UnixMilli(),
		RequestID: requestID,
		SessionID: sessionID,
	}
}
