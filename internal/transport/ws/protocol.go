package ws

import "github.com/xiaot623/chatbot/internal/domain"

// Message types from client to server
const (
	TypeUserMessage = "user_message"
	TypePing        = "ping"
)

// Message types from server to client
const (
	TypeSessionReady     = "session_ready"
	TypeUserEcho         = "user_echo"
	TypeAssistantMessage = "assistant_message"
	TypePong             = "pong"
	TypeError            = "error"
)

// Error codes
const (
	ErrorCodeInvalidMessage   = "invalid_message"
	ErrorCodeSessionNotFound  = "session_not_found"
	ErrorCodeValidationFailed = "validation_failed"
	ErrorCodeInternalError    = "internal_error"
)

// BaseMessage contains common fields for all messages.
type BaseMessage struct {
	Type      string `json:"type"`
	Ts        int64  `json:"ts"`
	RequestID string `json:"request_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// UserMessage is sent by the client to post a turn.
type UserMessage struct {
	BaseMessage
	Content *string `json:"content"`
}

// SessionReadyMessage is sent once the connection is bound to its session.
type SessionReadyMessage struct {
	BaseMessage
	Title string `json:"title"`
}

// ChatMessage carries a stored message. It is broadcast to every
// connection of the session as user_echo or assistant_message.
type ChatMessage struct {
	BaseMessage
	Message domain.Message `json:"message"`
}

// ErrorMessage is sent when a turn cannot be processed.
type ErrorMessage struct {
	BaseMessage
	Code    string `json:"code"`
	Message string `json:"message"`
}
