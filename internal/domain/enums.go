// Package domain defines the core domain models for the chat backend.
package domain

// Role identifies who produced a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Collection names used by every store backend.
const (
	CollectionSessions = "chatsession"
	CollectionMessages = "message"
)

// Defaults applied when a caller leaves a value out.
const (
	DefaultTitle        = "New Chat"
	DefaultSessionLimit = 50
	DefaultMessageLimit = 200
	HistoryWindow       = 20
)
