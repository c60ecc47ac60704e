package domain

import "time"

// ChatSession represents a conversation container.
type ChatSession struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	UserID       string    `json:"user_id,omitempty"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Message represents a single utterance within a session.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
