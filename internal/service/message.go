package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/chatbot/internal/domain"
	"github.com/xiaot623/chatbot/internal/observability"
	"github.com/xiaot623/chatbot/internal/reply"
)

// ListMessages returns up to limit messages of a session, oldest first.
func (s *Service) ListMessages(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, session.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}
	return messages, nil
}

// Turn is the pair of messages stored by one user turn.
type Turn struct {
	User      *domain.Message
	Assistant *domain.Message
}

// PostMessage stores a user turn, computes the reply from the recent
// history and stores it as the assistant turn, which is returned.
func (s *Service) PostMessage(ctx context.Context, sessionID, content string) (*domain.Message, error) {
	turn, err := s.PostTurn(ctx, sessionID, content)
	if err != nil {
		return nil, err
	}
	return turn.Assistant, nil
}

// PostTurn is PostMessage returning both stored messages.
//
// The user and assistant writes are not atomic. If the reply cannot be
// stored the user message remains without an answer.
func (s *Service) PostTurn(ctx context.Context, sessionID, content string) (*Turn, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With("session_id", session.ID)

	userMsg := &domain.Message{
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Content:   content,
	}
	if err := s.appendMessage(ctx, userMsg); err != nil {
		log.Error("failed to append user message", "error", err)
		return nil, err
	}

	recent, err := s.store.RecentMessages(ctx, session.ID, domain.HistoryWindow)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	history := make([]reply.Turn, 0, len(recent))
	for _, m := range recent {
		history = append(history, reply.Turn{Role: m.Role, Content: m.Content})
	}

	assistantMsg := &domain.Message{
		SessionID: session.ID,
		Role:      domain.RoleAssistant,
		Content:   s.reply(content, history),
	}
	if err := s.appendMessage(ctx, assistantMsg); err != nil {
		log.Error("failed to append assistant message", "error", err, "user_message_id", userMsg.ID)
		return nil, err
	}

	log.Debug("turn completed", "history", len(history), "rule", reply.Rule(content))
	return &Turn{User: userMsg, Assistant: assistantMsg}, nil
}

func (s *Service) appendMessage(ctx context.Context, msg *domain.Message) error {
	if err := s.validator.ValidateMessage(ctx, msg); err != nil {
		return err
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return fmt.Errorf("failed to create %s message: %w", msg.Role, err)
	}
	return nil
}
