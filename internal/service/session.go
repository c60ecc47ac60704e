package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/chatbot/internal/domain"
	"github.com/xiaot623/chatbot/internal/observability"
)

type CreateSessionInput struct {
	Title        string
	SystemPrompt string
	UserID       string
}

// CreateSession persists a new session and, when a system prompt is given,
// its system message. The two writes are independent: if the second fails
// the session stays persisted and the error is returned.
func (s *Service) CreateSession(ctx context.Context, in CreateSessionInput) (*domain.ChatSession, error) {
	title := in.Title
	if title == "" {
		title = domain.DefaultTitle
	}

	session := &domain.ChatSession{
		Title:        title,
		UserID:       in.UserID,
		SystemPrompt: in.SystemPrompt,
	}
	if err := s.validator.ValidateSession(ctx, session); err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With("user_id", in.UserID)

	if err := s.store.CreateSession(ctx, session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log = log.With("session_id", session.ID)

	if in.SystemPrompt != "" {
		msg := &domain.Message{
			SessionID: session.ID,
			Role:      domain.RoleSystem,
			Content:   in.SystemPrompt,
		}
		if err := s.appendMessage(ctx, msg); err != nil {
			log.Error("failed to create system message", "error", err)
			return nil, err
		}
	}

	log.Info("session created", "title", session.Title)
	return session, nil
}

// ListSessions returns up to limit sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	sessions, err := s.store.ListSessions(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// GetSession resolves sessionID to a stored session.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*domain.ChatSession, error) {
	id, err := domain.CanonicalID(sessionID)
	if err != nil {
		return nil, err
	}

	session, err := s.store.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}
