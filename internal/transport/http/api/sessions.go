package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatbot/internal/domain"
	"github.com/xiaot623/chatbot/internal/service"
)

// CreateSessionRequest is the request to open a chat session.
type CreateSessionRequest struct {
	Title        string `json:"title,omitempty"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// CreateSessionResponse is returned after a session is created.
type CreateSessionResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateSession creates a new chat session.
// POST /chat/session
func (h *Handler) CreateSession(c echo.Context) error {
	ctx := c.Request().Context()

	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	session, err := h.service.CreateSession(ctx, service.CreateSessionInput{
		Title:        req.Title,
		SystemPrompt: req.SystemPrompt,
		UserID:       req.UserID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, CreateSessionResponse{
		ID:    session.ID,
		Title: session.Title,
	})
}

// ListSessions lists sessions, newest first.
// GET /chat/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	limit, err := queryLimit(c, domain.DefaultSessionLimit)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}

	sessions, err := h.service.ListSessions(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, sessions)
}
