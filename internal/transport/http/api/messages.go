package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatbot/internal/domain"
)

// PostMessageRequest carries one user turn. Content may be empty but
// must be present.
type PostMessageRequest struct {
	Content *string `json:"content"`
}

// PostMessageResponse is the assistant reply to a user turn.
type PostMessageResponse struct {
	ID      string      `json:"id"`
	Role    domain.Role `json:"role"`
	Content string      `json:"content"`
}

// ListMessages lists the messages of a session, oldest first.
// GET /chat/:session_id/messages
func (h *Handler) ListMessages(c echo.Context) error {
	limit, err := queryLimit(c, domain.DefaultMessageLimit)
	if err != nil {
		return badRequest(c, "limit must be an integer")
	}

	messages, err := h.service.ListMessages(c.Request().Context(), c.Param("session_id"), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

// PostMessage appends a user message and returns the assistant reply.
// POST /chat/:session_id/message
func (h *Handler) PostMessage(c echo.Context) error {
	var req PostMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if req.Content == nil {
		return badRequest(c, "content is required")
	}

	msg, err := h.service.PostMessage(c.Request().Context(), c.Param("session_id"), *req.Content)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, PostMessageResponse{
		ID:      msg.ID,
		Role:    msg.Role,
		Content: msg.Content,
	})
}
