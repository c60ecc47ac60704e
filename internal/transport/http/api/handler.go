// Package api provides the chat HTTP handlers.
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/chatbot/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers the chat routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.GET("/test", h.Diagnostics)

	e.POST("/chat/session", h.CreateSession)
	e.GET("/chat/sessions", h.ListSessions)
	e.GET("/chat/:session_id/messages", h.ListMessages)
	e.POST("/chat/:session_id/message", h.PostMessage)
}

// Root reports that the backend is up.
// GET /
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "AI Chatbot Backend is running",
	})
}

// Diagnostics reports store connectivity.
// GET /test
func (h *Handler) Diagnostics(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Diagnostics(c.Request().Context()))
}
