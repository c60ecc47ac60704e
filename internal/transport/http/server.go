// Package http provides the HTTP server for the chat backend.
package http

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/chatbot/internal/observability"
	"github.com/xiaot623/chatbot/internal/service"
	"github.com/xiaot623/chatbot/internal/transport/http/api"
	"github.com/xiaot623/chatbot/internal/transport/ws"
)

// NewServer creates and configures the chat HTTP server. chat may be nil
// when the websocket surface is not served.
func NewServer(svc *service.Service, chat *ws.Server) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string {
			return uuid.New().String()
		},
		RequestIDHandler: func(c echo.Context, requestID string) {
			req := c.Request()
			c.SetRequest(req.WithContext(observability.WithRequestID(req.Context(), requestID)))
		},
	}))
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Routes
	api.NewHandler(svc).RegisterRoutes(e)
	if chat != nil {
		chat.RegisterRoutes(e)
	}

	return e
}
