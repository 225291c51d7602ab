package server

import (
	"fmt"
	"time"

	"atelier/internal/models"
	"atelier/internal/notifications"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const wsTicketTTL = 30 * time.Second

// IssueWSTicket handles POST /api/ws/ticket. Browsers cannot set an
// Authorization header on a WebSocket handshake, so the client trades its
// JWT for a short-lived single-use ticket passed as a query parameter.
func (s *Server) IssueWSTicket(c *fiber.Ctx) error {
	if s.redis == nil {
		return models.RespondWithError(c, fiber.StatusServiceUnavailable,
			models.NewInternalError(fmt.Errorf("ticket store unavailable")))
	}
	userID := currentUserID(c)

	ticket := uuid.New().String()
	key := fmt.Sprintf("ws_ticket:%s", ticket)
	if err := s.redis.Set(c.Context(), key, fmt.Sprintf("%d", userID), wsTicketTTL).Err(); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"ticket":     ticket,
		"expires_in": int(wsTicketTTL.Seconds()),
	})
}

// WebsocketHandler returns a websocket handler that registers connections
// with the notification hub. Authentication is handled by route middleware
// and userID is read from connection locals.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userIDVal := conn.Locals("userID")
		uid, ok := userIDVal.(uint)
		if !ok {
			_ = conn.Close()
			return
		}

		if s.hub == nil {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"push notifications disabled"}`))
			_ = conn.Close()
			return
		}

		client := notifications.NewClient(uid, conn)
		if !s.hub.Register(client) {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"connection limit reached"}`))
			_ = conn.Close()
			return
		}

		go client.WritePump()
		client.ReadPump(s.hub)
	})
}
