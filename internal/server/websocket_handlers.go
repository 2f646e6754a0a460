package server

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// WebsocketUpgrade gates /api/ws behind a proper upgrade request and resolves
// the optional viewer identity before the connection is hijacked. Anonymous
// viewers connect as user 0.
func (s *Server) WebsocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID, _ := s.optionalUserID(c)
		c.Locals("userID", userID)
		return c.Next()
	}
}

// WebsocketHandler returns the live-feed websocket handler. Connections are
// registered with the Hub and receive post/comment/like events as they happen.
func (s *Server) WebsocketHandler() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("userID").(uint)

		if s.hub == nil {
			_ = conn.Close()
			return
		}

		client, err := s.hub.Register(userID, conn)
		if err != nil {
			log.Printf("websocket: failed to register user %d: %v", userID, err)
			_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"`+err.Error()+`"}`))
			_ = conn.Close()
			return
		}
		defer s.hub.UnregisterClient(client)

		// Start pumps. The read pump blocks until the peer goes away.
		go client.WritePump()
		client.ReadPump()
	})
}
