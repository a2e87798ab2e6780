package ws

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/saturnino-fabrica-de-software/metamind/internal/domain"
)

// Handler upgrades the connection and subscribes it to the hub.
// ?emotion=<label> restricts the feed to analyses with that dominant emotion.
func Handler(hub *Hub) fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		client := &Client{
			hub:    hub,
			conn:   c,
			filter: domain.Emotion(strings.ToLower(c.Query("emotion"))),
			send:   make(chan []byte, 256),
		}

		if !hub.join(client) {
			// hub stopped
			return
		}

		go client.writeLoop()
		client.readLoop()
	})
}

// UpgradeMiddleware rejects plain HTTP requests and validates the filter
func UpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		if e := c.Query("emotion"); e != "" && !domain.Emotion(strings.ToLower(e)).IsStandard() {
			return domain.ErrValidationFailed.WithError(fiber.NewError(fiber.StatusBadRequest, "unknown emotion filter: "+e))
		}

		c.Locals("allowed", true)
		return c.Next()
	}
}
