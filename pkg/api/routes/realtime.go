package routes

import (
	"github.com/chanhyuk05/tayobell/pkg/hub"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

func RealtimeRouter(router fiber.Router, realtimeHub *hub.Hub) {
	router.Get("/bis/ws", requireUpgrade, websocket.New(func(conn *websocket.Conn) {
		realtimeHub.Serve(conn, hub.ClassBIS)
	}))
	router.Get("/sis/ws", requireUpgrade, websocket.New(func(conn *websocket.Conn) {
		realtimeHub.Serve(conn, hub.ClassSIS)
	}))
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}

	return fiber.ErrUpgradeRequired
}
