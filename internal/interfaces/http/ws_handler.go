package http

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/infrastructure/ws"
)

// salas conocidas; cualquier otra se rechaza en el upgrade
var validRooms = map[string]bool{
	ports.RoomInventario: true,
	ports.RoomActas:      true,
}

// RegisterWebSocket registra la ruta /ws/:room. Las conexiones quedan en el
// hub y reciben los broadcasts del despachador y de los casos de uso.
func RegisterWebSocket(app *fiber.App, hub *ws.Hub) {
	app.Use("/ws/:room", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !validRooms[c.Params("room")] {
			return fiber.ErrNotFound
		}
		return c.Next()
	})
	app.Get("/ws/:room", websocket.New(func(c *websocket.Conn) {
		hub.Serve(c.Params("room"), c)
	}))
}
