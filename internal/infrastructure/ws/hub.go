// Package ws implementa el puerto EventBus sobre WebSocket con salas.
package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Activos-api/internal/application/ports"
)

var _ ports.EventBus = (*Hub)(nil)

// envelope es el mensaje que viaja por el socket.
type envelope struct {
	Event   string `json:"event"`
	Payload any    `json:"payload,omitempty"`
}

// Hub mantiene las conexiones agrupadas por sala y difunde eventos. Broadcast
// es fire-and-forget: una conexión lenta o caída se descarta, nunca bloquea
// al caller.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*websocket.Conn]struct{}
	log   zerolog.Logger
}

// NewHub construye el hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]struct{}),
		log:   log.With().Str("component", "ws").Logger(),
	}
}

// Broadcast difunde un evento a todos los clientes de la sala.
func (h *Hub) Broadcast(room, event string, payload any) {
	raw, err := json.Marshal(envelope{Event: event, Payload: payload})
	if err != nil {
		h.log.Error().Err(err).Str("event", event).Msg("serializar evento ws")
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[room]))
	for c := range h.rooms[room] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.remove(room, c)
			_ = c.Close()
		}
	}
}

// Serve atiende una conexión entrante: la registra en la sala y bloquea
// leyendo hasta que el cliente cierre. El servidor no procesa mensajes del
// cliente; el canal es de solo bajada.
func (h *Hub) Serve(room string, c *websocket.Conn) {
	h.add(room, c)
	h.log.Debug().Str("room", room).Msg("cliente ws conectado")
	defer func() {
		h.remove(room, c)
		h.log.Debug().Str("room", room).Msg("cliente ws desconectado")
	}()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) add(room string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*websocket.Conn]struct{})
	}
	h.rooms[room][c] = struct{}{}
}

func (h *Hub) remove(room string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms[room], c)
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}
