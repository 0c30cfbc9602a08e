package ports

// Salas de broadcast que consume la UI.
const (
	RoomInventario = "inventario"
	RoomActas      = "actas"
)

// EventBus puerto de difusión en tiempo real hacia la UI (WebSocket). Emitir es
// fire-and-forget: no hay confirmación de entrega y nunca bloquea al caller.
type EventBus interface {
	Broadcast(room, event string, payload any)
}

// NopEventBus implementación nula para tests y arranques sin WebSocket.
type NopEventBus struct{}

// Broadcast no hace nada.
func (NopEventBus) Broadcast(room, event string, payload any) {}
