package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de inventario.
const (
	MovementKindIntake      = "intake"      // alta inicial o reingreso
	MovementKindReservation = "reservation" // reserva pendiente de firma
	MovementKindRelease     = "release"     // reversa de una reserva (rechazo/cancelación)
	MovementKindConsumption = "consumption" // consumo definitivo (entrega firmada)
	MovementKindReturn      = "return"      // devolución de un activo entregado
	MovementKindAdjustment  = "adjustment"  // corrección administrativa
	MovementKindWriteOff    = "write_off"   // baja definitiva
)

// Movement es un registro inmutable del libro de inventario. Toda mutación de
// un Item produce exactamente un Movement en la misma transacción; para
// serializados registra StatusBefore/StatusAfter, para consumibles
// QuantityBefore/QuantityAfter.
type Movement struct {
	ID             string
	ItemID         string
	Kind           string
	StatusBefore   string
	StatusAfter    string
	QuantityBefore decimal.Decimal
	QuantityAfter  decimal.Decimal
	Quantity       decimal.Decimal // cantidad movida (positiva)
	Reason         string
	ActaID         string // acta que originó el movimiento, vacío para ajustes
	ActorID        string // usuario interno; vacío si el disparador fue una firma externa
	CreatedAt      time.Time
}
