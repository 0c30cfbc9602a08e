package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de activo.
const (
	ItemKindDevice     = "device"     // equipo serializado (portátil, monitor, ...)
	ItemKindFurniture  = "furniture"  // mobiliario serializado
	ItemKindConsumable = "consumable" // consumible a granel (cables, tóner, ...)
)

// Estados válidos para activos serializados. Los consumibles no usan Status:
// su disponibilidad es QuantityOnHand.
const (
	ItemStatusAvailable      = "available"
	ItemStatusReserved       = "reserved"
	ItemStatusHandedOut      = "handed_out"
	ItemStatusDamaged        = "damaged"
	ItemStatusLost           = "lost"
	ItemStatusDecommissioned = "decommissioned"
)

// Item representa un activo del inventario. Los activos serializados (device,
// furniture) mutan por Status; los consumibles mutan por QuantityOnHand. Nunca
// se borran: se dan de baja (decommissioned) o se marcan inactivos.
type Item struct {
	ID             string
	Kind           string // device, furniture, consumable
	Name           string
	Description    string
	Serial         string          // único, solo serializados
	Status         string          // solo serializados
	QuantityOnHand decimal.Decimal // solo consumibles, nunca negativa
	MinThreshold   decimal.Decimal // punto de reposición para consumibles
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Serialized indica si el activo se controla por estado (unidad única con serial).
func (i *Item) Serialized() bool {
	return i.Kind == ItemKindDevice || i.Kind == ItemKindFurniture
}

// ValidItemKind valida un tipo de activo.
func ValidItemKind(kind string) bool {
	switch kind {
	case ItemKindDevice, ItemKindFurniture, ItemKindConsumable:
		return true
	}
	return false
}

// ValidItemStatus valida un estado de activo serializado.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusAvailable, ItemStatusReserved, ItemStatusHandedOut,
		ItemStatusDamaged, ItemStatusLost, ItemStatusDecommissioned:
		return true
	}
	return false
}
