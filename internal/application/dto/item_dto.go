package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateItemRequest entrada para dar de alta un activo.
// Serial es obligatorio para device/furniture; Quantity solo aplica a consumable.
type CreateItemRequest struct {
	Kind         string          `json:"kind" validate:"required,oneof=device furniture consumable"`
	Name         string          `json:"name" validate:"required,min=1,max=200"`
	Description  string          `json:"description" validate:"omitempty,max=1000"`
	Serial       string          `json:"serial" validate:"omitempty,max=120"`
	Quantity     decimal.Decimal `json:"quantity"`
	MinThreshold decimal.Decimal `json:"min_threshold"`
}

// AdjustItemRequest corrección administrativa de cantidad (solo consumibles).
type AdjustItemRequest struct {
	NewQuantity decimal.Decimal `json:"new_quantity"`
	Reason      string          `json:"reason" validate:"required,min=1,max=500"`
}

// ItemResponse salida de un activo.
type ItemResponse struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Serial         string          `json:"serial,omitempty"`
	Status         string          `json:"status,omitempty"`
	QuantityOnHand decimal.Decimal `json:"quantity_on_hand"`
	MinThreshold   decimal.Decimal `json:"min_threshold"`
	Active         bool            `json:"active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// MovementResponse salida de un movimiento del libro.
type MovementResponse struct {
	ID             string          `json:"id"`
	ItemID         string          `json:"item_id"`
	Kind           string          `json:"kind"`
	StatusBefore   string          `json:"status_before,omitempty"`
	StatusAfter    string          `json:"status_after,omitempty"`
	QuantityBefore decimal.Decimal `json:"quantity_before"`
	QuantityAfter  decimal.Decimal `json:"quantity_after"`
	Quantity       decimal.Decimal `json:"quantity"`
	Reason         string          `json:"reason,omitempty"`
	ActaID         string          `json:"acta_id,omitempty"`
	ActorID        string          `json:"actor_id,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
