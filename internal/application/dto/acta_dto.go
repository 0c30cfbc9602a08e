package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateActaRequest entrada para crear un acta.
// Para devoluciones, RelatedActaID referencia el acta de entrega origen y cada
// línea declara el resultado (disponible, dañado, perdido).
type CreateActaRequest struct {
	Kind          string            `json:"kind" validate:"required,oneof=entrega devolucion consumo"`
	Counterparty  CounterpartyDTO   `json:"counterparty" validate:"required"`
	Lines         []ActaLineRequest `json:"lines" validate:"required,min=1"`
	Notes         string            `json:"notes" validate:"omitempty,max=2000"`
	RelatedActaID string            `json:"related_acta_id" validate:"omitempty,uuid"`
}

// CounterpartyDTO datos de la contraparte que firma.
type CounterpartyDTO struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	Role       string `json:"role" validate:"omitempty,max=100"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone" validate:"omitempty,max=30"`
	DocumentID string `json:"document_id" validate:"omitempty,max=30"`
}

// ActaLineRequest línea solicitada: item + cantidad. Outcome solo en devoluciones.
type ActaLineRequest struct {
	ItemID   string          `json:"item_id" validate:"required,uuid"`
	Quantity decimal.Decimal `json:"quantity"`
	Outcome  string          `json:"outcome" validate:"omitempty,oneof=disponible dañado perdido"`
}

// ReturnRequest registro de devolución por el operador (sin token).
type ReturnRequest struct {
	Lines []ReturnLineRequest `json:"lines" validate:"required,min=1"`
}

// ReturnLineRequest resultado declarado para una línea devuelta.
type ReturnLineRequest struct {
	ItemID  string `json:"item_id" validate:"required,uuid"`
	Outcome string `json:"outcome" validate:"required,oneof=disponible dañado perdido"`
}

// SignRequest cuerpo del endpoint público de firma.
type SignRequest struct {
	Firma string `json:"firma" validate:"required"` // PNG en base64
}

// RejectRequest cuerpo del endpoint público de rechazo.
type RejectRequest struct {
	Motivo string `json:"motivo" validate:"required,min=1,max=1000"`
}

// ActaResponse salida de un acta con sus líneas.
type ActaResponse struct {
	ID              string             `json:"id"`
	Kind            string             `json:"kind"`
	Number          string             `json:"number"`
	Counterparty    CounterpartyDTO    `json:"counterparty"`
	Status          string             `json:"status"`
	Notes           string             `json:"notes,omitempty"`
	SignedAt        *time.Time         `json:"signed_at,omitempty"`
	RejectionReason string             `json:"rejection_reason,omitempty"`
	RelatedActaID   string             `json:"related_acta_id,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	Lines           []ActaLineResponse `json:"lines"`
}

// ActaLineResponse línea del acta en respuestas.
type ActaLineResponse struct {
	ID         string          `json:"id"`
	ItemID     string          `json:"item_id"`
	ItemName   string          `json:"item_name,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	Outcome    string          `json:"outcome"`
	ReturnedAt *time.Time      `json:"returned_at,omitempty"`
}

// SignatureViewResponse vista pública (redactada) del acta para la pantalla de
// firma. Los campos FechaFirma/Motivo/Expirado distinguen el estado terminal
// cuando el token ya no es canjeable.
type SignatureViewResponse struct {
	ActaNumber   string             `json:"acta_number"`
	ActaKind     string             `json:"acta_kind"`
	Counterparty string             `json:"counterparty"`
	Status       string             `json:"status"`
	Lines        []ActaLineResponse `json:"lines"`
	FechaFirma   *time.Time         `json:"fechaFirma,omitempty"`
	Motivo       string             `json:"motivo,omitempty"`
	Expirado     bool               `json:"expirado,omitempty"`
}
