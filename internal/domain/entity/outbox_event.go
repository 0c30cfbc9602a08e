package entity

import (
	"encoding/json"
	"time"
)

// Tipos de evento del outbox. Cada transición de acta encola su evento en la
// misma transacción; un despachador en segundo plano intenta el correo y el
// broadcast después del commit (at-least-once, nunca revierte el estado).
const (
	OutboxKindSolicitudFirma = "solicitud_firma" // correo con el enlace de firma
	OutboxKindActaFirmada    = "acta_firmada"    // correo de confirmación + broadcast
	OutboxKindActaRechazada  = "acta_rechazada"  // aviso de rechazo + broadcast
	OutboxKindActaDevuelta   = "acta_devuelta"   // broadcast de devolución registrada
)

// Estados de procesamiento del outbox.
const (
	OutboxStatusPending = "PENDING"
	OutboxStatusSent    = "SENT"
	OutboxStatusFailed  = "FAILED" // agotó reintentos
)

// OutboxEvent es una notificación pendiente de despachar.
type OutboxEvent struct {
	ID        string
	Kind      string
	Payload   json.RawMessage
	Status    string
	Attempts  int
	LastError string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OutboxPayload es el cuerpo común de los eventos de acta.
type OutboxPayload struct {
	ActaID         string `json:"acta_id"`
	ActaNumber     string `json:"acta_number"`
	ActaKind       string `json:"acta_kind"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	SigningURL     string `json:"signing_url,omitempty"`
	Motivo         string `json:"motivo,omitempty"`
}

// NewOutboxEvent arma un evento PENDING con el payload serializado.
func NewOutboxEvent(id, kind string, p OutboxPayload, now time.Time) (*OutboxEvent, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		ID:        id,
		Kind:      kind,
		Payload:   raw,
		Status:    OutboxStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
