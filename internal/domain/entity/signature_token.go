package entity

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Estados del token de firma. Un token es de un solo uso: una vez firmado,
// rechazado o cancelado nunca vuelve a pendiente.
const (
	TokenStatusPendiente = "pendiente"
	TokenStatusFirmado   = "firmado"
	TokenStatusRechazado = "rechazado"
	TokenStatusCancelado = "cancelado"
)

// SignatureToken es la capacidad de un solo uso que permite a un portador
// anónimo firmar o rechazar un acta. El valor opaco viaja en el enlace del
// correo; ExpiresAt es nil cuando el acta no tiene vencimiento (solo las actas
// de consumo expiran).
type SignatureToken struct {
	ID              string
	Value           string // opaco, aleatorio, parte de la URL pública
	ActaID          string
	RecipientEmail  string
	Status          string
	IssuedAt        time.Time
	ExpiresAt       *time.Time
	ConsumedAt      *time.Time
	ClientIP        string
	ClientUserAgent string
	RejectionReason string
}

// NewTokenValue genera el valor opaco del token: 32 bytes de crypto/rand en hex.
func NewTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Pending indica si el token sigue utilizable (sin considerar expiración).
func (t *SignatureToken) Pending() bool {
	return t.Status == TokenStatusPendiente
}

// Expired indica si el token venció respecto a now. Tokens sin ExpiresAt no expiran.
func (t *SignatureToken) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}
