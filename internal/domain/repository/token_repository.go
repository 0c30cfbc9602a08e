package repository

import (
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// TokenRepository define el puerto de persistencia para tokens de firma.
type TokenRepository interface {
	Create(token *entity.SignatureToken) error
	GetByValue(value string) (*entity.SignatureToken, error)
	// GetByValueForUpdate bloquea la fila del token (SELECT FOR UPDATE) para que
	// dos canjes concurrentes se serialicen: el segundo ve el token consumido.
	GetByValueForUpdate(value string) (*entity.SignatureToken, error)
	Update(token *entity.SignatureToken) error
	// CancelPending cancela todos los tokens pendientes del acta (reemisión).
	CancelPending(actaID string, now time.Time) error
}
