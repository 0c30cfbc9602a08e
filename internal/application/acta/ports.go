package acta

import (
	"context"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción que abarca acta,
// inventario, token y outbox. Toda transición del acta es atómica: o se
// confirman todas las escrituras o ninguna.
type TxRunner interface {
	RunActa(ctx context.Context, fn func(
		actaRepo repository.ActaRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		tokenRepo repository.TokenRepository,
		outboxRepo repository.OutboxRepository,
	) error) error
}

// FirmaConfig parámetros del flujo de firma externa.
type FirmaConfig struct {
	// BaseURL pública del front de firma; el enlace del correo es
	// <BaseURL>/firma/<token>.
	BaseURL string
	// ConsumoTTL vencimiento del token para actas de consumo (las demás no
	// vencen: se cancelan al reemitir).
	ConsumoTTL time.Duration
}

// ClientMeta metadatos del portador externo que firma o rechaza.
type ClientMeta struct {
	IP        string
	UserAgent string
}
