package repository

import "github.com/jhoicas/Activos-api/internal/domain/entity"

// OutboxRepository define el puerto del outbox transaccional. Enqueue se llama
// dentro de la transacción de la transición; el despachador usa el resto.
type OutboxRepository interface {
	Enqueue(ev *entity.OutboxEvent) error
	ListPending(limit int) ([]*entity.OutboxEvent, error)
	MarkSent(id string) error
	MarkFailed(id string, attempts int, lastError string, terminal bool) error
}
