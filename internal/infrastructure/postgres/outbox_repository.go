package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.OutboxRepository = (*OutboxRepo)(nil)

// OutboxRepo implementación del outbox transaccional sobre PostgreSQL.
type OutboxRepo struct {
	q Querier
}

// NewOutboxRepository construye el adaptador del outbox.
func NewOutboxRepository(q Querier) *OutboxRepo {
	return &OutboxRepo{q: q}
}

// Enqueue inserta un evento PENDING. Se llama dentro de la transacción de la
// transición, así el evento existe si y solo si la transición hizo commit.
func (r *OutboxRepo) Enqueue(ev *entity.OutboxEvent) error {
	query := `
		INSERT INTO outbox (id, kind, payload, status, attempts, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		ev.ID, ev.Kind, ev.Payload, ev.Status, ev.Attempts, ev.LastError,
		ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("enqueue outbox event: %w", err)
	}
	return nil
}

// ListPending devuelve eventos PENDING del más antiguo al más reciente.
func (r *OutboxRepo) ListPending(limit int) ([]*entity.OutboxEvent, error) {
	if limit <= 0 {
		limit = 20
	}
	query := `
		SELECT id, kind, payload, status, attempts, last_error, created_at, updated_at
		FROM outbox WHERE status = $1
		ORDER BY created_at ASC LIMIT $2`
	rows, err := r.q.Query(context.Background(), query, entity.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending outbox events: %w", err)
	}
	defer rows.Close()

	var events []*entity.OutboxEvent
	for rows.Next() {
		var ev entity.OutboxEvent
		if err := rows.Scan(
			&ev.ID, &ev.Kind, &ev.Payload, &ev.Status, &ev.Attempts, &ev.LastError,
			&ev.CreatedAt, &ev.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// MarkSent marca el evento como despachado.
func (r *OutboxRepo) MarkSent(id string) error {
	query := `UPDATE outbox SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, entity.OutboxStatusSent, time.Now())
	if err != nil {
		return fmt.Errorf("mark outbox sent: %w", err)
	}
	return nil
}

// MarkFailed registra un intento fallido. Con terminal el evento pasa a FAILED
// y el despachador deja de reintentarlo; si no, queda PENDING para el próximo ciclo.
func (r *OutboxRepo) MarkFailed(id string, attempts int, lastError string, terminal bool) error {
	status := entity.OutboxStatusPending
	if terminal {
		status = entity.OutboxStatusFailed
	}
	query := `UPDATE outbox SET status = $2, attempts = $3, last_error = $4, updated_at = $5 WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, status, attempts, lastError, time.Now())
	if err != nil {
		return fmt.Errorf("mark outbox failed: %w", err)
	}
	return nil
}
