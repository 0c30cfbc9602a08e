package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

const movementColumns = `id, item_id, kind, status_before, status_after, quantity_before, quantity_after, quantity, reason, acta_id, actor_id, created_at`

// MovementRepo implementación append-only del libro de movimientos.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del libro de movimientos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Create inserta un movimiento. El libro nunca se actualiza ni se borra.
func (r *MovementRepo) Create(mov *entity.Movement) error {
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12)`
	_, err := r.q.Exec(context.Background(), query,
		mov.ID, mov.ItemID, mov.Kind, mov.StatusBefore, mov.StatusAfter,
		mov.QuantityBefore, mov.QuantityAfter, mov.Quantity, mov.Reason,
		mov.ActaID, mov.ActorID, mov.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

// ListByItem lista el historial de un activo, del más reciente al más antiguo.
func (r *MovementRepo) ListByItem(itemID string, limit, offset int) ([]*entity.Movement, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT ` + movementColumns + `
		FROM movements WHERE item_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, itemID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list movements by item: %w", err)
	}
	return scanMovements(rows)
}

// ListByActa lista los movimientos originados por un acta, en orden cronológico.
func (r *MovementRepo) ListByActa(actaID string) ([]*entity.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements WHERE acta_id = $1
		ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, actaID)
	if err != nil {
		return nil, fmt.Errorf("list movements by acta: %w", err)
	}
	return scanMovements(rows)
}

func scanMovements(rows pgx.Rows) ([]*entity.Movement, error) {
	defer rows.Close()
	var movs []*entity.Movement
	for rows.Next() {
		var m entity.Movement
		var actaID, actorID *string
		if err := rows.Scan(
			&m.ID, &m.ItemID, &m.Kind, &m.StatusBefore, &m.StatusAfter,
			&m.QuantityBefore, &m.QuantityAfter, &m.Quantity, &m.Reason,
			&actaID, &actorID, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		if actaID != nil {
			m.ActaID = *actaID
		}
		if actorID != nil {
			m.ActorID = *actorID
		}
		movs = append(movs, &m)
	}
	return movs, rows.Err()
}
