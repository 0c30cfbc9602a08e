package repository

import "github.com/jhoicas/Activos-api/internal/domain/entity"

// MovementRepository define el puerto de persistencia del libro de movimientos.
// El libro es append-only: no hay Update ni Delete.
type MovementRepository interface {
	Create(mov *entity.Movement) error
	ListByItem(itemID string, limit, offset int) ([]*entity.Movement, error)
	ListByActa(actaID string) ([]*entity.Movement, error)
}
