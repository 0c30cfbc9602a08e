package repository

import "github.com/jhoicas/Activos-api/internal/domain/entity"

// ItemFilter filtros para listar activos.
type ItemFilter struct {
	Kind   string
	Status string
	Search string // nombre o serial, normalizado sin acentos
	Limit  int
	Offset int
}

// ItemRepository define el puerto de persistencia para activos.
// UpdateState solo toca status/quantity/updated_at y se usa dentro de
// transacciones junto con la escritura del movimiento.
type ItemRepository interface {
	Create(item *entity.Item) error
	GetByID(id string) (*entity.Item, error)
	GetBySerial(serial string) (*entity.Item, error)
	// GetForUpdate bloquea la fila para update (SELECT FOR UPDATE).
	GetForUpdate(id string) (*entity.Item, error)
	UpdateState(item *entity.Item) error
	Update(item *entity.Item) error
	List(f ItemFilter) ([]*entity.Item, error)
}
