package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/normalize"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, kind, name, description, serial, status, quantity_on_hand, min_threshold, active, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador de activos. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un nuevo activo.
func (r *ItemRepo) Create(item *entity.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Kind, item.Name, item.Description, item.Serial, item.Status,
		item.QuantityOnHand, item.MinThreshold, item.Active, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un activo por ID.
func (r *ItemRepo) GetByID(id string) (*entity.Item, error) {
	return r.get(`SELECT ` + itemColumns + ` FROM items WHERE id = $1`, id)
}

// GetBySerial obtiene un activo por serial.
func (r *ItemRepo) GetBySerial(serial string) (*entity.Item, error) {
	return r.get(`SELECT `+itemColumns+` FROM items WHERE serial = $1`, serial)
}

// GetForUpdate obtiene el activo y bloquea la fila para update (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(id string) (*entity.Item, error) {
	return r.get(`SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *ItemRepo) get(query string, arg any) (*entity.Item, error) {
	var i entity.Item
	var serial *string
	err := r.q.QueryRow(context.Background(), query, arg).Scan(
		&i.ID, &i.Kind, &i.Name, &i.Description, &serial, &i.Status,
		&i.QuantityOnHand, &i.MinThreshold, &i.Active, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	if serial != nil {
		i.Serial = *serial
	}
	return &i, nil
}

// UpdateState actualiza solo estado y cantidad (se usa dentro de transacciones
// junto con la escritura del movimiento).
func (r *ItemRepo) UpdateState(item *entity.Item) error {
	query := `
		UPDATE items SET status = $2, quantity_on_hand = $3, updated_at = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Status, item.QuantityOnHand, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item state: %w", err)
	}
	return nil
}

// Update actualiza los metadatos del activo. Status y cantidad se manejan vía movimientos.
func (r *ItemRepo) Update(item *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, min_threshold = $4, active = $5, updated_at = $6
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.Name, item.Description, item.MinThreshold, item.Active, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// List lista activos con filtros. La búsqueda libre pliega acentos y
// mayúsculas en ambos lados: el término con normalize.Search y las columnas
// name/serial con translate en SQL.
func (r *ItemRepo) List(f repository.ItemFilter) ([]*entity.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE active = true`
	args := []any{}
	n := 0
	if f.Kind != "" {
		n++
		query += fmt.Sprintf(" AND kind = $%d", n)
		args = append(args, f.Kind)
	}
	if f.Status != "" {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, f.Status)
	}
	if f.Search != "" {
		n++
		query += fmt.Sprintf(" AND (%s LIKE $%d OR %s LIKE $%d)",
			foldedColumn("name"), n, foldedColumn("coalesce(serial, '')"), n)
		args = append(args, "%"+normalize.Search(f.Search)+"%")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*entity.Item
	for rows.Next() {
		var i entity.Item
		var serial *string
		if err := rows.Scan(
			&i.ID, &i.Kind, &i.Name, &i.Description, &serial, &i.Status,
			&i.QuantityOnHand, &i.MinThreshold, &i.Active, &i.CreatedAt, &i.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if serial != nil {
			i.Serial = *serial
		}
		items = append(items, &i)
	}
	return items, rows.Err()
}
