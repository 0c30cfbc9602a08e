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

var _ repository.ActaRepository = (*ActaRepo)(nil)

const actaColumns = `id, kind, number, counterparty_name, counterparty_role, counterparty_email,
	counterparty_phone, counterparty_document, status, notes, signature_image, signed_at,
	rejection_reason, related_acta_id, created_by, created_at, updated_at`

const actaLineColumns = `id, acta_id, item_id, quantity, outcome, returned_at, photo_path, created_at`

// ActaRepo implementación de ActaRepository sobre PostgreSQL.
type ActaRepo struct {
	q Querier
}

// NewActaRepository construye el adaptador de actas.
func NewActaRepository(q Querier) *ActaRepo {
	return &ActaRepo{q: q}
}

// Create persiste el acta (sin líneas; ver CreateLine).
func (r *ActaRepo) Create(acta *entity.Acta) error {
	query := `
		INSERT INTO actas (` + actaColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NULLIF($14, ''), $15, $16, $17)`
	_, err := r.q.Exec(context.Background(), query,
		acta.ID, acta.Kind, acta.Number,
		acta.Counterparty.Name, acta.Counterparty.Role, acta.Counterparty.Email,
		acta.Counterparty.Phone, acta.Counterparty.DocumentID,
		acta.Status, acta.Notes, acta.SignatureImage, acta.SignedAt,
		acta.RejectionReason, acta.RelatedActaID, acta.CreatedBy,
		acta.CreatedAt, acta.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert acta: %w", err)
	}
	return nil
}

// CreateLine persiste una línea del acta.
func (r *ActaRepo) CreateLine(line *entity.ActaLine) error {
	query := `
		INSERT INTO acta_lines (` + actaLineColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.ActaID, line.ItemID, line.Quantity,
		line.Outcome, line.ReturnedAt, line.PhotoPath, line.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert acta line: %w", err)
	}
	return nil
}

// GetByID devuelve el acta con sus líneas cargadas, o nil si no existe.
func (r *ActaRepo) GetByID(id string) (*entity.Acta, error) {
	query := `SELECT ` + actaColumns + ` FROM actas WHERE id = $1`
	acta, err := r.scanActa(r.q.QueryRow(context.Background(), query, id))
	if err != nil || acta == nil {
		return acta, err
	}
	lines, err := r.linesByActa(acta.ID)
	if err != nil {
		return nil, err
	}
	acta.Lines = lines
	return acta, nil
}

// Update actualiza el estado y los campos de firma del acta.
func (r *ActaRepo) Update(acta *entity.Acta) error {
	query := `
		UPDATE actas SET status = $2, notes = $3, signature_image = $4, signed_at = $5,
			rejection_reason = $6, updated_at = $7
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		acta.ID, acta.Status, acta.Notes, acta.SignatureImage, acta.SignedAt,
		acta.RejectionReason, acta.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update acta: %w", err)
	}
	return nil
}

// UpdateLine actualiza el resultado de devolución de una línea.
func (r *ActaRepo) UpdateLine(line *entity.ActaLine) error {
	query := `
		UPDATE acta_lines SET outcome = $2, returned_at = $3, photo_path = $4
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		line.ID, line.Outcome, line.ReturnedAt, line.PhotoPath,
	)
	if err != nil {
		return fmt.Errorf("update acta line: %w", err)
	}
	return nil
}

// List lista actas con filtros. No carga líneas; para el detalle usar GetByID.
func (r *ActaRepo) List(f repository.ActaFilter) ([]*entity.Acta, error) {
	query := `SELECT ` + actaColumns + ` FROM actas WHERE 1=1`
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
			foldedColumn("counterparty_name"), n, foldedColumn("number"), n)
		args = append(args, "%"+normalize.Search(f.Search)+"%")
	}
	if f.From != nil {
		n++
		query += fmt.Sprintf(" AND created_at >= $%d", n)
		args = append(args, *f.From)
	}
	if f.To != nil {
		n++
		query += fmt.Sprintf(" AND created_at <= $%d", n)
		args = append(args, *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n+1, n+2)
	args = append(args, limit, f.Offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list actas: %w", err)
	}
	defer rows.Close()

	var actas []*entity.Acta
	for rows.Next() {
		acta, err := r.scanActa(rows)
		if err != nil {
			return nil, err
		}
		actas = append(actas, acta)
	}
	return actas, rows.Err()
}

// NextNumber incrementa y devuelve el consecutivo del prefijo/año de forma
// atómica. El upsert sobre acta_counters serializa creaciones concurrentes:
// cada llamada ve un número distinto incluso dentro de transacciones paralelas.
func (r *ActaRepo) NextNumber(prefix string, year int) (int, error) {
	query := `
		INSERT INTO acta_counters (prefix, year, last_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, year)
		DO UPDATE SET last_number = acta_counters.last_number + 1
		RETURNING last_number`
	var seq int
	if err := r.q.QueryRow(context.Background(), query, prefix, year).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next acta number: %w", err)
	}
	return seq, nil
}

// Delete elimina el acta y sus líneas. Solo el orquestador lo invoca y solo
// para actas pendiente_firma.
func (r *ActaRepo) Delete(id string) error {
	if _, err := r.q.Exec(context.Background(), `DELETE FROM acta_lines WHERE acta_id = $1`, id); err != nil {
		return fmt.Errorf("delete acta lines: %w", err)
	}
	if _, err := r.q.Exec(context.Background(), `DELETE FROM actas WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete acta: %w", err)
	}
	return nil
}

func (r *ActaRepo) linesByActa(actaID string) ([]*entity.ActaLine, error) {
	query := `SELECT ` + actaLineColumns + ` FROM acta_lines WHERE acta_id = $1 ORDER BY created_at ASC`
	rows, err := r.q.Query(context.Background(), query, actaID)
	if err != nil {
		return nil, fmt.Errorf("list acta lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.ActaLine
	for rows.Next() {
		var l entity.ActaLine
		if err := rows.Scan(
			&l.ID, &l.ActaID, &l.ItemID, &l.Quantity,
			&l.Outcome, &l.ReturnedAt, &l.PhotoPath, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan acta line: %w", err)
		}
		lines = append(lines, &l)
	}
	return lines, rows.Err()
}

func (r *ActaRepo) scanActa(row pgx.Row) (*entity.Acta, error) {
	var a entity.Acta
	var relatedID *string
	err := row.Scan(
		&a.ID, &a.Kind, &a.Number,
		&a.Counterparty.Name, &a.Counterparty.Role, &a.Counterparty.Email,
		&a.Counterparty.Phone, &a.Counterparty.DocumentID,
		&a.Status, &a.Notes, &a.SignatureImage, &a.SignedAt,
		&a.RejectionReason, &relatedID, &a.CreatedBy,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan acta: %w", err)
	}
	if relatedID != nil {
		a.RelatedActaID = *relatedID
	}
	return &a, nil
}
