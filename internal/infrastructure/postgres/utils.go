package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/Activos-api/pkg/normalize"
)

// isUniqueViolation mapea el SQLSTATE 23505 (unique_violation) para traducirlo
// a los errores de duplicado del dominio.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// foldedColumn envuelve la columna en lower+translate para que el lado SQL
// pliegue acentos igual que normalize.Search pliega el término de búsqueda.
func foldedColumn(col string) string {
	return fmt.Sprintf("translate(lower(%s), '%s', '%s')", col, normalize.Accented, normalize.Folded)
}
