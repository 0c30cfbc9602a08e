package ports

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ActaPDFGenerator puerto para generar la representación PDF de un acta
// (se adjunta al correo de confirmación y se sirve por la API).
type ActaPDFGenerator interface {
	GenerateActaPDF(ctx context.Context, acta *entity.Acta, items map[string]*entity.Item) ([]byte, error)
}
