package repository

import (
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ActaFilter filtros para listar actas.
type ActaFilter struct {
	Kind   string
	Status string
	Search string // contraparte o número, normalizado sin acentos
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// ActaRepository define el puerto de persistencia para actas y sus líneas.
// NextNumber es un contador atómico por prefijo y año (tabla acta_counters con
// upsert), para que el consecutivo no se duplique bajo creación concurrente.
type ActaRepository interface {
	Create(acta *entity.Acta) error
	CreateLine(line *entity.ActaLine) error
	// GetByID devuelve el acta con sus líneas cargadas, o nil si no existe.
	GetByID(id string) (*entity.Acta, error)
	Update(acta *entity.Acta) error
	UpdateLine(line *entity.ActaLine) error
	List(f ActaFilter) ([]*entity.Acta, error)
	NextNumber(prefix string, year int) (int, error)
	// Delete elimina acta y líneas; solo el orquestador lo invoca y solo para
	// actas nunca firmadas.
	Delete(id string) error
}
