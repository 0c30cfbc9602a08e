package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de acta.
const (
	ActaKindEntrega    = "entrega"    // entrega de equipos/mobiliario
	ActaKindDevolucion = "devolucion" // devolución de una entrega previa
	ActaKindConsumo    = "consumo"    // entrega de consumibles
)

// Estados del acta. pendiente_firma es el estado inicial; firmada, rechazada y
// devuelta_total son terminales para esa instancia.
const (
	ActaStatusPendienteFirma  = "pendiente_firma"
	ActaStatusFirmada         = "firmada"
	ActaStatusDevueltaParcial = "devuelta_parcial"
	ActaStatusDevueltaTotal   = "devuelta_total"
	ActaStatusRechazada       = "rechazada"
)

// Resultado de devolución por línea.
const (
	LineOutcomePendiente  = "pendiente"
	LineOutcomeDisponible = "disponible"
	LineOutcomeDanado     = "dañado"
	LineOutcomePerdido    = "perdido"
)

// Acta es el documento de entrega/devolución que firma la contraparte externa.
// Nunca se borra una vez firmada; solo un acta pendiente_firma admite Delete.
type Acta struct {
	ID              string
	Kind            string
	Number          string // <PREFIJO>-<AÑO>-<NNNN>, consecutivo por prefijo y año
	Counterparty    Counterparty
	Status          string
	Notes           string
	SignatureImage  string // PNG en base64, se llena al firmar
	SignedAt        *time.Time
	RejectionReason string
	RelatedActaID   string // devolución -> acta de entrega origen
	CreatedBy       string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Lines []*ActaLine
}

// Counterparty identifica a quien recibe (o devuelve) los activos.
type Counterparty struct {
	Name       string
	Role       string // cargo o relación: empleado, contratista, visitante
	Email      string
	Phone      string
	DocumentID string // cédula u otro documento de identidad
}

// ActaLine es una línea del acta: referencia un Item y lleva su resultado de
// devolución. Outcome arranca en pendiente y se resuelve al devolver.
type ActaLine struct {
	ID         string
	ActaID     string
	ItemID     string
	Quantity   decimal.Decimal
	Outcome    string // pendiente, disponible, dañado, perdido
	ReturnedAt *time.Time
	PhotoPath  string // evidencia fotográfica opcional (estado del activo)
	CreatedAt  time.Time
}

// ActaPrefix devuelve el prefijo del consecutivo según el tipo de acta.
func ActaPrefix(kind string) string {
	switch kind {
	case ActaKindEntrega:
		return "AE"
	case ActaKindDevolucion:
		return "AD"
	case ActaKindConsumo:
		return "AC"
	}
	return ""
}

// FormatActaNumber arma el número legible: prefijo, año y consecutivo de 4 dígitos.
func FormatActaNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}

// ValidActaKind valida un tipo de acta.
func ValidActaKind(kind string) bool {
	switch kind {
	case ActaKindEntrega, ActaKindDevolucion, ActaKindConsumo:
		return true
	}
	return false
}

// ValidLineOutcome valida un resultado de devolución declarado.
func ValidLineOutcome(outcome string) bool {
	switch outcome {
	case LineOutcomeDisponible, LineOutcomeDanado, LineOutcomePerdido:
		return true
	}
	return false
}

// CanSign indica si el acta admite firma o rechazo externo.
func (a *Acta) CanSign() bool {
	return a.Status == ActaStatusPendienteFirma
}

// CanRegisterReturn indica si el acta admite registrar devoluciones de líneas
// (solo entregas ya firmadas y no devueltas por completo).
func (a *Acta) CanRegisterReturn() bool {
	return a.Kind == ActaKindEntrega &&
		(a.Status == ActaStatusFirmada || a.Status == ActaStatusDevueltaParcial)
}

// ReturnStatus recompone el estado agregado a partir de las líneas: parcial si
// alguna sigue pendiente, total si todas fueron resueltas.
func (a *Acta) ReturnStatus() string {
	resolved := 0
	for _, l := range a.Lines {
		if l.Outcome != LineOutcomePendiente {
			resolved++
		}
	}
	if resolved == len(a.Lines) && len(a.Lines) > 0 {
		return ActaStatusDevueltaTotal
	}
	if resolved > 0 {
		return ActaStatusDevueltaParcial
	}
	return a.Status
}

// LineByItem busca la línea que referencia un item. Devuelve nil si no existe.
func (a *Acta) LineByItem(itemID string) *ActaLine {
	for _, l := range a.Lines {
		if l.ItemID == itemID {
			return l
		}
	}
	return nil
}

// OutcomeToItemStatus mapea el resultado de una devolución al estado final del
// activo serializado.
func OutcomeToItemStatus(outcome string) string {
	switch outcome {
	case LineOutcomeDisponible:
		return ItemStatusAvailable
	case LineOutcomeDanado:
		return ItemStatusDamaged
	case LineOutcomePerdido:
		return ItemStatusLost
	}
	return ""
}
