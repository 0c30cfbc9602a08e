package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Funciones del libro de inventario para usar dentro de la transacción del
// caller (el orquestador de actas). Cada una muta el Item y escribe exactamente
// un Movement; el caller es responsable del Commit/Rollback.

// ReserveInTx reserva un activo para un acta pendiente de firma.
// Serializado: exige Status == expectedStatus y lo pasa a reserved (entregas) o
// lo deja intacto (devoluciones, donde la "reserva" es el retorno pendiente).
// Consumible: exige stock suficiente y descuenta la cantidad.
func ReserveInTx(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	itemID string,
	qty decimal.Decimal,
	expectedStatus string,
	actaID, actorID string,
	now time.Time,
) error {
	item, err := itemRepo.GetForUpdate(itemID)
	if err != nil {
		return err
	}
	if item == nil || !item.Active {
		return domain.ErrNotFound
	}

	mov := &entity.Movement{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Kind:      entity.MovementKindReservation,
		ActaID:    actaID,
		ActorID:   actorID,
		CreatedAt: now,
	}

	if item.Serialized() {
		if item.Status != expectedStatus {
			if expectedStatus == entity.ItemStatusAvailable {
				return domain.ErrItemNotAvailable
			}
			return domain.ErrInvalidTransition
		}
		mov.StatusBefore = item.Status
		mov.Quantity = decimal.NewFromInt(1)
		// En devoluciones el activo sigue handed_out hasta que la firma confirme
		// el resultado; en entregas pasa a reserved.
		if expectedStatus == entity.ItemStatusAvailable {
			item.Status = entity.ItemStatusReserved
		}
		mov.StatusAfter = item.Status
	} else {
		if !qty.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if item.QuantityOnHand.LessThan(qty) {
			return domain.ErrInsufficientStock
		}
		mov.QuantityBefore = item.QuantityOnHand
		item.QuantityOnHand = item.QuantityOnHand.Sub(qty)
		mov.QuantityAfter = item.QuantityOnHand
		mov.Quantity = qty
	}

	item.UpdatedAt = now
	if err := itemRepo.UpdateState(item); err != nil {
		return err
	}
	return movRepo.Create(mov)
}

// ReleaseInTx revierte una reserva (rechazo o cancelación del acta): restituye
// cantidad o estado exactamente al valor previo a la reserva.
func ReleaseInTx(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	itemID string,
	qty decimal.Decimal,
	actaID, actorID string,
	now time.Time,
) error {
	item, err := itemRepo.GetForUpdate(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	mov := &entity.Movement{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Kind:      entity.MovementKindRelease,
		ActaID:    actaID,
		ActorID:   actorID,
		CreatedAt: now,
	}

	if item.Serialized() {
		mov.StatusBefore = item.Status
		mov.Quantity = decimal.NewFromInt(1)
		if item.Status == entity.ItemStatusReserved {
			item.Status = entity.ItemStatusAvailable
		}
		mov.StatusAfter = item.Status
	} else {
		mov.QuantityBefore = item.QuantityOnHand
		item.QuantityOnHand = item.QuantityOnHand.Add(qty)
		mov.QuantityAfter = item.QuantityOnHand
		mov.Quantity = qty
	}

	item.UpdatedAt = now
	if err := itemRepo.UpdateState(item); err != nil {
		return err
	}
	return movRepo.Create(mov)
}

// ConsumeInTx confirma una reserva en su resultado terminal al firmarse el
// acta. Serializado: flip al estado de destino (handed_out en entregas;
// available/damaged/lost en devoluciones). Consumible: la cantidad ya se
// descontó en la reserva; aquí solo queda el registro terminal, salvo en
// devoluciones donde se reingresa.
func ConsumeInTx(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	itemID string,
	qty decimal.Decimal,
	targetStatus string,
	movementKind string,
	actaID, actorID string,
	now time.Time,
) error {
	item, err := itemRepo.GetForUpdate(itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return domain.ErrNotFound
	}

	mov := &entity.Movement{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Kind:      movementKind,
		ActaID:    actaID,
		ActorID:   actorID,
		CreatedAt: now,
	}

	if item.Serialized() {
		mov.StatusBefore = item.Status
		item.Status = targetStatus
		mov.StatusAfter = item.Status
		mov.Quantity = decimal.NewFromInt(1)
	} else {
		mov.QuantityBefore = item.QuantityOnHand
		if movementKind == entity.MovementKindReturn {
			item.QuantityOnHand = item.QuantityOnHand.Add(qty)
		}
		mov.QuantityAfter = item.QuantityOnHand
		mov.Quantity = qty
	}

	item.UpdatedAt = now
	if err := itemRepo.UpdateState(item); err != nil {
		return err
	}
	return movRepo.Create(mov)
}
