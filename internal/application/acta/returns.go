package acta

import (
	"context"
	"time"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// RegisterReturn registra la devolución de un subconjunto de líneas de un acta
// de entrega, iniciada por el operador autenticado (sin token de firma). Cada
// línea objetivo debe seguir sin devolver; el estado agregado queda en
// devuelta_parcial o devuelta_total según lo resuelto.
func (o *Orchestrator) RegisterReturn(ctx context.Context, actorID, actaID string, in dto.ReturnRequest, photoPaths []string) (*dto.ActaResponse, error) {
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	for _, ln := range in.Lines {
		if !entity.ValidLineOutcome(ln.Outcome) {
			return nil, domain.ErrInvalidInput
		}
	}

	var result *entity.Acta
	now := time.Now()
	err := o.txRunner.RunActa(ctx, func(
		actaRepo repository.ActaRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		_ repository.TokenRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		a, err := actaRepo.GetByID(actaID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if !a.CanRegisterReturn() {
			return domain.ErrInvalidTransition
		}

		for i, ln := range in.Lines {
			line := a.LineByItem(ln.ItemID)
			if line == nil {
				return domain.ErrLineNotFound
			}
			if line.Outcome != entity.LineOutcomePendiente {
				return domain.ErrLineAlreadyReturned
			}
			if err := inventory.ConsumeInTx(
				itemRepo, movRepo,
				line.ItemID, line.Quantity,
				entity.OutcomeToItemStatus(ln.Outcome),
				entity.MovementKindReturn,
				a.ID, actorID, now,
			); err != nil {
				return err
			}
			line.Outcome = ln.Outcome
			line.ReturnedAt = &now
			if i < len(photoPaths) {
				line.PhotoPath = photoPaths[i]
			}
			if err := actaRepo.UpdateLine(line); err != nil {
				return err
			}
		}

		a.Status = a.ReturnStatus()
		a.UpdatedAt = now
		if err := actaRepo.Update(a); err != nil {
			return err
		}
		result = a
		return o.enqueueOutcome(outboxRepo, entity.OutboxKindActaDevuelta, a, "", now)
	})
	if err != nil {
		return nil, err
	}

	o.log.Info().
		Str("acta_id", actaID).
		Str("status", result.Status).
		Int("lines", len(in.Lines)).
		Msg("devolución registrada")
	return o.toResponse(result, nil), nil
}
