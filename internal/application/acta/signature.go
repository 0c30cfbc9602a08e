package acta

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// View devuelve la vista pública (redactada) del acta asociada a un token.
// Si el token ya no es canjeable, la vista incluye la razón terminal
// (fechaFirma, motivo o expirado) para que el front pinte la pantalla correcta.
func (o *Orchestrator) View(ctx context.Context, tokenValue string) (*dto.SignatureViewResponse, error) {
	token, err := o.tokenRepo.GetByValue(tokenValue)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, domain.ErrNotFound
	}
	a, err := o.actaRepo.GetByID(token.ActaID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}

	view := &dto.SignatureViewResponse{
		ActaNumber:   a.Number,
		ActaKind:     a.Kind,
		Counterparty: a.Counterparty.Name,
		Status:       token.Status,
		Expirado:     token.Expired(time.Now()),
	}
	for _, line := range a.Lines {
		lr := dto.ActaLineResponse{
			ID:       line.ID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Outcome:  line.Outcome,
		}
		if item, err := o.itemRepo.GetByID(line.ItemID); err == nil && item != nil {
			lr.ItemName = item.Name
		}
		view.Lines = append(view.Lines, lr)
	}
	switch token.Status {
	case entity.TokenStatusFirmado:
		view.FechaFirma = token.ConsumedAt
	case entity.TokenStatusRechazado:
		view.Motivo = token.RejectionReason
	}
	return view, nil
}

// Sign aplica la firma externa: con la fila del token bloqueada verifica que
// siga pendiente y sin vencer, confirma el inventario línea a línea, marca el
// acta firmada (o devuelta, según el tipo), consume el token y encola la
// confirmación. De dos canjes concurrentes el bloqueo de fila serializa: el
// segundo ve ErrTokenUsed y no muta nada.
func (o *Orchestrator) Sign(ctx context.Context, tokenValue, firma string, meta ClientMeta) error {
	signature, err := normalizeSignaturePNG(firma)
	if err != nil {
		return err
	}
	now := time.Now()
	err = o.txRunner.RunActa(ctx, func(
		actaRepo repository.ActaRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		tokenRepo repository.TokenRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		token, a, err := o.redeemForUpdate(actaRepo, tokenRepo, tokenValue, now)
		if err != nil {
			return err
		}
		spec := specFor(a.Kind, o.firma.ConsumoTTL)

		for _, line := range a.Lines {
			target := spec.consumeTarget
			kind := entity.MovementKindConsumption
			if a.Kind == entity.ActaKindDevolucion {
				target = entity.OutcomeToItemStatus(line.Outcome)
				kind = entity.MovementKindReturn
			}
			if err := inventory.ConsumeInTx(
				itemRepo, movRepo,
				line.ItemID, line.Quantity, target, kind,
				a.ID, "", now,
			); err != nil {
				return err
			}
		}

		if a.Kind == entity.ActaKindDevolucion {
			for _, line := range a.Lines {
				line.ReturnedAt = &now
				if err := actaRepo.UpdateLine(line); err != nil {
					return err
				}
			}
			a.Status = entity.ActaStatusDevueltaTotal
			if err := o.resolveRelatedEntrega(actaRepo, a, now); err != nil {
				return err
			}
		} else {
			a.Status = entity.ActaStatusFirmada
		}
		a.SignatureImage = signature
		a.SignedAt = &now
		a.UpdatedAt = now
		if err := actaRepo.Update(a); err != nil {
			return err
		}

		token.Status = entity.TokenStatusFirmado
		token.ConsumedAt = &now
		token.ClientIP = meta.IP
		token.ClientUserAgent = meta.UserAgent
		if err := tokenRepo.Update(token); err != nil {
			return err
		}

		return o.enqueueOutcome(outboxRepo, entity.OutboxKindActaFirmada, a, "", now)
	})
	if err != nil {
		return err
	}
	o.log.Info().Str("token", tokenValue[:8]).Msg("acta firmada por la contraparte")
	return nil
}

// Reject aplica el rechazo externo: mismas guardas que Sign, libera las
// reservas línea a línea y deja el acta rechazada con el motivo.
func (o *Orchestrator) Reject(ctx context.Context, tokenValue, motivo string, meta ClientMeta) error {
	if strings.TrimSpace(motivo) == "" {
		return domain.ErrInvalidInput
	}
	now := time.Now()
	err := o.txRunner.RunActa(ctx, func(
		actaRepo repository.ActaRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		tokenRepo repository.TokenRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		token, a, err := o.redeemForUpdate(actaRepo, tokenRepo, tokenValue, now)
		if err != nil {
			return err
		}

		for _, line := range a.Lines {
			if err := inventory.ReleaseInTx(
				itemRepo, movRepo,
				line.ItemID, line.Quantity,
				a.ID, "", now,
			); err != nil {
				return err
			}
		}

		a.Status = entity.ActaStatusRechazada
		a.RejectionReason = motivo
		a.UpdatedAt = now
		if err := actaRepo.Update(a); err != nil {
			return err
		}

		token.Status = entity.TokenStatusRechazado
		token.ConsumedAt = &now
		token.ClientIP = meta.IP
		token.ClientUserAgent = meta.UserAgent
		token.RejectionReason = motivo
		if err := tokenRepo.Update(token); err != nil {
			return err
		}

		return o.enqueueOutcome(outboxRepo, entity.OutboxKindActaRechazada, a, motivo, now)
	})
	if err != nil {
		return err
	}
	o.log.Info().Str("token", tokenValue[:8]).Msg("acta rechazada por la contraparte")
	return nil
}

// redeemForUpdate bloquea el token, valida que siga canjeable y devuelve el
// acta pendiente asociada. Cualquier guarda fallida deja la transacción sin
// mutaciones.
func (o *Orchestrator) redeemForUpdate(
	actaRepo repository.ActaRepository,
	tokenRepo repository.TokenRepository,
	tokenValue string,
	now time.Time,
) (*entity.SignatureToken, *entity.Acta, error) {
	token, err := tokenRepo.GetByValueForUpdate(tokenValue)
	if err != nil {
		return nil, nil, err
	}
	if token == nil {
		return nil, nil, domain.ErrNotFound
	}
	if !token.Pending() {
		return nil, nil, domain.ErrTokenUsed
	}
	if token.Expired(now) {
		return nil, nil, domain.ErrTokenExpired
	}
	a, err := actaRepo.GetByID(token.ActaID)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.ErrNotFound
	}
	if !a.CanSign() {
		return nil, nil, domain.ErrInvalidTransition
	}
	return token, a, nil
}

// resolveRelatedEntrega marca como devueltas las líneas correspondientes del
// acta de entrega origen y recompone su estado agregado, en la misma
// transacción de la firma de la devolución.
func (o *Orchestrator) resolveRelatedEntrega(
	actaRepo repository.ActaRepository,
	devolucion *entity.Acta,
	now time.Time,
) error {
	if devolucion.RelatedActaID == "" {
		return nil
	}
	entrega, err := actaRepo.GetByID(devolucion.RelatedActaID)
	if err != nil {
		return err
	}
	if entrega == nil {
		return domain.ErrNotFound
	}
	for _, line := range devolucion.Lines {
		src := entrega.LineByItem(line.ItemID)
		if src == nil {
			return domain.ErrLineNotFound
		}
		// si la línea ya se resolvió en mostrador después de emitir el token,
		// la firma llega tarde y no puede reaplicar la devolución
		if src.Outcome != entity.LineOutcomePendiente {
			return domain.ErrLineAlreadyReturned
		}
		src.Outcome = line.Outcome
		src.ReturnedAt = &now
		if err := actaRepo.UpdateLine(src); err != nil {
			return err
		}
	}
	entrega.Status = entrega.ReturnStatus()
	entrega.UpdatedAt = now
	return actaRepo.Update(entrega)
}

// normalizeSignaturePNG valida la firma recibida: base64 decodificable, con o
// sin el prefijo data:image/png;base64. Devuelve el base64 limpio.
func normalizeSignaturePNG(firma string) (string, error) {
	firma = strings.TrimSpace(firma)
	if firma == "" {
		return "", domain.ErrInvalidInput
	}
	if idx := strings.Index(firma, ";base64,"); idx >= 0 {
		if !strings.HasPrefix(firma, "data:image/png") {
			return "", domain.ErrInvalidInput
		}
		firma = firma[idx+len(";base64,"):]
	}
	if _, err := base64.StdEncoding.DecodeString(firma); err != nil {
		return "", domain.ErrInvalidInput
	}
	return firma, nil
}
