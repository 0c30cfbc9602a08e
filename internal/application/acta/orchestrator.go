package acta

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

// kindSpec concentra lo único que difiere entre los tres tipos de acta: el
// estado que exige la reserva, el estado terminal del activo al firmar y el
// vencimiento del token. El resto del ciclo de vida es idéntico y lo ejecuta
// un solo orquestador.
type kindSpec struct {
	reserveExpect  string // estado exigido al activo serializado en la reserva
	consumeTarget  string // estado del activo al firmar ("" = según outcome de línea)
	serializedOnly bool
	consumableOnly bool
	tokenTTL       time.Duration // 0 = sin vencimiento
}

func specFor(kind string, consumoTTL time.Duration) kindSpec {
	switch kind {
	case entity.ActaKindEntrega:
		return kindSpec{
			reserveExpect:  entity.ItemStatusAvailable,
			consumeTarget:  entity.ItemStatusHandedOut,
			serializedOnly: true,
		}
	case entity.ActaKindDevolucion:
		return kindSpec{
			reserveExpect:  entity.ItemStatusHandedOut,
			serializedOnly: true,
		}
	case entity.ActaKindConsumo:
		return kindSpec{
			reserveExpect:  entity.ItemStatusAvailable,
			consumableOnly: true,
			tokenTTL:       consumoTTL,
		}
	}
	return kindSpec{}
}

// Orchestrator coordina las transiciones del acta: crea el documento
// reservando inventario, emite tokens de firma, aplica firma/rechazo del
// portador externo y registra devoluciones del operador. Cada transición corre
// en una sola transacción (acta + libro + token + outbox); las notificaciones
// salen del outbox después del commit.
type Orchestrator struct {
	txRunner  TxRunner
	itemRepo  repository.ItemRepository
	actaRepo  repository.ActaRepository
	tokenRepo repository.TokenRepository
	pdf       ports.ActaPDFGenerator
	firma     FirmaConfig
	log       *logger.Logger
}

// NewOrchestrator construye el orquestador.
func NewOrchestrator(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	actaRepo repository.ActaRepository,
	tokenRepo repository.TokenRepository,
	pdf ports.ActaPDFGenerator,
	firma FirmaConfig,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		txRunner:  txRunner,
		itemRepo:  itemRepo,
		actaRepo:  actaRepo,
		tokenRepo: tokenRepo,
		pdf:       pdf,
		firma:     firma,
		log:       log,
	}
}

// Create crea el acta con sus líneas, reserva el inventario línea a línea
// (todo o nada), emite el token de firma y encola el correo de solicitud.
// El consecutivo se toma del contador atómico por prefijo+año dentro de la
// misma transacción.
func (o *Orchestrator) Create(ctx context.Context, actorID string, in dto.CreateActaRequest, photoPaths []string) (*dto.ActaResponse, error) {
	if !entity.ValidActaKind(in.Kind) {
		return nil, domain.ErrInvalidInput
	}
	if in.Counterparty.Name == "" || in.Counterparty.Email == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrInvalidInput
	}
	spec := specFor(in.Kind, o.firma.ConsumoTTL)

	// Validaciones de solo lectura fuera de la transacción; la disponibilidad
	// real se vuelve a verificar dentro con la fila bloqueada.
	items := make(map[string]*entity.Item, len(in.Lines))
	for i := range in.Lines {
		ln := &in.Lines[i]
		item, err := o.itemRepo.GetByID(ln.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil || !item.Active {
			return nil, domain.ErrNotFound
		}
		if _, dup := items[item.ID]; dup {
			return nil, domain.ErrDuplicate
		}
		if spec.serializedOnly && !item.Serialized() {
			return nil, domain.ErrInvalidInput
		}
		if spec.consumableOnly && item.Serialized() {
			return nil, domain.ErrInvalidInput
		}
		if item.Serialized() {
			ln.Quantity = decimal.NewFromInt(1)
		} else if !ln.Quantity.GreaterThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		items[item.ID] = item
	}

	if in.Kind == entity.ActaKindDevolucion {
		if err := o.validateDevolucion(in); err != nil {
			return nil, err
		}
	} else if in.RelatedActaID != "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	a := &entity.Acta{
		ID:   uuid.New().String(),
		Kind: in.Kind,
		Counterparty: entity.Counterparty{
			Name:       in.Counterparty.Name,
			Role:       in.Counterparty.Role,
			Email:      in.Counterparty.Email,
			Phone:      in.Counterparty.Phone,
			DocumentID: in.Counterparty.DocumentID,
		},
		Status:        entity.ActaStatusPendienteFirma,
		Notes:         in.Notes,
		RelatedActaID: in.RelatedActaID,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for i, ln := range in.Lines {
		line := &entity.ActaLine{
			ID:        uuid.New().String(),
			ActaID:    a.ID,
			ItemID:    ln.ItemID,
			Quantity:  ln.Quantity,
			Outcome:   entity.LineOutcomePendiente,
			CreatedAt: now,
		}
		if in.Kind == entity.ActaKindDevolucion {
			// La devolución declara su resultado al crearse; se aplica al firmar.
			line.Outcome = ln.Outcome
		}
		if i < len(photoPaths) {
			line.PhotoPath = photoPaths[i]
		}
		a.Lines = append(a.Lines, line)
	}

	err := o.txRunner.RunActa(ctx, func(
		actaRepo repository.ActaRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		tokenRepo repository.TokenRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		seq, err := actaRepo.NextNumber(entity.ActaPrefix(a.Kind), now.Year())
		if err != nil {
			return err
		}
		a.Number = entity.FormatActaNumber(entity.ActaPrefix(a.Kind), now.Year(), seq)

		if err := actaRepo.Create(a); err != nil {
			return err
		}
		for _, line := range a.Lines {
			if err := actaRepo.CreateLine(line); err != nil {
				return err
			}
			if err := inventory.ReserveInTx(
				itemRepo, movRepo,
				line.ItemID, line.Quantity, spec.reserveExpect,
				a.ID, actorID, now,
			); err != nil {
				return err
			}
		}

		token, err := o.issueTokenInTx(tokenRepo, a, spec, now)
		if err != nil {
			return err
		}
		return o.enqueueSolicitud(outboxRepo, a, token, now)
	})
	if err != nil {
		return nil, err
	}

	o.log.Info().
		Str("acta_id", a.ID).
		Str("number", a.Number).
		Str("kind", a.Kind).
		Msg("acta creada, firma pendiente")
	return o.toResponse(a, items), nil
}

// validateDevolucion verifica que la devolución referencie una entrega firmada
// y que cada línea corresponda a una línea aún no devuelta de esa entrega.
func (o *Orchestrator) validateDevolucion(in dto.CreateActaRequest) error {
	if in.RelatedActaID == "" {
		return domain.ErrInvalidInput
	}
	related, err := o.actaRepo.GetByID(in.RelatedActaID)
	if err != nil {
		return err
	}
	if related == nil {
		return domain.ErrNotFound
	}
	if !related.CanRegisterReturn() {
		return domain.ErrInvalidTransition
	}
	for _, ln := range in.Lines {
		if !entity.ValidLineOutcome(ln.Outcome) {
			return domain.ErrInvalidInput
		}
		src := related.LineByItem(ln.ItemID)
		if src == nil {
			return domain.ErrLineNotFound
		}
		if src.Outcome != entity.LineOutcomePendiente {
			return domain.ErrLineAlreadyReturned
		}
	}
	return nil
}

// ReissueSignatureRequest cancela el token pendiente, emite uno nuevo y vuelve
// a encolar el correo. El acta debe seguir pendiente de firma.
func (o *Orchestrator) ReissueSignatureRequest(ctx context.Context, actaID string) error {
	now := time.Now()
	err := o.txRunner.RunActa(ctx, func(
		actaRepo repository.ActaRepository,
		_ repository.ItemRepository,
		_ repository.MovementRepository,
		tokenRepo repository.TokenRepository,
		outboxRepo repository.OutboxRepository,
	) error {
		a, err := actaRepo.GetByID(actaID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if !a.CanSign() {
			return domain.ErrInvalidTransition
		}
		token, err := o.issueTokenInTx(tokenRepo, a, specFor(a.Kind, o.firma.ConsumoTTL), now)
		if err != nil {
			return err
		}
		return o.enqueueSolicitud(outboxRepo, a, token, now)
	})
	if err == nil {
		o.log.Info().Str("acta_id", actaID).Msg("solicitud de firma reenviada")
	}
	return err
}

// Delete elimina un acta nunca firmada: libera las reservas, cancela el token
// y borra acta y líneas. Cualquier otro estado es inmutable (registro de
// auditoría).
func (o *Orchestrator) Delete(ctx context.Context, actorID, actaID string) error {
	now := time.Now()
	return o.txRunner.RunActa(ctx, func(
		actaRepo repository.ActaRepository,
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
		tokenRepo repository.TokenRepository,
		_ repository.OutboxRepository,
	) error {
		a, err := actaRepo.GetByID(actaID)
		if err != nil {
			return err
		}
		if a == nil {
			return domain.ErrNotFound
		}
		if a.Status != entity.ActaStatusPendienteFirma {
			return domain.ErrInvalidTransition
		}
		for _, line := range a.Lines {
			if err := inventory.ReleaseInTx(
				itemRepo, movRepo,
				line.ItemID, line.Quantity,
				a.ID, actorID, now,
			); err != nil {
				return err
			}
		}
		if err := tokenRepo.CancelPending(a.ID, now); err != nil {
			return err
		}
		return actaRepo.Delete(a.ID)
	})
}

// issueTokenInTx cancela cualquier token pendiente del acta y crea uno nuevo.
// Invariante: a lo sumo un token pendiente por acta.
func (o *Orchestrator) issueTokenInTx(
	tokenRepo repository.TokenRepository,
	a *entity.Acta,
	spec kindSpec,
	now time.Time,
) (*entity.SignatureToken, error) {
	if err := tokenRepo.CancelPending(a.ID, now); err != nil {
		return nil, err
	}
	value, err := entity.NewTokenValue()
	if err != nil {
		return nil, err
	}
	token := &entity.SignatureToken{
		ID:             uuid.New().String(),
		Value:          value,
		ActaID:         a.ID,
		RecipientEmail: a.Counterparty.Email,
		Status:         entity.TokenStatusPendiente,
		IssuedAt:       now,
	}
	if spec.tokenTTL > 0 {
		exp := now.Add(spec.tokenTTL)
		token.ExpiresAt = &exp
	}
	if err := tokenRepo.Create(token); err != nil {
		return nil, err
	}
	return token, nil
}

// enqueueSolicitud encola el correo de solicitud de firma en el outbox.
func (o *Orchestrator) enqueueSolicitud(
	outboxRepo repository.OutboxRepository,
	a *entity.Acta,
	token *entity.SignatureToken,
	now time.Time,
) error {
	ev, err := entity.NewOutboxEvent(uuid.New().String(), entity.OutboxKindSolicitudFirma, entity.OutboxPayload{
		ActaID:         a.ID,
		ActaNumber:     a.Number,
		ActaKind:       a.Kind,
		RecipientName:  a.Counterparty.Name,
		RecipientEmail: a.Counterparty.Email,
		SigningURL:     o.firma.BaseURL + "/firma/" + token.Value,
	}, now)
	if err != nil {
		return err
	}
	return outboxRepo.Enqueue(ev)
}

func (o *Orchestrator) enqueueOutcome(
	outboxRepo repository.OutboxRepository,
	kind string,
	a *entity.Acta,
	motivo string,
	now time.Time,
) error {
	ev, err := entity.NewOutboxEvent(uuid.New().String(), kind, entity.OutboxPayload{
		ActaID:         a.ID,
		ActaNumber:     a.Number,
		ActaKind:       a.Kind,
		RecipientName:  a.Counterparty.Name,
		RecipientEmail: a.Counterparty.Email,
		Motivo:         motivo,
	}, now)
	if err != nil {
		return err
	}
	return outboxRepo.Enqueue(ev)
}
