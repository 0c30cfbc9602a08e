// Package outbox implementa el despachador de notificaciones. Los casos de uso
// encolan eventos dentro de la transacción de la transición; este worker los
// toma después del commit e intenta el correo y el broadcast. La entrega es
// at-least-once: un fallo se reintenta en el próximo ciclo y nunca revierte el
// estado del acta.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Dispatcher procesa eventos pendientes del outbox en segundo plano.
type Dispatcher struct {
	outboxRepo repository.OutboxRepository
	actaRepo   repository.ActaRepository
	itemRepo   repository.ItemRepository
	notifier   ports.Notifier
	bus        ports.EventBus
	pdf        ports.ActaPDFGenerator
	log        zerolog.Logger

	interval    time.Duration
	batchSize   int
	maxAttempts int
}

// NewDispatcher construye el despachador con los valores de operación por defecto.
func NewDispatcher(
	outboxRepo repository.OutboxRepository,
	actaRepo repository.ActaRepository,
	itemRepo repository.ItemRepository,
	notifier ports.Notifier,
	bus ports.EventBus,
	pdf ports.ActaPDFGenerator,
	log zerolog.Logger,
) *Dispatcher {
	return &Dispatcher{
		outboxRepo:  outboxRepo,
		actaRepo:    actaRepo,
		itemRepo:    itemRepo,
		notifier:    notifier,
		bus:         bus,
		pdf:         pdf,
		log:         log.With().Str("component", "outbox").Logger(),
		interval:    2 * time.Second,
		batchSize:   20,
		maxAttempts: 5,
	}
}

// Run ejecuta el ciclo de despacho hasta que el contexto se cancele.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.processOnce(ctx)
		}
	}
}

func (d *Dispatcher) processOnce(ctx context.Context) {
	events, err := d.outboxRepo.ListPending(d.batchSize)
	if err != nil {
		d.log.Error().Err(err).Msg("listar eventos pendientes")
		return
	}
	for _, ev := range events {
		if ctx.Err() != nil {
			return
		}
		if err := d.dispatch(ctx, ev); err != nil {
			attempts := ev.Attempts + 1
			terminal := attempts >= d.maxAttempts
			d.log.Warn().Err(err).
				Str("event_id", ev.ID).Str("kind", ev.Kind).
				Int("attempts", attempts).Bool("terminal", terminal).
				Msg("despacho fallido")
			if err := d.outboxRepo.MarkFailed(ev.ID, attempts, err.Error(), terminal); err != nil {
				d.log.Error().Err(err).Str("event_id", ev.ID).Msg("marcar evento fallido")
			}
			continue
		}
		if err := d.outboxRepo.MarkSent(ev.ID); err != nil {
			d.log.Error().Err(err).Str("event_id", ev.ID).Msg("marcar evento enviado")
		}
	}
}

// dispatch ejecuta los efectos del evento: broadcast a la UI y, según el tipo,
// el correo a la contraparte. El broadcast nunca falla; solo el correo puede
// forzar reintento.
func (d *Dispatcher) dispatch(ctx context.Context, ev *entity.OutboxEvent) error {
	var p entity.OutboxPayload
	if err := json.Unmarshal(ev.Payload, &p); err != nil {
		return fmt.Errorf("payload inválido: %w", err)
	}

	d.bus.Broadcast(ports.RoomActas, ev.Kind, p)

	switch ev.Kind {
	case entity.OutboxKindSolicitudFirma:
		return d.sendSolicitud(ctx, p)
	case entity.OutboxKindActaFirmada:
		return d.sendFirmada(ctx, p)
	case entity.OutboxKindActaRechazada:
		return d.sendRechazada(ctx, p)
	case entity.OutboxKindActaDevuelta:
		// solo broadcast, la devolución se registra en mostrador
		return nil
	}
	return fmt.Errorf("tipo de evento desconocido: %s", ev.Kind)
}

func (d *Dispatcher) sendSolicitud(ctx context.Context, p entity.OutboxPayload) error {
	html := fmt.Sprintf(`
		<p>Hola %s,</p>
		<p>Tienes pendiente la firma del acta <strong>%s</strong>.</p>
		<p>Revisa el detalle y firma o rechaza desde el siguiente enlace:</p>
		<p><a href="%s">Firmar acta %s</a></p>
		<p>Si no reconoces esta solicitud, ignora este correo.</p>`,
		p.RecipientName, p.ActaNumber, p.SigningURL, p.ActaNumber)
	return d.notifier.Send(ctx, ports.Message{
		To:      []string{p.RecipientEmail},
		Subject: fmt.Sprintf("Firma pendiente: acta %s", p.ActaNumber),
		HTML:    html,
	})
}

func (d *Dispatcher) sendFirmada(ctx context.Context, p entity.OutboxPayload) error {
	msg := ports.Message{
		To:      []string{p.RecipientEmail},
		Subject: fmt.Sprintf("Acta %s firmada", p.ActaNumber),
		HTML: fmt.Sprintf(`
			<p>Hola %s,</p>
			<p>El acta <strong>%s</strong> quedó firmada. Adjuntamos la copia en PDF
			como soporte del movimiento.</p>`,
			p.RecipientName, p.ActaNumber),
	}

	// el PDF es parte del soporte; si no se puede generar se reintenta el evento
	raw, err := d.renderActaPDF(ctx, p.ActaID)
	if err != nil {
		return err
	}
	msg.Attachments = []ports.Attachment{{
		Filename:    fmt.Sprintf("acta-%s.pdf", p.ActaNumber),
		ContentType: "application/pdf",
		Data:        raw,
	}}
	return d.notifier.Send(ctx, msg)
}

func (d *Dispatcher) sendRechazada(ctx context.Context, p entity.OutboxPayload) error {
	html := fmt.Sprintf(`
		<p>Hola %s,</p>
		<p>Registramos el rechazo del acta <strong>%s</strong>.</p>
		<p>Motivo: %s</p>
		<p>Los activos volvieron a estar disponibles en el inventario.</p>`,
		p.RecipientName, p.ActaNumber, p.Motivo)
	return d.notifier.Send(ctx, ports.Message{
		To:      []string{p.RecipientEmail},
		Subject: fmt.Sprintf("Acta %s rechazada", p.ActaNumber),
		HTML:    html,
	})
}

func (d *Dispatcher) renderActaPDF(ctx context.Context, actaID string) ([]byte, error) {
	acta, err := d.actaRepo.GetByID(actaID)
	if err != nil {
		return nil, err
	}
	if acta == nil {
		return nil, fmt.Errorf("acta %s no encontrada", actaID)
	}
	items := make(map[string]*entity.Item, len(acta.Lines))
	for _, l := range acta.Lines {
		item, err := d.itemRepo.GetByID(l.ItemID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items[l.ItemID] = item
		}
	}
	return d.pdf.GenerateActaPDF(ctx, acta, items)
}
