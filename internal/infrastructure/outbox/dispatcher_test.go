package outbox

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// ── dobles de prueba ─────────────────────────────────────────────────────────

type stubOutbox struct {
	events map[string]*entity.OutboxEvent
	order  []string
}

func newStubOutbox() *stubOutbox {
	return &stubOutbox{events: map[string]*entity.OutboxEvent{}}
}

func (s *stubOutbox) Enqueue(ev *entity.OutboxEvent) error {
	s.events[ev.ID] = ev
	s.order = append(s.order, ev.ID)
	return nil
}

func (s *stubOutbox) ListPending(limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for _, id := range s.order {
		if ev := s.events[id]; ev.Status == entity.OutboxStatusPending {
			out = append(out, ev)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *stubOutbox) MarkSent(id string) error {
	s.events[id].Status = entity.OutboxStatusSent
	return nil
}

func (s *stubOutbox) MarkFailed(id string, attempts int, lastError string, terminal bool) error {
	ev := s.events[id]
	ev.Attempts = attempts
	ev.LastError = lastError
	if terminal {
		ev.Status = entity.OutboxStatusFailed
	}
	return nil
}

// stubActas sirve el acta del PDF y cuenta escrituras: el despachador jamás
// debe escribir sobre un acta.
type stubActas struct {
	acta    *entity.Acta
	updates int
}

func (s *stubActas) Create(*entity.Acta) error         { return nil }
func (s *stubActas) CreateLine(*entity.ActaLine) error { return nil }
func (s *stubActas) GetByID(id string) (*entity.Acta, error) {
	if s.acta != nil && s.acta.ID == id {
		return s.acta, nil
	}
	return nil, nil
}
func (s *stubActas) Update(*entity.Acta) error                          { s.updates++; return nil }
func (s *stubActas) UpdateLine(*entity.ActaLine) error                  { s.updates++; return nil }
func (s *stubActas) List(repository.ActaFilter) ([]*entity.Acta, error) { return nil, nil }
func (s *stubActas) NextNumber(string, int) (int, error)                { return 0, nil }
func (s *stubActas) Delete(string) error                                { return nil }

type stubItems struct {
	items map[string]*entity.Item
}

func (s *stubItems) Create(*entity.Item) error                          { return nil }
func (s *stubItems) GetByID(id string) (*entity.Item, error)            { return s.items[id], nil }
func (s *stubItems) GetBySerial(string) (*entity.Item, error)           { return nil, nil }
func (s *stubItems) GetForUpdate(id string) (*entity.Item, error)       { return s.items[id], nil }
func (s *stubItems) UpdateState(*entity.Item) error                     { return nil }
func (s *stubItems) Update(*entity.Item) error                          { return nil }
func (s *stubItems) List(repository.ItemFilter) ([]*entity.Item, error) { return nil, nil }

type stubMailer struct {
	fail error
	sent []ports.Message
}

func (m *stubMailer) Send(_ context.Context, msg ports.Message) error {
	if m.fail != nil {
		return m.fail
	}
	m.sent = append(m.sent, msg)
	return nil
}

type busRecorder struct {
	events []string
}

func (b *busRecorder) Broadcast(room, event string, _ any) {
	b.events = append(b.events, room+"/"+event)
}

type pdfStub struct{}

func (pdfStub) GenerateActaPDF(context.Context, *entity.Acta, map[string]*entity.Item) ([]byte, error) {
	return []byte("%PDF-test"), nil
}

// ── armado ───────────────────────────────────────────────────────────────────

func newTestDispatcher(t *testing.T) (*Dispatcher, *stubOutbox, *stubActas, *stubMailer, *busRecorder) {
	t.Helper()
	now := time.Now()
	firmada := &entity.Acta{
		ID:       "acta-1",
		Kind:     entity.ActaKindEntrega,
		Number:   "AE-2026-0001",
		Status:   entity.ActaStatusFirmada,
		SignedAt: &now,
		Lines: []*entity.ActaLine{
			{ID: "line-1", ActaID: "acta-1", ItemID: "item-1", Quantity: decimal.NewFromInt(1)},
		},
	}
	outboxRepo := newStubOutbox()
	actas := &stubActas{acta: firmada}
	items := &stubItems{items: map[string]*entity.Item{
		"item-1": {ID: "item-1", Kind: entity.ItemKindDevice, Name: "Portátil", Status: entity.ItemStatusHandedOut},
	}}
	mailer := &stubMailer{}
	bus := &busRecorder{}
	d := NewDispatcher(outboxRepo, actas, items, mailer, bus, pdfStub{}, zerolog.Nop())
	return d, outboxRepo, actas, mailer, bus
}

func enqueueKind(t *testing.T, s *stubOutbox, id, kind string) *entity.OutboxEvent {
	t.Helper()
	ev, err := entity.NewOutboxEvent(id, kind, entity.OutboxPayload{
		ActaID:         "acta-1",
		ActaNumber:     "AE-2026-0001",
		ActaKind:       entity.ActaKindEntrega,
		RecipientName:  "Laura Pérez",
		RecipientEmail: "laura@empresa.test",
	}, time.Now())
	require.NoError(t, err)
	require.NoError(t, s.Enqueue(ev))
	return ev
}

// ── despacho ─────────────────────────────────────────────────────────────────

func TestDispatchExitosoMarcaEnviado(t *testing.T) {
	d, outboxRepo, _, mailer, bus := newTestDispatcher(t)
	ev := enqueueKind(t, outboxRepo, "ev-1", entity.OutboxKindActaFirmada)

	d.processOnce(context.Background())

	assert.Equal(t, entity.OutboxStatusSent, ev.Status)
	assert.Zero(t, ev.Attempts)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{"laura@empresa.test"}, mailer.sent[0].To)
	require.Len(t, mailer.sent[0].Attachments, 1)
	assert.Equal(t, "application/pdf", mailer.sent[0].Attachments[0].ContentType)
	assert.Equal(t, []string{"actas/acta_firmada"}, bus.events)

	// Un evento enviado no se vuelve a despachar.
	d.processOnce(context.Background())
	assert.Len(t, mailer.sent, 1)
}

func TestDispatchReintentaYAgotaEnFallido(t *testing.T) {
	d, outboxRepo, actas, mailer, bus := newTestDispatcher(t)
	ev := enqueueKind(t, outboxRepo, "ev-1", entity.OutboxKindActaFirmada)
	mailer.fail = errors.New("smtp: connection refused")

	// Los primeros intentos dejan el evento pendiente para el próximo ciclo.
	for i := 1; i < 5; i++ {
		d.processOnce(context.Background())
		assert.Equal(t, entity.OutboxStatusPending, ev.Status, "intento %d", i)
		assert.Equal(t, i, ev.Attempts)
	}

	// El quinto intento agota los reintentos.
	d.processOnce(context.Background())
	assert.Equal(t, entity.OutboxStatusFailed, ev.Status)
	assert.Equal(t, 5, ev.Attempts)
	assert.Contains(t, ev.LastError, "connection refused")

	// El evento terminal ya no se reintenta.
	d.processOnce(context.Background())
	assert.Equal(t, 5, ev.Attempts)

	// El fallo de correo nunca toca el acta: sigue firmada y sin escrituras.
	assert.Zero(t, actas.updates)
	assert.Equal(t, entity.ActaStatusFirmada, actas.acta.Status)

	// El broadcast a la UI salió en cada intento aunque el correo fallara.
	assert.Len(t, bus.events, 5)
}

func TestDispatchDevueltaSoloBroadcast(t *testing.T) {
	d, outboxRepo, _, mailer, bus := newTestDispatcher(t)
	ev := enqueueKind(t, outboxRepo, "ev-1", entity.OutboxKindActaDevuelta)
	mailer.fail = errors.New("smtp caído")

	// La devolución se registra en mostrador: no hay correo que pueda fallar.
	d.processOnce(context.Background())
	assert.Equal(t, entity.OutboxStatusSent, ev.Status)
	assert.Empty(t, mailer.sent)
	assert.Equal(t, []string{"actas/acta_devuelta"}, bus.events)
}

func TestDispatchPayloadInvalidoFalla(t *testing.T) {
	d, outboxRepo, _, _, _ := newTestDispatcher(t)
	ev := &entity.OutboxEvent{
		ID:      "ev-1",
		Kind:    entity.OutboxKindActaFirmada,
		Payload: []byte("{no-es-json"),
		Status:  entity.OutboxStatusPending,
	}
	require.NoError(t, outboxRepo.Enqueue(ev))

	for i := 0; i < 5; i++ {
		d.processOnce(context.Background())
	}
	assert.Equal(t, entity.OutboxStatusFailed, ev.Status)
}

func TestDispatchRespetaElTamanoDeLote(t *testing.T) {
	d, outboxRepo, _, mailer, _ := newTestDispatcher(t)
	for i := 0; i < 25; i++ {
		enqueueKind(t, outboxRepo, fmt.Sprintf("ev-%d", i), entity.OutboxKindSolicitudFirma)
	}

	d.processOnce(context.Background())
	assert.Len(t, mailer.sent, 20)

	d.processOnce(context.Background())
	assert.Len(t, mailer.sent, 25)
}
