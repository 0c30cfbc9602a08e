package acta_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
	"github.com/jhoicas/Activos-api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// Dobles en memoria: un memStore compartido y repositorios que guardan copias
// por valor. El memTxRunner imita la atomicidad real con snapshot/restore: si
// el callback falla, el estado vuelve exactamente al previo.

type memStore struct {
	items     map[string]entity.Item
	movs      []entity.Movement
	actas     map[string]entity.Acta // sin líneas; ver lines/lineOrder
	lines     map[string]entity.ActaLine
	lineOrder map[string][]string // actaID -> IDs de línea en orden de creación
	tokens    map[string]entity.SignatureToken
	outbox    map[string]entity.OutboxEvent
	counters  map[string]int
}

func newMemStore() *memStore {
	return &memStore{
		items:     make(map[string]entity.Item),
		actas:     make(map[string]entity.Acta),
		lines:     make(map[string]entity.ActaLine),
		lineOrder: make(map[string][]string),
		tokens:    make(map[string]entity.SignatureToken),
		outbox:    make(map[string]entity.OutboxEvent),
		counters:  make(map[string]int),
	}
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for k, v := range s.items {
		cp.items[k] = v
	}
	cp.movs = append([]entity.Movement(nil), s.movs...)
	for k, v := range s.actas {
		cp.actas[k] = v
	}
	for k, v := range s.lines {
		cp.lines[k] = v
	}
	for k, v := range s.lineOrder {
		cp.lineOrder[k] = append([]string(nil), v...)
	}
	for k, v := range s.tokens {
		cp.tokens[k] = v
	}
	for k, v := range s.outbox {
		cp.outbox[k] = v
	}
	for k, v := range s.counters {
		cp.counters[k] = v
	}
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.items = from.items
	s.movs = from.movs
	s.actas = from.actas
	s.lines = from.lines
	s.lineOrder = from.lineOrder
	s.tokens = from.tokens
	s.outbox = from.outbox
	s.counters = from.counters
}

// tokenByActa devuelve el token pendiente del acta, o el último si no hay
// pendiente. Solo para asserts.
func (s *memStore) tokenByActa(actaID string) *entity.SignatureToken {
	var last *entity.SignatureToken
	for id := range s.tokens {
		t := s.tokens[id]
		if t.ActaID != actaID {
			continue
		}
		if t.Status == entity.TokenStatusPendiente {
			return &t
		}
		cp := t
		last = &cp
	}
	return last
}

// actasLineByItem devuelve la línea del acta para un item. Solo para asserts.
func (s *memStore) actasLineByItem(actaID, itemID string) *entity.ActaLine {
	for _, lineID := range s.lineOrder[actaID] {
		if s.lines[lineID].ItemID == itemID {
			cp := s.lines[lineID]
			return &cp
		}
	}
	return nil
}

func (s *memStore) outboxByKind(kind string) []entity.OutboxEvent {
	var out []entity.OutboxEvent
	for _, ev := range s.outbox {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// ── ItemRepository ────────────────────────────────────────────────────────────

type memItemRepo struct{ s *memStore }

func (r *memItemRepo) Create(item *entity.Item) error {
	if _, ok := r.s.items[item.ID]; ok {
		return fmt.Errorf("item duplicado: %s", item.ID)
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r *memItemRepo) GetByID(id string) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := it
	return &cp, nil
}

func (r *memItemRepo) GetBySerial(serial string) (*entity.Item, error) {
	for id := range r.s.items {
		if r.s.items[id].Serial == serial {
			cp := r.s.items[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memItemRepo) GetForUpdate(id string) (*entity.Item, error) { return r.GetByID(id) }

func (r *memItemRepo) UpdateState(item *entity.Item) error {
	stored, ok := r.s.items[item.ID]
	if !ok {
		return fmt.Errorf("item no existe: %s", item.ID)
	}
	stored.Status = item.Status
	stored.QuantityOnHand = item.QuantityOnHand
	stored.UpdatedAt = item.UpdatedAt
	r.s.items[item.ID] = stored
	return nil
}

func (r *memItemRepo) Update(item *entity.Item) error {
	r.s.items[item.ID] = *item
	return nil
}

func (r *memItemRepo) List(f repository.ItemFilter) ([]*entity.Item, error) {
	var out []*entity.Item
	for id := range r.s.items {
		cp := r.s.items[id]
		out = append(out, &cp)
	}
	return out, nil
}

// ── MovementRepository ────────────────────────────────────────────────────────

type memMovementRepo struct{ s *memStore }

func (r *memMovementRepo) Create(mov *entity.Movement) error {
	r.s.movs = append(r.s.movs, *mov)
	return nil
}

func (r *memMovementRepo) ListByItem(itemID string, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := range r.s.movs {
		if r.s.movs[i].ItemID == itemID {
			cp := r.s.movs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) ListByActa(actaID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := range r.s.movs {
		if r.s.movs[i].ActaID == actaID {
			cp := r.s.movs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ── ActaRepository ────────────────────────────────────────────────────────────

type memActaRepo struct{ s *memStore }

func (r *memActaRepo) Create(a *entity.Acta) error {
	cp := *a
	cp.Lines = nil
	r.s.actas[a.ID] = cp
	return nil
}

func (r *memActaRepo) CreateLine(line *entity.ActaLine) error {
	r.s.lines[line.ID] = *line
	r.s.lineOrder[line.ActaID] = append(r.s.lineOrder[line.ActaID], line.ID)
	return nil
}

func (r *memActaRepo) GetByID(id string) (*entity.Acta, error) {
	a, ok := r.s.actas[id]
	if !ok {
		return nil, nil
	}
	cp := a
	for _, lineID := range r.s.lineOrder[id] {
		l := r.s.lines[lineID]
		cp.Lines = append(cp.Lines, &l)
	}
	return &cp, nil
}

func (r *memActaRepo) Update(a *entity.Acta) error {
	stored, ok := r.s.actas[a.ID]
	if !ok {
		return fmt.Errorf("acta no existe: %s", a.ID)
	}
	stored.Status = a.Status
	stored.Notes = a.Notes
	stored.SignatureImage = a.SignatureImage
	stored.SignedAt = a.SignedAt
	stored.RejectionReason = a.RejectionReason
	stored.UpdatedAt = a.UpdatedAt
	r.s.actas[a.ID] = stored
	return nil
}

func (r *memActaRepo) UpdateLine(line *entity.ActaLine) error {
	stored, ok := r.s.lines[line.ID]
	if !ok {
		return fmt.Errorf("línea no existe: %s", line.ID)
	}
	stored.Outcome = line.Outcome
	stored.ReturnedAt = line.ReturnedAt
	stored.PhotoPath = line.PhotoPath
	r.s.lines[line.ID] = stored
	return nil
}

func (r *memActaRepo) List(f repository.ActaFilter) ([]*entity.Acta, error) {
	var out []*entity.Acta
	for id := range r.s.actas {
		a, _ := r.GetByID(id)
		out = append(out, a)
	}
	return out, nil
}

func (r *memActaRepo) NextNumber(prefix string, year int) (int, error) {
	key := fmt.Sprintf("%s-%d", prefix, year)
	r.s.counters[key]++
	return r.s.counters[key], nil
}

func (r *memActaRepo) Delete(id string) error {
	for _, lineID := range r.s.lineOrder[id] {
		delete(r.s.lines, lineID)
	}
	delete(r.s.lineOrder, id)
	delete(r.s.actas, id)
	return nil
}

// ── TokenRepository ───────────────────────────────────────────────────────────

type memTokenRepo struct{ s *memStore }

func (r *memTokenRepo) Create(token *entity.SignatureToken) error {
	r.s.tokens[token.ID] = *token
	return nil
}

func (r *memTokenRepo) GetByValue(value string) (*entity.SignatureToken, error) {
	for id := range r.s.tokens {
		if r.s.tokens[id].Value == value {
			cp := r.s.tokens[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memTokenRepo) GetByValueForUpdate(value string) (*entity.SignatureToken, error) {
	return r.GetByValue(value)
}

func (r *memTokenRepo) Update(token *entity.SignatureToken) error {
	stored, ok := r.s.tokens[token.ID]
	if !ok {
		return fmt.Errorf("token no existe: %s", token.ID)
	}
	stored.Status = token.Status
	stored.ConsumedAt = token.ConsumedAt
	stored.ClientIP = token.ClientIP
	stored.ClientUserAgent = token.ClientUserAgent
	stored.RejectionReason = token.RejectionReason
	r.s.tokens[token.ID] = stored
	return nil
}

func (r *memTokenRepo) CancelPending(actaID string, now time.Time) error {
	for id := range r.s.tokens {
		t := r.s.tokens[id]
		if t.ActaID == actaID && t.Status == entity.TokenStatusPendiente {
			t.Status = entity.TokenStatusCancelado
			t.ConsumedAt = &now
			r.s.tokens[id] = t
		}
	}
	return nil
}

// ── OutboxRepository ──────────────────────────────────────────────────────────

type memOutboxRepo struct{ s *memStore }

func (r *memOutboxRepo) Enqueue(ev *entity.OutboxEvent) error {
	r.s.outbox[ev.ID] = *ev
	return nil
}

func (r *memOutboxRepo) ListPending(limit int) ([]*entity.OutboxEvent, error) {
	var out []*entity.OutboxEvent
	for id := range r.s.outbox {
		if r.s.outbox[id].Status == entity.OutboxStatusPending {
			cp := r.s.outbox[id]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memOutboxRepo) MarkSent(id string) error {
	ev := r.s.outbox[id]
	ev.Status = entity.OutboxStatusSent
	r.s.outbox[id] = ev
	return nil
}

func (r *memOutboxRepo) MarkFailed(id string, attempts int, lastError string, terminal bool) error {
	ev := r.s.outbox[id]
	ev.Attempts = attempts
	ev.LastError = lastError
	if terminal {
		ev.Status = entity.OutboxStatusFailed
	}
	r.s.outbox[id] = ev
	return nil
}

// ── TxRunner ──────────────────────────────────────────────────────────────────

type memTxRunner struct{ s *memStore }

func (r *memTxRunner) RunActa(ctx context.Context, fn func(
	actaRepo repository.ActaRepository,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	tokenRepo repository.TokenRepository,
	outboxRepo repository.OutboxRepository,
) error) error {
	snap := r.s.snapshot()
	err := fn(
		&memActaRepo{r.s},
		&memItemRepo{r.s},
		&memMovementRepo{r.s},
		&memTokenRepo{r.s},
		&memOutboxRepo{r.s},
	)
	if err != nil {
		r.s.restore(snap)
	}
	return err
}

// ── Generador PDF nulo ────────────────────────────────────────────────────────

type memPDF struct{}

func (memPDF) GenerateActaPDF(ctx context.Context, a *entity.Acta, items map[string]*entity.Item) ([]byte, error) {
	return []byte("%PDF-test"), nil
}
