package inventory_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/inventory"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Dobles mínimos: repos en memoria sobre mapas por valor y un TxRunner que
// revierte restaurando un snapshot cuando el callback falla.

type memItems struct {
	items map[string]entity.Item
	movs  []entity.Movement
}

func newMemItems() *memItems {
	return &memItems{items: make(map[string]entity.Item)}
}

type itemRepoStub struct{ s *memItems }

func (r *itemRepoStub) Create(item *entity.Item) error {
	if _, ok := r.s.items[item.ID]; ok {
		return fmt.Errorf("item duplicado: %s", item.ID)
	}
	r.s.items[item.ID] = *item
	return nil
}

func (r *itemRepoStub) GetByID(id string) (*entity.Item, error) {
	it, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	cp := it
	return &cp, nil
}

func (r *itemRepoStub) GetBySerial(serial string) (*entity.Item, error) {
	for id := range r.s.items {
		if r.s.items[id].Serial == serial {
			cp := r.s.items[id]
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *itemRepoStub) GetForUpdate(id string) (*entity.Item, error) { return r.GetByID(id) }

func (r *itemRepoStub) UpdateState(item *entity.Item) error {
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

func (r *itemRepoStub) Update(item *entity.Item) error {
	r.s.items[item.ID] = *item
	return nil
}

func (r *itemRepoStub) List(f repository.ItemFilter) ([]*entity.Item, error) {
	var out []*entity.Item
	for id := range r.s.items {
		cp := r.s.items[id]
		out = append(out, &cp)
	}
	return out, nil
}

type movRepoStub struct{ s *memItems }

func (r *movRepoStub) Create(mov *entity.Movement) error {
	r.s.movs = append(r.s.movs, *mov)
	return nil
}

func (r *movRepoStub) ListByItem(itemID string, limit, offset int) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := range r.s.movs {
		if r.s.movs[i].ItemID == itemID {
			cp := r.s.movs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *movRepoStub) ListByActa(actaID string) ([]*entity.Movement, error) {
	var out []*entity.Movement
	for i := range r.s.movs {
		if r.s.movs[i].ActaID == actaID {
			cp := r.s.movs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

type txRunnerStub struct{ s *memItems }

func (r *txRunnerStub) Run(ctx context.Context, fn func(
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
) error) error {
	snapItems := make(map[string]entity.Item, len(r.s.items))
	for k, v := range r.s.items {
		snapItems[k] = v
	}
	snapMovs := append([]entity.Movement(nil), r.s.movs...)
	err := fn(&itemRepoStub{r.s}, &movRepoStub{r.s})
	if err != nil {
		r.s.items = snapItems
		r.s.movs = snapMovs
	}
	return err
}

type busRecorder struct {
	events []string
}

func (b *busRecorder) Broadcast(room, event string, payload any) {
	b.events = append(b.events, room+"/"+event)
}

func newTestUseCase(t *testing.T) (*inventory.ItemUseCase, *memItems, *busRecorder) {
	t.Helper()
	s := newMemItems()
	bus := &busRecorder{}
	uc := inventory.NewItemUseCase(&txRunnerStub{s}, &itemRepoStub{s}, &movRepoStub{s}, bus)
	return uc, s, bus
}

func TestCreateItemSerializado(t *testing.T) {
	uc, s, bus := newTestUseCase(t)

	resp, err := uc.CreateItem(context.Background(), "actor-1", dto.CreateItemRequest{
		Kind:   entity.ItemKindDevice,
		Name:   "Portátil Dell",
		Serial: "SN-001",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.ItemStatusAvailable, resp.Status)
	assert.Equal(t, "SN-001", resp.Serial)
	assert.True(t, resp.Active)

	require.Len(t, s.movs, 1)
	assert.Equal(t, entity.MovementKindIntake, s.movs[0].Kind)
	assert.Equal(t, entity.ItemStatusAvailable, s.movs[0].StatusAfter)
	assert.True(t, s.movs[0].Quantity.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, []string{ports.RoomInventario + "/item:updated"}, bus.events)
}

func TestCreateItemConsumible(t *testing.T) {
	uc, s, _ := newTestUseCase(t)

	resp, err := uc.CreateItem(context.Background(), "actor-1", dto.CreateItemRequest{
		Kind:     entity.ItemKindConsumable,
		Name:     "Cable HDMI",
		Quantity: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	assert.Empty(t, resp.Status, "los consumibles no llevan estado")
	assert.True(t, resp.QuantityOnHand.Equal(decimal.NewFromInt(25)))

	require.Len(t, s.movs, 1)
	assert.True(t, s.movs[0].QuantityAfter.Equal(decimal.NewFromInt(25)))
}

func TestCreateItemValidaciones(t *testing.T) {
	uc, _, _ := newTestUseCase(t)
	ctx := context.Background()

	// Tipo desconocido.
	_, err := uc.CreateItem(ctx, "actor-1", dto.CreateItemRequest{Kind: "vehiculo", Name: "Camioneta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Serializado sin serial.
	_, err = uc.CreateItem(ctx, "actor-1", dto.CreateItemRequest{Kind: entity.ItemKindDevice, Name: "Portátil"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Consumible con cantidad negativa.
	_, err = uc.CreateItem(ctx, "actor-1", dto.CreateItemRequest{
		Kind:     entity.ItemKindConsumable,
		Name:     "Cable",
		Quantity: decimal.NewFromInt(-1),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Sin nombre.
	_, err = uc.CreateItem(ctx, "actor-1", dto.CreateItemRequest{Kind: entity.ItemKindConsumable})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdjustCorrigeConteoFisico(t *testing.T) {
	uc, s, bus := newTestUseCase(t)
	now := time.Now()
	s.items["toner-1"] = entity.Item{
		ID:             "toner-1",
		Kind:           entity.ItemKindConsumable,
		Name:           "Tóner negro",
		QuantityOnHand: decimal.NewFromInt(12),
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	resp, err := uc.Adjust(context.Background(), "actor-1", "toner-1", dto.AdjustItemRequest{
		NewQuantity: decimal.NewFromInt(9),
		Reason:      "conteo físico de bodega",
	})
	require.NoError(t, err)
	assert.True(t, resp.QuantityOnHand.Equal(decimal.NewFromInt(9)))
	assert.True(t, s.items["toner-1"].QuantityOnHand.Equal(decimal.NewFromInt(9)))

	require.Len(t, s.movs, 1)
	mov := s.movs[0]
	assert.Equal(t, entity.MovementKindAdjustment, mov.Kind)
	assert.True(t, mov.QuantityBefore.Equal(decimal.NewFromInt(12)))
	assert.True(t, mov.QuantityAfter.Equal(decimal.NewFromInt(9)))
	assert.True(t, mov.Quantity.Equal(decimal.NewFromInt(3)), "la cantidad movida es el delta absoluto")
	assert.Equal(t, "conteo físico de bodega", mov.Reason)
	assert.Len(t, bus.events, 1)
}

func TestAdjustGuardas(t *testing.T) {
	uc, s, _ := newTestUseCase(t)
	now := time.Now()
	s.items["item-1"] = entity.Item{
		ID:        "item-1",
		Kind:      entity.ItemKindDevice,
		Name:      "Portátil",
		Serial:    "SN-001",
		Status:    entity.ItemStatusAvailable,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	in := dto.AdjustItemRequest{NewQuantity: decimal.NewFromInt(5), Reason: "conteo"}

	// Serializados no se ajustan por cantidad.
	_, err := uc.Adjust(context.Background(), "actor-1", "item-1", in)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, s.movs, "la guarda dentro de la transacción no deja rastro")

	// Activo inexistente.
	_, err = uc.Adjust(context.Background(), "actor-1", "no-existe", in)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Cantidad negativa y motivo vacío.
	_, err = uc.Adjust(context.Background(), "actor-1", "item-1", dto.AdjustItemRequest{
		NewQuantity: decimal.NewFromInt(-2), Reason: "conteo",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = uc.Adjust(context.Background(), "actor-1", "item-1", dto.AdjustItemRequest{
		NewQuantity: decimal.NewFromInt(2),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListMovementsExigeActivoExistente(t *testing.T) {
	uc, s, _ := newTestUseCase(t)

	_, err := uc.ListMovements(context.Background(), "no-existe", 10, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	now := time.Now()
	s.items["item-1"] = entity.Item{
		ID: "item-1", Kind: entity.ItemKindDevice, Name: "Portátil",
		Status: entity.ItemStatusAvailable, Active: true, CreatedAt: now, UpdatedAt: now,
	}
	s.movs = append(s.movs, entity.Movement{
		ID: "mov-1", ItemID: "item-1", Kind: entity.MovementKindIntake, CreatedAt: now,
	})

	movs, err := uc.ListMovements(context.Background(), "item-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementKindIntake, movs[0].Kind)
}
