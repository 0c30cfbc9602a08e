package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// ItemUseCase administra los activos del inventario: alta (con movimiento de
// intake), consulta y corrección administrativa de cantidades. Toda mutación
// pasa por el libro de movimientos en la misma transacción.
type ItemUseCase struct {
	txRunner TxRunner
	itemRepo repository.ItemRepository
	movRepo  repository.MovementRepository
	bus      ports.EventBus
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(
	txRunner TxRunner,
	itemRepo repository.ItemRepository,
	movRepo repository.MovementRepository,
	bus ports.EventBus,
) *ItemUseCase {
	return &ItemUseCase{txRunner: txRunner, itemRepo: itemRepo, movRepo: movRepo, bus: bus}
}

// CreateItem da de alta un activo y registra el movimiento de intake.
// Serializados nacen available con serial obligatorio; consumibles nacen con la
// cantidad inicial indicada.
func (uc *ItemUseCase) CreateItem(ctx context.Context, actorID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if !entity.ValidItemKind(in.Kind) || in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	item := &entity.Item{
		ID:           uuid.New().String(),
		Kind:         in.Kind,
		Name:         in.Name,
		Description:  in.Description,
		Active:       true,
		MinThreshold: in.MinThreshold,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if item.Serialized() {
		if in.Serial == "" {
			return nil, domain.ErrInvalidInput
		}
		item.Serial = in.Serial
		item.Status = entity.ItemStatusAvailable
		item.QuantityOnHand = decimal.Zero
	} else {
		if in.Quantity.LessThan(decimal.Zero) {
			return nil, domain.ErrInvalidInput
		}
		item.QuantityOnHand = in.Quantity
	}

	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
	) error {
		if err := itemRepo.Create(item); err != nil {
			return err
		}
		mov := &entity.Movement{
			ID:        uuid.New().String(),
			ItemID:    item.ID,
			Kind:      entity.MovementKindIntake,
			ActorID:   actorID,
			CreatedAt: now,
		}
		if item.Serialized() {
			mov.StatusAfter = item.Status
			mov.Quantity = decimal.NewFromInt(1)
		} else {
			mov.QuantityAfter = item.QuantityOnHand
			mov.Quantity = item.QuantityOnHand
		}
		return movRepo.Create(mov)
	})
	if err != nil {
		return nil, err
	}

	uc.bus.Broadcast(ports.RoomInventario, "item:updated", ToItemResponse(item))
	return ToItemResponse(item), nil
}

// Adjust corrige la cantidad de un consumible a un valor absoluto (conteo
// físico). Falla con ErrInvalidInput si la nueva cantidad es negativa o el
// activo es serializado.
func (uc *ItemUseCase) Adjust(ctx context.Context, actorID, itemID string, in dto.AdjustItemRequest) (*dto.ItemResponse, error) {
	if in.Reason == "" || in.NewQuantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	var adjusted *entity.Item
	now := time.Now()
	err := uc.txRunner.Run(ctx, func(
		itemRepo repository.ItemRepository,
		movRepo repository.MovementRepository,
	) error {
		item, err := itemRepo.GetForUpdate(itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Serialized() {
			return domain.ErrInvalidInput
		}
		mov := &entity.Movement{
			ID:             uuid.New().String(),
			ItemID:         item.ID,
			Kind:           entity.MovementKindAdjustment,
			QuantityBefore: item.QuantityOnHand,
			QuantityAfter:  in.NewQuantity,
			Quantity:       in.NewQuantity.Sub(item.QuantityOnHand).Abs(),
			Reason:         in.Reason,
			ActorID:        actorID,
			CreatedAt:      now,
		}
		item.QuantityOnHand = in.NewQuantity
		item.UpdatedAt = now
		if err := itemRepo.UpdateState(item); err != nil {
			return err
		}
		if err := movRepo.Create(mov); err != nil {
			return err
		}
		adjusted = item
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.bus.Broadcast(ports.RoomInventario, "item:updated", ToItemResponse(adjusted))
	return ToItemResponse(adjusted), nil
}

// GetItem obtiene un activo por ID.
func (uc *ItemUseCase) GetItem(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.itemRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	return ToItemResponse(item), nil
}

// ListItems lista activos con filtros.
func (uc *ItemUseCase) ListItems(ctx context.Context, f repository.ItemFilter) ([]*dto.ItemResponse, error) {
	items, err := uc.itemRepo.List(f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ToItemResponse(it))
	}
	return out, nil
}

// ListMovements lista el libro de movimientos de un activo.
func (uc *ItemUseCase) ListMovements(ctx context.Context, itemID string, limit, offset int) ([]*dto.MovementResponse, error) {
	item, err := uc.itemRepo.GetByID(itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	movs, err := uc.movRepo.ListByItem(itemID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.MovementResponse, 0, len(movs))
	for _, m := range movs {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

// ToItemResponse mapea la entidad al DTO de salida.
func ToItemResponse(item *entity.Item) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:             item.ID,
		Kind:           item.Kind,
		Name:           item.Name,
		Description:    item.Description,
		Serial:         item.Serial,
		Status:         item.Status,
		QuantityOnHand: item.QuantityOnHand,
		MinThreshold:   item.MinThreshold,
		Active:         item.Active,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func toMovementResponse(m *entity.Movement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:             m.ID,
		ItemID:         m.ItemID,
		Kind:           m.Kind,
		StatusBefore:   m.StatusBefore,
		StatusAfter:    m.StatusAfter,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		Quantity:       m.Quantity,
		Reason:         m.Reason,
		ActaID:         m.ActaID,
		ActorID:        m.ActorID,
		CreatedAt:      m.CreatedAt,
	}
}
