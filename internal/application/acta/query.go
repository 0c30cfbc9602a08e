package acta

import (
	"context"

	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
	"github.com/jhoicas/Activos-api/internal/domain/repository"
)

// Get obtiene un acta por ID con sus líneas y los nombres de los activos.
func (o *Orchestrator) Get(ctx context.Context, id string) (*dto.ActaResponse, error) {
	a, err := o.actaRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.ErrNotFound
	}
	return o.toResponse(a, nil), nil
}

// List lista actas con filtros (tipo, estado, rango de fechas y búsqueda libre
// insensible a acentos sobre contraparte y número).
func (o *Orchestrator) List(ctx context.Context, f repository.ActaFilter) ([]*dto.ActaResponse, error) {
	actas, err := o.actaRepo.List(f)
	if err != nil {
		return nil, err
	}
	out := make([]*dto.ActaResponse, 0, len(actas))
	for _, a := range actas {
		out = append(out, o.toResponse(a, nil))
	}
	return out, nil
}

// RenderPDF genera la representación PDF del acta: nombre del archivo sugerido
// y bytes del documento.
func (o *Orchestrator) RenderPDF(ctx context.Context, id string) (string, []byte, error) {
	a, err := o.actaRepo.GetByID(id)
	if err != nil {
		return "", nil, err
	}
	if a == nil {
		return "", nil, domain.ErrNotFound
	}
	items := make(map[string]*entity.Item, len(a.Lines))
	for _, line := range a.Lines {
		item, err := o.itemRepo.GetByID(line.ItemID)
		if err != nil {
			return "", nil, err
		}
		if item != nil {
			items[line.ItemID] = item
		}
	}
	raw, err := o.pdf.GenerateActaPDF(ctx, a, items)
	if err != nil {
		return "", nil, err
	}
	return "acta-" + a.Number + ".pdf", raw, nil
}

// toResponse mapea el acta al DTO. items es un cache opcional de activos ya
// cargados; lo que falte se resuelve contra el repo.
func (o *Orchestrator) toResponse(a *entity.Acta, items map[string]*entity.Item) *dto.ActaResponse {
	resp := &dto.ActaResponse{
		ID:     a.ID,
		Kind:   a.Kind,
		Number: a.Number,
		Counterparty: dto.CounterpartyDTO{
			Name:       a.Counterparty.Name,
			Role:       a.Counterparty.Role,
			Email:      a.Counterparty.Email,
			Phone:      a.Counterparty.Phone,
			DocumentID: a.Counterparty.DocumentID,
		},
		Status:          a.Status,
		Notes:           a.Notes,
		SignedAt:        a.SignedAt,
		RejectionReason: a.RejectionReason,
		RelatedActaID:   a.RelatedActaID,
		CreatedAt:       a.CreatedAt,
	}
	for _, line := range a.Lines {
		lr := dto.ActaLineResponse{
			ID:         line.ID,
			ItemID:     line.ItemID,
			Quantity:   line.Quantity,
			Outcome:    line.Outcome,
			ReturnedAt: line.ReturnedAt,
		}
		if item := items[line.ItemID]; item != nil {
			lr.ItemName = item.Name
		} else if item, err := o.itemRepo.GetByID(line.ItemID); err == nil && item != nil {
			lr.ItemName = item.Name
		}
		resp.Lines = append(resp.Lines, lr)
	}
	return resp
}
