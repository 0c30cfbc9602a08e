package acta_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Activos-api/internal/application/acta"
	"github.com/jhoicas/Activos-api/internal/application/dto"
	"github.com/jhoicas/Activos-api/internal/domain"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// entregaFirmada crea una entrega con los items dados y la deja firmada.
func entregaFirmada(t *testing.T, orch *acta.Orchestrator, s *memStore, itemIDs ...string) *dto.ActaResponse {
	t.Helper()
	resp, err := orch.Create(context.Background(), testActor, entregaRequest(itemIDs...), nil)
	require.NoError(t, err)
	token := s.tokenByActa(resp.ID)
	require.NotNil(t, token)
	require.NoError(t, orch.Sign(context.Background(), token.Value, firmaPNG(), acta.ClientMeta{}))
	return resp
}

func TestRegisterReturnParcialLuegoTotal(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")
	seedDevice(s, "item-2", "Monitor", "SN-002")
	entrega := entregaFirmada(t, orch, s, "item-1", "item-2")

	// Primera línea: vuelve disponible.
	resp, err := orch.RegisterReturn(context.Background(), testActor, entrega.ID, dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-1", Outcome: entity.LineOutcomeDisponible}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ActaStatusDevueltaParcial, resp.Status)
	assert.Equal(t, entity.ItemStatusAvailable, s.items["item-1"].Status)
	assert.Equal(t, entity.ItemStatusHandedOut, s.items["item-2"].Status)

	line1 := s.actasLineByItem(entrega.ID, "item-1")
	require.NotNil(t, line1)
	assert.Equal(t, entity.LineOutcomeDisponible, line1.Outcome)
	assert.NotNil(t, line1.ReturnedAt)

	// Segunda línea: vuelve dañado y cierra el acta.
	resp, err = orch.RegisterReturn(context.Background(), testActor, entrega.ID, dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-2", Outcome: entity.LineOutcomeDanado}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, entity.ActaStatusDevueltaTotal, resp.Status)
	assert.Equal(t, entity.ItemStatusDamaged, s.items["item-2"].Status)

	assert.Len(t, s.outboxByKind(entity.OutboxKindActaDevuelta), 2)
}

func TestRegisterReturnLineaYaDevuelta(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")
	seedDevice(s, "item-2", "Monitor", "SN-002")
	entrega := entregaFirmada(t, orch, s, "item-1", "item-2")

	in := dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-1", Outcome: entity.LineOutcomeDisponible}},
	}
	_, err := orch.RegisterReturn(context.Background(), testActor, entrega.ID, in, nil)
	require.NoError(t, err)

	_, err = orch.RegisterReturn(context.Background(), testActor, entrega.ID, in, nil)
	assert.ErrorIs(t, err, domain.ErrLineAlreadyReturned)
	assert.Equal(t, entity.ItemStatusAvailable, s.items["item-1"].Status)
}

func TestRegisterReturnGuardas(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")

	// Acta pendiente de firma no admite devoluciones.
	resp, err := orch.Create(context.Background(), testActor, entregaRequest("item-1"), nil)
	require.NoError(t, err)
	in := dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-1", Outcome: entity.LineOutcomeDisponible}},
	}
	_, err = orch.RegisterReturn(context.Background(), testActor, resp.ID, in, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	token := s.tokenByActa(resp.ID)
	require.NoError(t, orch.Sign(context.Background(), token.Value, firmaPNG(), acta.ClientMeta{}))

	// Acta inexistente, línea inexistente, outcome inválido, sin líneas.
	_, err = orch.RegisterReturn(context.Background(), testActor, "no-existe", in, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = orch.RegisterReturn(context.Background(), testActor, resp.ID, dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "otro-item", Outcome: entity.LineOutcomeDisponible}},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrLineNotFound)

	_, err = orch.RegisterReturn(context.Background(), testActor, resp.ID, dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-1", Outcome: "regular"}},
	}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = orch.RegisterReturn(context.Background(), testActor, resp.ID, dto.ReturnRequest{}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRegisterReturnGuardaEvidenciaFotografica(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")
	entrega := entregaFirmada(t, orch, s, "item-1")

	_, err := orch.RegisterReturn(context.Background(), testActor, entrega.ID, dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-1", Outcome: entity.LineOutcomeDanado}},
	}, []string{"uploads/evidencia-1.jpg"})
	require.NoError(t, err)

	line := s.actasLineByItem(entrega.ID, "item-1")
	require.NotNil(t, line)
	assert.Equal(t, "uploads/evidencia-1.jpg", line.PhotoPath)
}

// ── Acta de devolución firmada por la contraparte ────────────────────────────

func TestDevolucionFirmadaResuelveLaEntregaOrigen(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")
	entrega := entregaFirmada(t, orch, s, "item-1")

	req := dto.CreateActaRequest{
		Kind:          entity.ActaKindDevolucion,
		Counterparty:  dto.CounterpartyDTO{Name: "Laura Pérez", Email: "laura@empresa.test"},
		RelatedActaID: entrega.ID,
		Lines: []dto.ActaLineRequest{
			{ItemID: "item-1", Outcome: entity.LineOutcomeDisponible},
		},
	}
	devolucion, err := orch.Create(context.Background(), testActor, req, nil)
	require.NoError(t, err)
	assert.Contains(t, devolucion.Number, "AD-")

	// Crear la devolución no mueve el activo: sigue entregado hasta la firma.
	assert.Equal(t, entity.ItemStatusHandedOut, s.items["item-1"].Status)

	token := s.tokenByActa(devolucion.ID)
	require.NotNil(t, token)
	require.NoError(t, orch.Sign(context.Background(), token.Value, firmaPNG(), acta.ClientMeta{}))

	// La firma aplica el outcome y cierra ambas actas.
	assert.Equal(t, entity.ItemStatusAvailable, s.items["item-1"].Status)
	assert.Equal(t, entity.ActaStatusDevueltaTotal, s.actas[devolucion.ID].Status)
	assert.Equal(t, entity.ActaStatusDevueltaTotal, s.actas[entrega.ID].Status)

	src := s.actasLineByItem(entrega.ID, "item-1")
	require.NotNil(t, src)
	assert.Equal(t, entity.LineOutcomeDisponible, src.Outcome)
	assert.NotNil(t, src.ReturnedAt)
}

func TestDevolucionFirmadaNoReaplicaUnaLineaYaResuelta(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")
	entrega := entregaFirmada(t, orch, s, "item-1")

	devolucion, err := orch.Create(context.Background(), testActor, dto.CreateActaRequest{
		Kind:          entity.ActaKindDevolucion,
		Counterparty:  dto.CounterpartyDTO{Name: "Laura Pérez", Email: "laura@empresa.test"},
		RelatedActaID: entrega.ID,
		Lines: []dto.ActaLineRequest{
			{ItemID: "item-1", Outcome: entity.LineOutcomeDisponible},
		},
	}, nil)
	require.NoError(t, err)

	// Mientras el token circulaba, el operador resolvió la línea en mostrador.
	_, err = orch.RegisterReturn(context.Background(), testActor, entrega.ID, dto.ReturnRequest{
		Lines: []dto.ReturnLineRequest{{ItemID: "item-1", Outcome: entity.LineOutcomePerdido}},
	}, nil)
	require.NoError(t, err)
	require.Equal(t, entity.ItemStatusLost, s.items["item-1"].Status)
	movsBefore := len(s.movs)

	// La firma tardía de la devolución no puede resucitar el activo perdido.
	token := s.tokenByActa(devolucion.ID)
	require.NotNil(t, token)
	err = orch.Sign(context.Background(), token.Value, firmaPNG(), acta.ClientMeta{})
	assert.ErrorIs(t, err, domain.ErrLineAlreadyReturned)

	assert.Equal(t, entity.ItemStatusLost, s.items["item-1"].Status)
	assert.Equal(t, entity.ActaStatusPendienteFirma, s.actas[devolucion.ID].Status)
	assert.Equal(t, entity.TokenStatusPendiente, s.tokenByActa(devolucion.ID).Status)
	assert.Len(t, s.movs, movsBefore)

	src := s.actasLineByItem(entrega.ID, "item-1")
	require.NotNil(t, src)
	assert.Equal(t, entity.LineOutcomePerdido, src.Outcome)
}

func TestDevolucionValidaLaEntregaOrigen(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")

	base := dto.CreateActaRequest{
		Kind:         entity.ActaKindDevolucion,
		Counterparty: dto.CounterpartyDTO{Name: "Laura", Email: "laura@empresa.test"},
		Lines: []dto.ActaLineRequest{
			{ItemID: "item-1", Outcome: entity.LineOutcomeDisponible},
		},
	}

	// Sin acta origen.
	_, err := orch.Create(context.Background(), testActor, base, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Acta origen inexistente.
	req := base
	req.RelatedActaID = "no-existe"
	_, err = orch.Create(context.Background(), testActor, req, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Entrega aún sin firmar.
	pendiente, err := orch.Create(context.Background(), testActor, entregaRequest("item-1"), nil)
	require.NoError(t, err)
	req.RelatedActaID = pendiente.ID
	_, err = orch.Create(context.Background(), testActor, req, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Firmada: la devolución exige outcome válido por línea.
	token := s.tokenByActa(pendiente.ID)
	require.NoError(t, orch.Sign(context.Background(), token.Value, firmaPNG(), acta.ClientMeta{}))
	req.Lines = []dto.ActaLineRequest{{ItemID: "item-1", Outcome: "regular"}}
	_, err = orch.Create(context.Background(), testActor, req, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// Una entrega o consumo no puede referenciar acta origen.
	otra := entregaRequest("item-1")
	otra.RelatedActaID = pendiente.ID
	_, err = orch.Create(context.Background(), testActor, otra, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ── Vista pública del token ──────────────────────────────────────────────────

func TestViewRedactaElActaSegunElToken(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil Dell", "SN-001")

	resp, err := orch.Create(context.Background(), testActor, entregaRequest("item-1"), nil)
	require.NoError(t, err)
	token := s.tokenByActa(resp.ID)

	view, err := orch.View(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, resp.Number, view.ActaNumber)
	assert.Equal(t, entity.ActaKindEntrega, view.ActaKind)
	assert.Equal(t, "Laura Pérez", view.Counterparty)
	assert.Equal(t, entity.TokenStatusPendiente, view.Status)
	assert.False(t, view.Expirado)
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "Portátil Dell", view.Lines[0].ItemName)
	assert.Nil(t, view.FechaFirma)

	require.NoError(t, orch.Sign(context.Background(), token.Value, firmaPNG(), acta.ClientMeta{}))

	// El token consumido conserva una vista terminal para el front.
	view, err = orch.View(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, entity.TokenStatusFirmado, view.Status)
	assert.NotNil(t, view.FechaFirma)

	_, err = orch.View(context.Background(), "token-inexistente")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestViewTokenRechazadoIncluyeElMotivo(t *testing.T) {
	orch, s := newTestOrchestrator(t)
	seedDevice(s, "item-1", "Portátil", "SN-001")

	resp, err := orch.Create(context.Background(), testActor, entregaRequest("item-1"), nil)
	require.NoError(t, err)
	token := s.tokenByActa(resp.ID)
	require.NoError(t, orch.Reject(context.Background(), token.Value, "no corresponde", acta.ClientMeta{}))

	view, err := orch.View(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, entity.TokenStatusRechazado, view.Status)
	assert.Equal(t, "no corresponde", view.Motivo)
}
