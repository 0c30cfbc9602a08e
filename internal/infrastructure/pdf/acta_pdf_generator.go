// Package pdf implementa la generación del acta en PDF (entrega, devolución o
// consumo) que se adjunta al correo de confirmación y se sirve por la API.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título del acta  │  N° Acta + Fecha                │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONTRAPARTE: Nombre + Documento + contacto                 │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Cant | Activo | Serial | Resultado                   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OBSERVACIONES                                               │
//	│  FIRMA: imagen + fecha + leyenda                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"encoding/base64"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var actaTitles = map[string]string{
	entity.ActaKindEntrega:    "ACTA DE ENTREGA DE ACTIVOS",
	entity.ActaKindDevolucion: "ACTA DE DEVOLUCIÓN DE ACTIVOS",
	entity.ActaKindConsumo:    "ACTA DE ENTREGA DE CONSUMIBLES",
}

// ── Generator ─────────────────────────────────────────────────────────────────

var _ ports.ActaPDFGenerator = (*MarotoActaGenerator)(nil)

// MarotoActaGenerator implementa ports.ActaPDFGenerator usando Maroto v2.
type MarotoActaGenerator struct{}

// NewMarotoActaGenerator construye el generador.
func NewMarotoActaGenerator() *MarotoActaGenerator { return &MarotoActaGenerator{} }

// GenerateActaPDF genera el PDF del acta y devuelve sus bytes. items resuelve
// cada línea por ItemID para mostrar nombre y serial.
func (g *MarotoActaGenerator) GenerateActaPDF(
	_ context.Context,
	acta *entity.Acta,
	items map[string]*entity.Item,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Acta "+acta.Number, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(acta))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(counterpartyRow(&acta.Counterparty))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow(acta.Kind))
	for _, r := range tableLineRows(acta, items) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if acta.Notes != "" {
		m.AddRows(notesRow(acta.Notes))
	}

	sig, err := signatureRows(acta)
	if err != nil {
		return nil, err
	}
	for _, r := range sig {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: título del acta (izq) y número + fecha (der).
func headerRow(acta *entity.Acta) core.Row {
	title := actaTitles[acta.Kind]
	if title == "" {
		title = "ACTA"
	}
	fecha := acta.CreatedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(title, props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New("Gestión de Activos e Inventario", props.Text{
				Size: 8, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(acta.Number, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 3,
			}),
			text.New("Fecha: "+fecha, props.Text{
				Size: 8, Align: align.Right, Top: 11, Color: colorGray,
			}),
		),
	)
}

// counterpartyRow: datos de quien recibe o devuelve.
func counterpartyRow(cp *entity.Counterparty) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CONTRAPARTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(cp.Name, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Documento: %s   |   Cargo: %s   |   Email: %s   |   Tel: %s",
				nonEmpty(cp.DocumentID, "—"),
				nonEmpty(cp.Role, "—"),
				nonEmpty(cp.Email, "—"),
				nonEmpty(cp.Phone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow(kind string) core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	last := "Estado"
	if kind == entity.ActaKindDevolucion {
		last = "Resultado"
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Activo", 6, align.Left),
		h("Serial", 3, align.Left),
		h(last, 2, align.Center),
	)
}

// tableLineRows: una fila por línea del acta.
func tableLineRows(acta *entity.Acta, items map[string]*entity.Item) []core.Row {
	result := make([]core.Row, 0, len(acta.Lines))
	for _, l := range acta.Lines {
		name, serial := l.ItemID, "—"
		if it := items[l.ItemID]; it != nil {
			name = it.Name
			serial = nonEmpty(it.Serial, "—")
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				l.Quantity.StringFixed(0),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(6).Add(text.New(
				name,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(3).Add(text.New(
				serial,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(2).Add(text.New(
				lineOutcomeLabel(l.Outcome),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
		))
	}
	return result
}

// notesRow: observaciones del acta.
func notesRow(notes string) core.Row {
	return row.New(12).Add(
		col.New(12).Add(
			text.New("OBSERVACIONES", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(notes, props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// signatureRows: imagen de la firma + fecha + leyenda, o el bloque de firmas
// en blanco si el acta sigue pendiente.
func signatureRows(acta *entity.Acta) ([]core.Row, error) {
	rows := []core.Row{
		row.New(3),
		row.New(6).Add(col.New(12).Add(
			text.New("FIRMA DE LA CONTRAPARTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if acta.SignatureImage != "" && acta.SignedAt != nil {
		raw, err := base64.StdEncoding.DecodeString(acta.SignatureImage)
		if err != nil {
			return nil, fmt.Errorf("pdf: decodificar firma: %w", err)
		}
		rows = append(rows, row.New(30).Add(
			col.New(5).Add(image.NewFromBytes(raw, extension.Png, props.Rect{
				Percent: 90,
			})),
			col.New(7).Add(
				text.New(acta.Counterparty.Name, props.Text{
					Style: fontstyle.Bold, Size: 10, Top: 8, Left: 3,
				}),
				text.New("Firmado el "+acta.SignedAt.Format("02/01/2006 15:04"), props.Text{
					Size: 8, Top: 15, Left: 3, Color: colorGray,
				}),
			),
		))
	} else {
		rows = append(rows, row.New(25).Add(
			col.New(5).Add(
				text.New("_________________________", props.Text{Size: 10, Top: 14}),
				text.New(acta.Counterparty.Name, props.Text{Size: 8, Top: 20, Color: colorGray}),
			),
			col.New(7),
		))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Quien firma declara haber recibido o devuelto los activos relacionados "+
				"en este documento en las condiciones descritas. Conserve este documento "+
				"como soporte del movimiento de inventario.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))
	return rows, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

// lineOutcomeLabel etiqueta legible del resultado de una línea.
func lineOutcomeLabel(outcome string) string {
	switch outcome {
	case entity.LineOutcomePendiente:
		return "Entregado"
	case entity.LineOutcomeDisponible:
		return "Devuelto"
	case entity.LineOutcomeDanado:
		return "Dañado"
	case entity.LineOutcomePerdido:
		return "Perdido"
	}
	return outcome
}
