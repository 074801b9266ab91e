// Package pdf genera el Termo de Responsabilidade de una salida de material.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Título + N° transacción + Fecha                     │
//	│  ─────────────────────────────────────────────────────────  │
//	│  SOLICITANTE: Nombre / Departamento / Finalidad              │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Qtd | Item | Código | Patrimônio | Unidade           │
//	│  ─────────────────────────────────────────────────────────  │
//	│  DECLARACIÓN + QR de la transacción                          │
//	│  FIRMAS: solicitante / responsable del almacén               │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strconv"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/jhoicas/almoxtrack-api/internal/application/inventory"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ inventory.TermPDFGenerator = (*MarotoTermGenerator)(nil)

// MarotoTermGenerator implementa inventory.TermPDFGenerator usando Maroto v2.
type MarotoTermGenerator struct {
	organization string
}

// NewMarotoTermGenerator construye el generador. organization aparece en el encabezado.
func NewMarotoTermGenerator(organization string) *MarotoTermGenerator {
	return &MarotoTermGenerator{organization: organization}
}

// GenerateTerm genera el PDF y devuelve sus bytes.
func (g *MarotoTermGenerator) GenerateTerm(ctx context.Context, term *inventory.ResponsibilityTerm) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Termo de Responsabilidade", true).
		WithAuthor(g.organization, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(g.organization, term))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(requesterRow(term))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableLineRows(term.Lines)...)

	m.AddRows(line.NewRow(4))
	m.AddRows(declarationRow(term))
	m.AddRows(line.NewRow(14))
	m.AddRows(signatureRow(term))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar termo: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func headerRow(organization string, term *inventory.ResponsibilityTerm) core.Row {
	return row.New(18).Add(
		col.New(7).Add(
			text.New("TERMO DE RESPONSABILIDADE", props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(organization, "Almoxarifado"), props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("Transação", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(term.TransactionID, props.Text{
				Size: 7, Align: align.Right, Top: 6,
			}),
			text.New("Data: "+term.Date.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
		),
	)
}

func requesterRow(term *inventory.ResponsibilityTerm) core.Row {
	return row.New(16).Add(
		col.New(12).Add(
			text.New("SOLICITANTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(term.Requester, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("Departamento: %s   |   Finalidade: %s",
				nonEmpty(term.Department, "-"),
				nonEmpty(term.Purpose, "-"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtd.", 1, align.Center),
		h("Item", 5, align.Left),
		h("Código", 2, align.Left),
		h("Patrimônio", 2, align.Left),
		h("Unidade", 2, align.Center),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableLineRows(lines []inventory.TermLine) []core.Row {
	result := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(strconv.Itoa(l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(5).Add(text.New(l.Name, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.Code, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.Patrimony, "-"), props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(nonEmpty(l.Unit, "-"), props.Text{Size: 8, Align: align.Center, Top: 1})),
		))
	}
	return result
}

func declarationRow(term *inventory.ResponsibilityTerm) core.Row {
	return row.New(40).Add(
		col.New(8).Add(
			text.New(
				"Declaro ter recebido os materiais relacionados acima em perfeito estado de conservação, "+
					"comprometendo-me a zelar por sua guarda e uso exclusivo no exercício das atividades do "+
					"departamento, e a devolvê-los ao almoxarifado quando solicitado.",
				props.Text{Size: 9, Top: 4, Right: 4},
			),
		),
		col.New(4).Add(code.NewQr(term.TransactionID, props.Rect{Percent: 80, Center: true})),
	)
}

func signatureRow(term *inventory.ResponsibilityTerm) core.Row {
	sign := func(name, role string) core.Col {
		return col.New(6).Add(
			text.New("______________________________", props.Text{Size: 9, Align: align.Center}),
			text.New(name, props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Center, Top: 6}),
			text.New(role, props.Text{Size: 7, Align: align.Center, Top: 11, Color: colorGray}),
		)
	}
	return row.New(18).Add(
		sign(term.Requester, "Solicitante"),
		sign(term.Responsible, "Responsável pelo almoxarifado"),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
