// Package pdf genera el reporte de arqueo (cierre de caja) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + código      │  Sesión + estado + fechas    │
//	│  ─────────────────────────────────────────────────────────  │
//	│  VENTAS: Efectivo | Tarjeta | Transferencia | Mixto          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  MOVIMIENTOS: Tipo | Motivo | Valor                          │
//	│  ─────────────────────────────────────────────────────────  │
//	│  ARQUEO: Apertura / Esperado / Contado / DIFERENCIA          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
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
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/Multitienda-api/internal/application/register"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 170, Green: 20, Blue: 20}
)

var printer = message.NewPrinter(language.Spanish)

// ── Generator ─────────────────────────────────────────────────────────────────

var _ register.ClosingReportRenderer = (*ClosingReportGenerator)(nil)

// ClosingReportGenerator implementa register.ClosingReportRenderer usando Maroto v2.
type ClosingReportGenerator struct{}

// NewClosingReportGenerator construye el generador.
func NewClosingReportGenerator() *ClosingReportGenerator { return &ClosingReportGenerator{} }

// RenderClosingReport genera el PDF y devuelve sus bytes.
func (g *ClosingReportGenerator) RenderClosingReport(_ context.Context, rep register.ClosingReport) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Arqueo de caja", true).
		WithAuthor(rep.Store.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(sectionTitle("VENTAS DE LA SESIÓN"))
	m.AddRows(salesRow(rep))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(sectionTitle("INGRESOS Y RETIROS"))
	for _, r := range movementRows(rep.Movements) {
		m.AddRows(r)
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(totalsRow(rep))
	if notes := rep.Session.ClosingNotes; notes != "" {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("Observaciones: "+notes, props.Text{Size: 8, Top: 2, Color: colorGray}),
		)))
	}
	m.AddRows(line.NewRow(3))
	m.AddRows(row.New(6).Add(col.New(12).Add(
		text.New("Generado "+rep.GeneratedAt.Format("02/01/2006 15:04"), props.Text{
			Size: 6.5, Color: colorGray, Align: align.Right,
		}),
	)))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tienda (izq) y sesión + fechas (der).
func headerRow(rep register.ClosingReport) core.Row {
	s := rep.Session
	closed := "—"
	if s.ClosedAt != nil {
		closed = s.ClosedAt.Format("02/01/2006 15:04")
	}
	return row.New(20).Add(
		col.New(7).Add(
			text.New(rep.Store.Name, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Código: "+rep.Store.Code, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("ARQUEO DE CAJA · "+strings.ToUpper(statusLabel(s.Status)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("Sesión "+shortID(s.ID), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 6,
			}),
			text.New("Apertura: "+s.OpenedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 12, Color: colorGray,
			}),
			text.New("Cierre: "+closed, props.Text{
				Size: 8, Align: align.Right, Top: 16, Color: colorGray,
			}),
		),
	)
}

func sectionTitle(label string) core.Row {
	return row.New(7).Add(col.New(12).Add(
		text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 2}),
	))
}

// salesRow: totales por medio de pago (solo ventas completadas).
func salesRow(rep register.ClosingReport) core.Row {
	cell := func(label string, v decimal.Decimal) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 8, Align: align.Center, Color: colorGray, Top: 1}),
			text.New(formatMoney(v), props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Center, Top: 6}),
		)
	}
	sum := rep.Summary
	return row.New(13).Add(
		cell("Efectivo", sum.CashSales),
		cell("Tarjeta", sum.CardSales),
		cell("Transferencia", sum.TransferSales),
		cell("Mixto", sum.MixedSales),
	)
}

// movementRows: una fila por ingreso/retiro.
func movementRows(movs []*entity.CashMovement) []core.Row {
	if len(movs) == 0 {
		return []core.Row{row.New(6).Add(col.New(12).Add(
			text.New("Sin movimientos registrados.", props.Text{Size: 8, Color: colorGray, Top: 1}),
		))}
	}
	result := make([]core.Row, 0, len(movs))
	for _, mv := range movs {
		label := "Ingreso"
		if mv.Type == entity.CashMovementWithdrawal {
			label = "Retiro"
		}
		result = append(result, row.New(6).Add(
			col.New(2).Add(text.New(mv.CreatedAt.Format("15:04"), props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(label, props.Text{Size: 8, Top: 1})),
			col.New(5).Add(text.New(mv.Reason, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(formatMoney(mv.Signed()), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// totalsRow: apertura, esperado, contado y diferencia alineados a la derecha.
func totalsRow(rep register.ClosingReport) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}

	s := rep.Session
	counted, diff := "—", "—"
	diffColor := colorPrimary
	if s.ClosingBalance != nil {
		counted = formatMoney(*s.ClosingBalance)
	}
	if s.Difference != nil {
		diff = formatMoney(*s.Difference)
		if s.Difference.IsNegative() {
			diffColor = colorRed
		}
	}
	policy := "sin ingresos/retiros"
	if rep.Summary.IncludesMoves {
		policy = "con ingresos/retiros"
	}

	return row.New(30).Add(
		col.New(4).Add(
			text.New("Esperado calculado "+policy+".", props.Text{Size: 7, Color: colorGray, Top: 1}),
		),
		col.New(4).Add(
			label("Saldo de apertura:"),
			label("Ingresos / retiros:"),
			label("Saldo esperado:"),
			label("Saldo contado:"),
			text.New("DIFERENCIA:", props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: diffColor, Right: 2}),
		),
		col.New(4).Add(
			value(formatMoney(s.OpeningBalance)),
			value(formatMoney(rep.Summary.Deposits)+" / "+formatMoney(rep.Summary.Withdrawals)),
			value(formatMoney(rep.Summary.ExpectedBalance)),
			value(counted),
			text.New(diff, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: diffColor, Right: 1}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// formatMoney formato local con separador de miles y dos decimales. Ej: 1234567.5 → "$1.234.567,50"
func formatMoney(v decimal.Decimal) string {
	f, _ := v.Round(2).Float64()
	if f < 0 {
		return "-$" + printer.Sprintf("%.2f", -f)
	}
	return "$" + printer.Sprintf("%.2f", f)
}

func statusLabel(status string) string {
	if status == entity.CashRegisterStatusClosed {
		return "cerrada"
	}
	return "abierta"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
