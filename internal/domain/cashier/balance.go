// Package cashier concentra la fórmula de arqueo de caja. Cierre y resúmenes usan la misma.
package cashier

import "github.com/shopspring/decimal"

// Policy define qué entra en el saldo esperado.
type Policy struct {
	// IncludeMovements suma ingresos y resta retiros manuales.
	IncludeMovements bool
}

// Totals agregados de una sesión de caja.
type Totals struct {
	OpeningBalance decimal.Decimal
	CashSales      decimal.Decimal // ventas completadas en cash o mixed
	Deposits       decimal.Decimal
	Withdrawals    decimal.Decimal
}

// ExpectedBalance = apertura + ventas en efectivo [+ ingresos - retiros].
func ExpectedBalance(p Policy, t Totals) decimal.Decimal {
	expected := t.OpeningBalance.Add(t.CashSales)
	if p.IncludeMovements {
		expected = expected.Add(t.Deposits).Sub(t.Withdrawals)
	}
	return expected
}

// Difference = contado - esperado. Negativo indica faltante.
func Difference(closing, expected decimal.Decimal) decimal.Decimal {
	return closing.Sub(expected)
}
