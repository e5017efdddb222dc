package entity

import "github.com/shopspring/decimal"

// MoneyScale decimales de los montos persistidos (NUMERIC(14,2)).
const MoneyScale = 2

// HasMoneyScale indica si el monto se representa sin pérdida con MoneyScale decimales.
// "1.50" y "1.500" son válidos; "0.005" no.
func HasMoneyScale(d decimal.Decimal) bool {
	return d.Equal(d.Round(MoneyScale))
}
