package cashier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestExpectedBalance(t *testing.T) {
	totals := Totals{
		OpeningBalance: d("500"),
		CashSales:      d("200"),
		Deposits:       d("0"),
		Withdrawals:    d("50"),
	}

	t.Run("solo ventas en efectivo", func(t *testing.T) {
		expected := ExpectedBalance(Policy{}, totals)
		assert.True(t, expected.Equal(d("700")), expected.String())
		assert.True(t, Difference(d("650"), expected).Equal(d("-50")))
	})

	t.Run("incluye movimientos", func(t *testing.T) {
		expected := ExpectedBalance(Policy{IncludeMovements: true}, totals)
		assert.True(t, expected.Equal(d("650")), expected.String())
		assert.True(t, Difference(d("650"), expected).IsZero())
	})

	t.Run("ingresos suman", func(t *testing.T) {
		tt := totals
		tt.Deposits = d("100.50")
		expected := ExpectedBalance(Policy{IncludeMovements: true}, tt)
		assert.True(t, expected.Equal(d("750.50")), expected.String())
	})
}
