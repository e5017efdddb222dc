package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHasMoneyScale(t *testing.T) {
	for _, s := range []string{"0", "4200", "0.01", "1.5", "1.500", "-3.20"} {
		assert.True(t, HasMoneyScale(decimal.RequireFromString(s)), s)
	}
	for _, s := range []string{"0.005", "0.001", "100.001", "-0.009"} {
		assert.False(t, HasMoneyScale(decimal.RequireFromString(s)), s)
	}
}
