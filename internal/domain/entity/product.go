package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (SKU global).
// IsActive es derivado: false cuando el stock sumado de todas las tiendas es cero.
type Product struct {
	ID        string
	SKU       string
	Name      string
	CostPrice decimal.Decimal
	SalePrice decimal.Decimal
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
