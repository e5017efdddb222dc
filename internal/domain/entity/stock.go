package entity

import "time"

// StockLevel es la fila del libro de stock para un par (tienda, producto).
// Quantity nunca es negativa; MinStock es solo informativo (alertas de stock bajo).
type StockLevel struct {
	StoreID   string
	ProductID string
	Quantity  int
	MinStock  int
	UpdatedAt time.Time
}

// IsLow indica si la cantidad está en o por debajo del mínimo configurado.
func (s *StockLevel) IsLow() bool {
	return s.Quantity <= s.MinStock
}
