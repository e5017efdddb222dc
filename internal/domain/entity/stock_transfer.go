package entity

import "time"

// StockTransfer registro de auditoría de un traslado entre tiendas. Solo se agrega.
type StockTransfer struct {
	ID          string
	FromStoreID string
	ToStoreID   string
	ProductID   string
	Quantity    int
	Notes       string
	CreatedBy   string
	CreatedAt   time.Time
}
