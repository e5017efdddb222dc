package dto

import "time"

// AssignProductRequest body para POST /api/stock: crea la fila de stock de un producto en una tienda.
type AssignProductRequest struct {
	StoreID   string `json:"store_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	MinStock  int    `json:"min_stock"`
}

// StockResponse stock de un producto en una tienda.
type StockResponse struct {
	StoreID   string    `json:"store_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	MinStock  int       `json:"min_stock"`
	IsLow     bool      `json:"is_low"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TransferStockRequest body para POST /api/transfers.
type TransferStockRequest struct {
	FromStoreID string `json:"from_store_id"`
	ToStoreID   string `json:"to_store_id"`
	ProductID   string `json:"product_id"`
	Quantity    int    `json:"quantity"`
	Notes       string `json:"notes,omitempty"`
}

// TransferResponse registro de auditoría de un traslado.
type TransferResponse struct {
	ID          string    `json:"id"`
	FromStoreID string    `json:"from_store_id"`
	ToStoreID   string    `json:"to_store_id"`
	ProductID   string    `json:"product_id"`
	Quantity    int       `json:"quantity"`
	Notes       string    `json:"notes,omitempty"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}
