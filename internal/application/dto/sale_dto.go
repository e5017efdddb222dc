package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea de venta.
type SaleItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales. Tax y Discount son opcionales (cero por defecto).
type CreateSaleRequest struct {
	StoreID        string            `json:"store_id"`
	CashRegisterID string            `json:"cash_register_id"`
	PaymentMethod  string            `json:"payment_method"`
	Items          []SaleItemRequest `json:"items"`
	Tax            *decimal.Decimal  `json:"tax,omitempty"`
	Discount       *decimal.Decimal  `json:"discount,omitempty"`
	IdempotencyKey string            `json:"idempotency_key,omitempty"`
}

// CancelSaleRequest body para POST /api/sales/:id/cancel.
type CancelSaleRequest struct {
	Reason string `json:"reason"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// SaleResponse venta con sus líneas.
type SaleResponse struct {
	ID                 string             `json:"id"`
	Number             string             `json:"number"`
	StoreID            string             `json:"store_id"`
	CashRegisterID     string             `json:"cash_register_id"`
	UserID             string             `json:"user_id"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	Tax                decimal.Decimal    `json:"tax"`
	Discount           decimal.Decimal    `json:"discount"`
	Total              decimal.Decimal    `json:"total"`
	PaymentMethod      string             `json:"payment_method"`
	Status             string             `json:"status"`
	CancelledBy        *string            `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time         `json:"cancelled_at,omitempty"`
	CancellationReason string             `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	Items              []SaleItemResponse `json:"items"`
}
