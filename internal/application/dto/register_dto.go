package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpenRegisterRequest body para POST /api/registers.
type OpenRegisterRequest struct {
	StoreID        string          `json:"store_id"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Notes          string          `json:"notes,omitempty"`
}

// CloseRegisterRequest body para POST /api/registers/:id/close.
type CloseRegisterRequest struct {
	ClosingBalance decimal.Decimal `json:"closing_balance"`
	Notes          string          `json:"notes,omitempty"`
}

// CashRegisterResponse sesión de caja. Los campos de cierre vienen vacíos mientras está abierta.
type CashRegisterResponse struct {
	ID              string           `json:"id"`
	StoreID         string           `json:"store_id"`
	OpenedBy        string           `json:"opened_by"`
	OpenedAt        time.Time        `json:"opened_at"`
	OpeningBalance  decimal.Decimal  `json:"opening_balance"`
	OpeningNotes    string           `json:"opening_notes,omitempty"`
	Status          string           `json:"status"`
	ClosedBy        *string          `json:"closed_by,omitempty"`
	ClosedAt        *time.Time       `json:"closed_at,omitempty"`
	ClosingBalance  *decimal.Decimal `json:"closing_balance,omitempty"`
	ExpectedBalance *decimal.Decimal `json:"expected_balance,omitempty"`
	Difference      *decimal.Decimal `json:"difference,omitempty"`
	ClosingNotes    string           `json:"closing_notes,omitempty"`
}

// CashMovementRequest body para POST /api/registers/:id/movements.
type CashMovementRequest struct {
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Reason string          `json:"reason"`
}

// CashMovementResponse movimiento de caja registrado.
type CashMovementResponse struct {
	ID             string          `json:"id"`
	CashRegisterID string          `json:"cash_register_id"`
	UserID         string          `json:"user_id"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Reason         string          `json:"reason"`
	CreatedAt      time.Time       `json:"created_at"`
}

// SessionSummaryResponse resumen de arqueo; ExpectedBalance usa la misma fórmula que el cierre.
type SessionSummaryResponse struct {
	Session         CashRegisterResponse `json:"session"`
	CashSales       decimal.Decimal      `json:"cash_sales"` // solo efectivo; cash y mixed suman al esperado
	CardSales       decimal.Decimal      `json:"card_sales"`
	TransferSales   decimal.Decimal      `json:"transfer_sales"`
	MixedSales      decimal.Decimal      `json:"mixed_sales"`
	Deposits        decimal.Decimal      `json:"deposits"`
	Withdrawals     decimal.Decimal      `json:"withdrawals"`
	ExpectedBalance decimal.Decimal      `json:"expected_balance"`
	IncludesMoves   bool                 `json:"expected_includes_movements"`
}
