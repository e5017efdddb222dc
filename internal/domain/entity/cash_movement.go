package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de caja.
const (
	CashMovementDeposit    = "deposit"
	CashMovementWithdrawal = "withdrawal"
)

// CashMovement ingreso o retiro manual de efectivo sobre una sesión abierta. Solo se agrega, nunca se edita.
type CashMovement struct {
	ID             string
	CashRegisterID string
	UserID         string
	Type           string
	Amount         decimal.Decimal // siempre > 0; el signo lo da Type
	Reason         string
	CreatedAt      time.Time
}

// ValidCashMovementType valida el tipo de movimiento.
func ValidCashMovementType(t string) bool {
	return t == CashMovementDeposit || t == CashMovementWithdrawal
}

// Signed devuelve el monto con signo: positivo para ingresos, negativo para retiros.
func (m *CashMovement) Signed() decimal.Decimal {
	if m.Type == CashMovementWithdrawal {
		return m.Amount.Neg()
	}
	return m.Amount
}
