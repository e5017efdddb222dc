package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain"
)

// Estados de una sesión de caja. open -> closed, sin reapertura.
const (
	CashRegisterStatusOpen   = "open"
	CashRegisterStatusClosed = "closed"
)

// CashRegister representa una sesión de caja de una tienda.
// Los campos de cierre son nil mientras la sesión está abierta.
type CashRegister struct {
	ID              string
	StoreID         string
	OpenedBy        string
	OpenedAt        time.Time
	OpeningBalance  decimal.Decimal
	OpeningNotes    string
	Status          string
	ClosedBy        *string
	ClosedAt        *time.Time
	ClosingBalance  *decimal.Decimal
	ExpectedBalance *decimal.Decimal
	Difference      *decimal.Decimal
	ClosingNotes    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsOpen informa si la sesión acepta ventas y movimientos.
func (r *CashRegister) IsOpen() bool {
	return r.Status == CashRegisterStatusOpen
}

// Close aplica la transición open -> closed con los saldos ya calculados.
// difference = closing - expected.
func (r *CashRegister) Close(userID string, closing, expected decimal.Decimal, notes string, at time.Time) error {
	if !r.IsOpen() {
		return domain.ErrRegisterAlreadyClosed
	}
	diff := closing.Sub(expected)
	r.Status = CashRegisterStatusClosed
	r.ClosedBy = &userID
	r.ClosedAt = &at
	r.ClosingBalance = &closing
	r.ExpectedBalance = &expected
	r.Difference = &diff
	r.ClosingNotes = notes
	r.UpdatedAt = at
	return nil
}
