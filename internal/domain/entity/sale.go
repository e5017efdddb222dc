package entity

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain"
)

// Medios de pago (solo se registran; no hay procesamiento de pagos).
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodMixed    = "mixed"
)

// Estados de venta. completed -> cancelled, sin más transiciones.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// ValidPaymentMethod valida el medio de pago.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodMixed:
		return true
	}
	return false
}

// CountsAsCash indica si el medio de pago suma al efectivo esperado en caja.
func CountsAsCash(m string) bool {
	return m == PaymentMethodCash || m == PaymentMethodMixed
}

// FormatSaleNumber arma el número visible de la venta a partir del consecutivo.
func FormatSaleNumber(seq int64) string {
	return fmt.Sprintf("V-%08d", seq)
}

// Sale cabecera de una venta. Total = Subtotal + Tax - Discount.
type Sale struct {
	ID                 string
	Number             string
	StoreID            string
	CashRegisterID     string
	UserID             string
	Subtotal           decimal.Decimal
	Tax                decimal.Decimal
	Discount           decimal.Decimal
	Total              decimal.Decimal
	PaymentMethod      string
	Status             string
	IdempotencyKey     string
	CancelledBy        *string
	CancelledAt        *time.Time
	CancellationReason string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	Items              []*SaleItem
}

// SaleItem línea de venta; inmutable una vez creada. Subtotal = Quantity × UnitPrice.
type SaleItem struct {
	ID        string
	SaleID    string
	ProductID string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	CreatedAt time.Time
}

// ComputeTotals recalcula el subtotal de cada línea y los totales de la cabecera.
func (s *Sale) ComputeTotals() {
	subtotal := decimal.Zero
	for _, it := range s.Items {
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(it.Subtotal)
	}
	s.Subtotal = subtotal
	s.Total = subtotal.Add(s.Tax).Sub(s.Discount)
}

// IsCompleted informa si la venta sigue vigente.
func (s *Sale) IsCompleted() bool {
	return s.Status == SaleStatusCompleted
}

// Cancel aplica la transición completed -> cancelled.
func (s *Sale) Cancel(userID, reason string, at time.Time) error {
	if !s.IsCompleted() {
		return domain.ErrSaleAlreadyCancelled
	}
	s.Status = SaleStatusCancelled
	s.CancelledBy = &userID
	s.CancelledAt = &at
	s.CancellationReason = reason
	s.UpdatedAt = at
	return nil
}
