package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// CashMovementRepository define el puerto de persistencia para ingresos/retiros de caja.
type CashMovementRepository interface {
	Create(ctx context.Context, mov *entity.CashMovement) error
	ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error)
	// SumBySession devuelve el total de ingresos y el total de retiros de la sesión.
	SumBySession(ctx context.Context, sessionID string) (deposits, withdrawals decimal.Decimal, err error)
}
