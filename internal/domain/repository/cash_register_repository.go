package repository

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// CashRegisterRepository define el puerto de persistencia para sesiones de caja.
type CashRegisterRepository interface {
	// Create devuelve domain.ErrRegisterAlreadyOpen si la tienda ya tiene una sesión abierta.
	Create(ctx context.Context, reg *entity.CashRegister) error
	GetByID(ctx context.Context, id string) (*entity.CashRegister, error)
	// GetForUpdate bloquea la sesión en modo exclusivo (cierre).
	GetForUpdate(ctx context.Context, id string) (*entity.CashRegister, error)
	// GetForShare bloquea la sesión en modo compartido (ventas y movimientos).
	GetForShare(ctx context.Context, id string) (*entity.CashRegister, error)
	// GetOpenByStore devuelve nil, nil si la tienda no tiene sesión abierta.
	GetOpenByStore(ctx context.Context, storeID string) (*entity.CashRegister, error)
	// Close persiste los campos de cierre ya calculados.
	Close(ctx context.Context, reg *entity.CashRegister) error
}
