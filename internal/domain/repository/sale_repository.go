package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia para ventas y sus líneas.
type SaleRepository interface {
	// NextNumber devuelve el siguiente consecutivo (secuencia de BD, nunca MAX+1).
	NextNumber(ctx context.Context) (int64, error)
	Create(ctx context.Context, sale *entity.Sale) error
	CreateItem(ctx context.Context, item *entity.SaleItem) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	// GetByIdempotencyKey devuelve nil, nil si no hay venta con esa llave.
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	GetItems(ctx context.Context, saleID string) ([]*entity.SaleItem, error)
	// MarkCancelled persiste estado y metadatos de anulación.
	MarkCancelled(ctx context.Context, sale *entity.Sale) error
	// SumBySessionAndMethod total de ventas completadas de la sesión agrupado por medio de pago.
	SumBySessionAndMethod(ctx context.Context, sessionID string) (map[string]decimal.Decimal, error)
}
