package repository

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// StockTransferRepository define el puerto de auditoría de traslados.
type StockTransferRepository interface {
	Create(ctx context.Context, t *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	ListByProduct(ctx context.Context, productID string, limit, offset int) ([]*entity.StockTransfer, error)
}
