package inventory

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// StockCache caché de lectura para getStock. Un fallo de caché nunca falla la operación.
type StockCache interface {
	// Get devuelve nil, nil si no hay entrada.
	Get(ctx context.Context, storeID, productID string) (*entity.StockLevel, error)
	Set(ctx context.Context, level *entity.StockLevel) error
	Delete(ctx context.Context, storeID string, productIDs ...string) error
}
