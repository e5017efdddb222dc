package repository

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

// StockRepository define el puerto del libro de stock por tienda+producto.
// Las mutaciones se usan dentro de transacciones (ver TxRunner).
type StockRepository interface {
	// Get devuelve nil, nil si el producto no está asignado a la tienda.
	Get(ctx context.Context, storeID, productID string) (*entity.StockLevel, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(ctx context.Context, storeID, productID string) (*entity.StockLevel, error)
	Create(ctx context.Context, level *entity.StockLevel) error
	// Decrement resta qty solo si quantity >= qty. false si ninguna fila cumplió la condición.
	Decrement(ctx context.Context, storeID, productID string, qty int) (bool, error)
	// Increment suma qty; domain.ErrProductNotAssigned si no existe la fila.
	Increment(ctx context.Context, storeID, productID string, qty int) error
	// AddOrCreate suma qty o crea la fila con minStock si no existe.
	AddOrCreate(ctx context.Context, storeID, productID string, qty, minStock int) error
	// TotalByProduct suma el stock del producto en todas las tiendas.
	TotalByProduct(ctx context.Context, productID string) (int, error)
	// ListLowStock filas con quantity <= min_stock en la tienda.
	ListLowStock(ctx context.Context, storeID string) ([]*entity.StockLevel, error)
}
