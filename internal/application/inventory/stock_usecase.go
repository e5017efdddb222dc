package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/Multitienda-api/internal/application/access"
	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// StockUseCase consultas del libro de stock y asignación de productos a tiendas.
type StockUseCase struct {
	stock    repository.StockRepository
	products repository.ProductRepository
	stores   repository.StoreRepository
	users    repository.UserRepository
	txRunner repository.TxRunner
	ledger   *Ledger
	cache    StockCache
}

// NewStockUseCase construye el caso de uso. cache puede ser nil.
func NewStockUseCase(
	stock repository.StockRepository,
	products repository.ProductRepository,
	stores repository.StoreRepository,
	users repository.UserRepository,
	txRunner repository.TxRunner,
	ledger *Ledger,
	cache StockCache,
) *StockUseCase {
	return &StockUseCase{
		stock:    stock,
		products: products,
		stores:   stores,
		users:    users,
		txRunner: txRunner,
		ledger:   ledger,
		cache:    cache,
	}
}

// GetStock devuelve cantidad y mínimo del producto en la tienda. Lee primero del caché.
func (uc *StockUseCase) GetStock(ctx context.Context, storeID, productID string) (*dto.StockResponse, error) {
	if storeID == "" {
		return nil, domain.Invalid("store_id", "requerido")
	}
	if productID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	log := zerolog.Ctx(ctx)

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, storeID, productID)
		if err != nil {
			log.Warn().Err(err).Msg("caché de stock no disponible")
		} else if cached != nil {
			return toStockResponse(cached), nil
		}
	}

	level, err := uc.stock.Get(ctx, storeID, productID)
	if err != nil {
		return nil, err
	}
	if level == nil {
		return nil, fmt.Errorf("%w: producto %s en tienda %s", domain.ErrProductNotAssigned, productID, storeID)
	}
	if uc.cache != nil {
		level = uc.fill(ctx, level)
	}
	return toStockResponse(level), nil
}

// fill guarda la fila en caché y la vuelve a leer. Si cambió entre la lectura y el Set
// (una venta que confirmó e invalidó en medio), borra la entrada para no servir el valor viejo.
func (uc *StockUseCase) fill(ctx context.Context, level *entity.StockLevel) *entity.StockLevel {
	log := zerolog.Ctx(ctx)
	if err := uc.cache.Set(ctx, level); err != nil {
		log.Warn().Err(err).Msg("no se pudo guardar stock en caché")
		return level
	}
	current, err := uc.stock.Get(ctx, level.StoreID, level.ProductID)
	if err == nil && current != nil && sameLevel(current, level) {
		return level
	}
	if err := uc.cache.Delete(ctx, level.StoreID, level.ProductID); err != nil {
		log.Warn().Err(err).Str("store_id", level.StoreID).Msg("no se pudo invalidar caché de stock")
	}
	if err == nil && current != nil {
		return current
	}
	return level
}

func sameLevel(a, b *entity.StockLevel) bool {
	return a.Quantity == b.Quantity && a.MinStock == b.MinStock && a.UpdatedAt.Equal(b.UpdatedAt)
}

// AssignProduct crea la fila de stock del producto en la tienda con cantidad y mínimo iniciales.
func (uc *StockUseCase) AssignProduct(ctx context.Context, userID string, in dto.AssignProductRequest) (_ *dto.StockResponse, err error) {
	ctx, span := tracer.Start(ctx, "inventory.AssignProduct")
	defer span.End()
	defer func() { _ = spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.AssignProduct); err != nil {
		return nil, err
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity", "no puede ser negativa")
	}
	if in.MinStock < 0 {
		return nil, domain.Invalid("min_stock", "no puede ser negativo")
	}
	if err := uc.requireStore(ctx, "store_id", in.StoreID); err != nil {
		return nil, err
	}
	if err := uc.requireProduct(ctx, in.ProductID); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("store_id", in.StoreID), attribute.String("product_id", in.ProductID))

	level := &entity.StockLevel{
		StoreID:   in.StoreID,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		MinStock:  in.MinStock,
		UpdatedAt: time.Now(),
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		if err := repos.Stock.Create(ctx, level); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return fmt.Errorf("%w: el producto ya está asignado a la tienda", domain.ErrConflict)
			}
			return err
		}
		return uc.ledger.RefreshProductActive(ctx, repos, in.ProductID)
	})
	if err != nil {
		return nil, err
	}
	uc.ledger.Invalidate(ctx, in.StoreID, in.ProductID)
	zerolog.Ctx(ctx).Info().
		Str("store_id", in.StoreID).
		Str("product_id", in.ProductID).
		Int("quantity", in.Quantity).
		Msg("producto asignado a tienda")
	return toStockResponse(level), nil
}

// ListLowStock filas de la tienda en o por debajo del mínimo. Solo informativo.
func (uc *StockUseCase) ListLowStock(ctx context.Context, storeID string) ([]dto.StockResponse, error) {
	if err := uc.requireStore(ctx, "store_id", storeID); err != nil {
		return nil, err
	}
	levels, err := uc.stock.ListLowStock(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockResponse, 0, len(levels))
	for _, l := range levels {
		out = append(out, *toStockResponse(l))
	}
	return out, nil
}

func (uc *StockUseCase) requireStore(ctx context.Context, field, storeID string) error {
	return requireStore(ctx, uc.stores, field, storeID)
}

func (uc *StockUseCase) requireProduct(ctx context.Context, productID string) error {
	return requireProduct(ctx, uc.products, productID)
}

func requireStore(ctx context.Context, stores repository.StoreRepository, field, storeID string) error {
	if storeID == "" {
		return domain.Invalid(field, "requerido")
	}
	store, err := stores.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if store == nil {
		return domain.Invalid(field, "la tienda no existe")
	}
	return nil
}

func requireProduct(ctx context.Context, products repository.ProductRepository, productID string) error {
	if productID == "" {
		return domain.Invalid("product_id", "requerido")
	}
	product, err := products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.Invalid("product_id", "el producto no existe")
	}
	return nil
}

func toStockResponse(l *entity.StockLevel) *dto.StockResponse {
	return &dto.StockResponse{
		StoreID:   l.StoreID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		MinStock:  l.MinStock,
		IsLow:     l.IsLow(),
		UpdatedAt: l.UpdatedAt,
	}
}
