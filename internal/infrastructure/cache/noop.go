package cache

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

var _ inventory.StockCache = NoopStockCache{}

// NoopStockCache se usa cuando no hay Redis configurado: siempre falla de caché.
type NoopStockCache struct{}

func (NoopStockCache) Get(context.Context, string, string) (*entity.StockLevel, error) { return nil, nil }
func (NoopStockCache) Set(context.Context, *entity.StockLevel) error                   { return nil }
func (NoopStockCache) Delete(context.Context, string, ...string) error                 { return nil }
