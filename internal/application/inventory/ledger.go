package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// Line cantidad de un producto a debitar o acreditar.
type Line struct {
	ProductID string
	Quantity  int
}

// Ledger aplica débitos y créditos de stock dentro de la transacción del llamador
// y recalcula el flag is_active de cada producto afectado.
type Ledger struct {
	cache StockCache
}

// NewLedger construye el libro. cache puede ser nil.
func NewLedger(cache StockCache) *Ledger {
	return &Ledger{cache: cache}
}

// sortedLines ordena por producto para que dos transacciones tomen los bloqueos en el mismo orden.
func sortedLines(lines []Line) []Line {
	out := append([]Line(nil), lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}

func distinctProducts(lines []Line) []string {
	seen := make(map[string]struct{}, len(lines))
	var ids []string
	for _, ln := range lines {
		if _, ok := seen[ln.ProductID]; ok {
			continue
		}
		seen[ln.ProductID] = struct{}{}
		ids = append(ids, ln.ProductID)
	}
	return ids
}

// DebitInTx descuenta cada línea con un UPDATE condicional (quantity >= qty).
// Si una línea no alcanza, devuelve ErrInsufficientStock (o ErrProductNotAssigned si no hay fila)
// y el llamador debe abortar la transacción completa.
func (l *Ledger) DebitInTx(ctx context.Context, repos repository.TxRepos, storeID string, lines []Line) error {
	sorted := sortedLines(lines)
	for _, ln := range sorted {
		ok, err := repos.Stock.Decrement(ctx, storeID, ln.ProductID, ln.Quantity)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ok {
			continue
		}
		level, err := repos.Stock.Get(ctx, storeID, ln.ProductID)
		if err != nil {
			return fmt.Errorf("get stock: %w", err)
		}
		if level == nil {
			return fmt.Errorf("%w: producto %s en tienda %s", domain.ErrProductNotAssigned, ln.ProductID, storeID)
		}
		return fmt.Errorf("%w: producto %s disponible %d, solicitado %d",
			domain.ErrInsufficientStock, ln.ProductID, level.Quantity, ln.Quantity)
	}
	return l.refreshAll(ctx, repos, distinctProducts(sorted))
}

// CreditInTx devuelve al stock cada línea (anulación de venta).
func (l *Ledger) CreditInTx(ctx context.Context, repos repository.TxRepos, storeID string, lines []Line) error {
	sorted := sortedLines(lines)
	for _, ln := range sorted {
		if err := repos.Stock.Increment(ctx, storeID, ln.ProductID, ln.Quantity); err != nil {
			return fmt.Errorf("increment stock %s: %w", ln.ProductID, err)
		}
	}
	return l.refreshAll(ctx, repos, distinctProducts(sorted))
}

func (l *Ledger) refreshAll(ctx context.Context, repos repository.TxRepos, productIDs []string) error {
	for _, id := range productIDs {
		if err := l.RefreshProductActive(ctx, repos, id); err != nil {
			return err
		}
	}
	return nil
}

// RefreshProductActive recalcula is_active = stock total en todas las tiendas > 0.
func (l *Ledger) RefreshProductActive(ctx context.Context, repos repository.TxRepos, productID string) error {
	total, err := repos.Stock.TotalByProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("total stock: %w", err)
	}
	product, err := repos.Products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	active := total > 0
	if product.IsActive == active {
		return nil
	}
	if err := repos.Products.SetActive(ctx, productID, active); err != nil {
		return fmt.Errorf("set product active: %w", err)
	}
	return nil
}

// Invalidate borra del caché las filas tocadas. Llamar solo después del commit.
func (l *Ledger) Invalidate(ctx context.Context, storeID string, productIDs ...string) {
	if l.cache == nil || len(productIDs) == 0 {
		return
	}
	if err := l.cache.Delete(ctx, storeID, productIDs...); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("store_id", storeID).Msg("no se pudo invalidar caché de stock")
	}
}

// LinesProductIDs ids de producto de las líneas, sin repetir.
func LinesProductIDs(lines []Line) []string {
	return distinctProducts(lines)
}
