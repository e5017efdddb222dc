package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockColumns = `store_id, product_id, quantity, min_stock, updated_at`

func scanStock(row pgx.Row) (*entity.StockLevel, error) {
	var s entity.StockLevel
	if err := row.Scan(&s.StoreID, &s.ProductID, &s.Quantity, &s.MinStock, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get obtiene el stock de un producto en una tienda.
func (r *StockRepo) Get(ctx context.Context, storeID, productID string) (*entity.StockLevel, error) {
	if !isUUID(storeID) || !isUUID(productID) {
		return nil, nil
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE store_id = $1 AND product_id = $2`
	s, err := scanStock(r.q.QueryRow(ctx, query, storeID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return s, nil
}

// GetForUpdate obtiene el stock y bloquea la fila para update (SELECT FOR UPDATE).
func (r *StockRepo) GetForUpdate(ctx context.Context, storeID, productID string) (*entity.StockLevel, error) {
	if !isUUID(storeID) || !isUUID(productID) {
		return nil, nil
	}
	query := `SELECT ` + stockColumns + ` FROM stock WHERE store_id = $1 AND product_id = $2 FOR UPDATE`
	s, err := scanStock(r.q.QueryRow(ctx, query, storeID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return s, nil
}

// Create inserta la fila de stock. Ya existente -> domain.ErrDuplicate.
func (r *StockRepo) Create(ctx context.Context, level *entity.StockLevel) error {
	query := `INSERT INTO stock (` + stockColumns + `) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(ctx, query, level.StoreID, level.ProductID, level.Quantity, level.MinStock, level.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err, "") {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// Decrement UPDATE condicional: la fila se toca solo si alcanza la cantidad.
func (r *StockRepo) Decrement(ctx context.Context, storeID, productID string, qty int) (bool, error) {
	query := `
		UPDATE stock SET quantity = quantity - $3, updated_at = now()
		WHERE store_id = $1 AND product_id = $2 AND quantity >= $3`
	tag, err := r.q.Exec(ctx, query, storeID, productID, qty)
	if err != nil {
		return false, fmt.Errorf("decrement stock: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Increment suma qty a una fila existente.
func (r *StockRepo) Increment(ctx context.Context, storeID, productID string, qty int) error {
	query := `
		UPDATE stock SET quantity = quantity + $3, updated_at = now()
		WHERE store_id = $1 AND product_id = $2`
	tag, err := r.q.Exec(ctx, query, storeID, productID, qty)
	if err != nil {
		return fmt.Errorf("increment stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductNotAssigned
	}
	return nil
}

// AddOrCreate suma qty o crea la fila con min_stock (el min_stock existente no se toca).
func (r *StockRepo) AddOrCreate(ctx context.Context, storeID, productID string, qty, minStock int) error {
	query := `
		INSERT INTO stock (store_id, product_id, quantity, min_stock, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity, updated_at = now()`
	if _, err := r.q.Exec(ctx, query, storeID, productID, qty, minStock); err != nil {
		return fmt.Errorf("add or create stock: %w", err)
	}
	return nil
}

// TotalByProduct suma el stock del producto en todas las tiendas.
func (r *StockRepo) TotalByProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM stock WHERE product_id = $1`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total stock: %w", err)
	}
	return total, nil
}

// ListLowStock filas en o bajo el mínimo.
func (r *StockRepo) ListLowStock(ctx context.Context, storeID string) ([]*entity.StockLevel, error) {
	if !isUUID(storeID) {
		return nil, nil
	}
	query := `
		SELECT ` + stockColumns + ` FROM stock
		WHERE store_id = $1 AND quantity <= min_stock
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, storeID)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()

	var out []*entity.StockLevel
	for rows.Next() {
		s, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
