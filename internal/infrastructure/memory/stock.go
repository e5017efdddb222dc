package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo libro de stock en memoria.
type StockRepo struct{ c conn }

func (r *StockRepo) Get(_ context.Context, storeID, productID string) (*entity.StockLevel, error) {
	var out *entity.StockLevel
	err := r.c.do(func(st *state) error {
		if s, ok := st.stock[stockKey{storeID, productID}]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

// GetForUpdate equivale a Get: el mutex de la transacción ya excluye a los demás.
func (r *StockRepo) GetForUpdate(ctx context.Context, storeID, productID string) (*entity.StockLevel, error) {
	return r.Get(ctx, storeID, productID)
}

func (r *StockRepo) Create(_ context.Context, level *entity.StockLevel) error {
	return r.c.do(func(st *state) error {
		k := stockKey{level.StoreID, level.ProductID}
		if _, ok := st.stock[k]; ok {
			return domain.ErrDuplicate
		}
		st.stock[k] = *level
		return nil
	})
}

func (r *StockRepo) Decrement(_ context.Context, storeID, productID string, qty int) (bool, error) {
	var ok bool
	err := r.c.do(func(st *state) error {
		k := stockKey{storeID, productID}
		s, found := st.stock[k]
		if !found || s.Quantity < qty {
			return nil
		}
		s.Quantity -= qty
		s.UpdatedAt = time.Now()
		st.stock[k] = s
		ok = true
		return nil
	})
	return ok, err
}

func (r *StockRepo) Increment(_ context.Context, storeID, productID string, qty int) error {
	return r.c.do(func(st *state) error {
		k := stockKey{storeID, productID}
		s, found := st.stock[k]
		if !found {
			return domain.ErrProductNotAssigned
		}
		s.Quantity += qty
		s.UpdatedAt = time.Now()
		st.stock[k] = s
		return nil
	})
}

func (r *StockRepo) AddOrCreate(_ context.Context, storeID, productID string, qty, minStock int) error {
	return r.c.do(func(st *state) error {
		k := stockKey{storeID, productID}
		s, found := st.stock[k]
		if !found {
			s = entity.StockLevel{StoreID: storeID, ProductID: productID, MinStock: minStock}
		}
		s.Quantity += qty
		s.UpdatedAt = time.Now()
		st.stock[k] = s
		return nil
	})
}

func (r *StockRepo) TotalByProduct(_ context.Context, productID string) (int, error) {
	total := 0
	err := r.c.do(func(st *state) error {
		for k, s := range st.stock {
			if k.productID == productID {
				total += s.Quantity
			}
		}
		return nil
	})
	return total, err
}

func (r *StockRepo) ListLowStock(_ context.Context, storeID string) ([]*entity.StockLevel, error) {
	var out []*entity.StockLevel
	err := r.c.do(func(st *state) error {
		for k, s := range st.stock {
			if k.storeID == storeID && s.IsLow() {
				s := s
				out = append(out, &s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, err
}
