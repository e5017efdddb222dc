package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas y líneas en memoria.
type SaleRepo struct{ c conn }

func (r *SaleRepo) NextNumber(_ context.Context) (int64, error) {
	var n int64
	err := r.c.do(func(_ *state) error {
		r.c.db.saleSeq++
		n = r.c.db.saleSeq
		return nil
	})
	return n, err
}

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.c.do(func(st *state) error {
		for _, s := range st.sales {
			if s.Number == sale.Number {
				return domain.ErrDuplicate
			}
			if sale.IdempotencyKey != "" && s.IdempotencyKey == sale.IdempotencyKey {
				return domain.ErrDuplicate
			}
		}
		row := *sale
		row.Items = nil
		st.sales[sale.ID] = row
		return nil
	})
}

func (r *SaleRepo) CreateItem(_ context.Context, item *entity.SaleItem) error {
	return r.c.do(func(st *state) error {
		if _, ok := st.sales[item.SaleID]; !ok {
			return domain.ErrNotFound
		}
		st.items = append(st.items, *item)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.c.do(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = &s
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) GetByIdempotencyKey(_ context.Context, key string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.c.do(func(st *state) error {
		for _, s := range st.sales {
			if key != "" && s.IdempotencyKey == key {
				s := s
				out = &s
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetItems(_ context.Context, saleID string) ([]*entity.SaleItem, error) {
	var out []*entity.SaleItem
	err := r.c.do(func(st *state) error {
		for _, it := range st.items {
			if it.SaleID == saleID {
				it := it
				out = append(out, &it)
			}
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) MarkCancelled(_ context.Context, sale *entity.Sale) error {
	return r.c.do(func(st *state) error {
		cur, ok := st.sales[sale.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if !cur.IsCompleted() {
			return domain.ErrSaleAlreadyCancelled
		}
		cur.Status = sale.Status
		cur.CancelledBy = sale.CancelledBy
		cur.CancelledAt = sale.CancelledAt
		cur.CancellationReason = sale.CancellationReason
		cur.UpdatedAt = sale.UpdatedAt
		st.sales[sale.ID] = cur
		return nil
	})
}

func (r *SaleRepo) SumBySessionAndMethod(_ context.Context, sessionID string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal)
	err := r.c.do(func(st *state) error {
		for _, s := range st.sales {
			if s.CashRegisterID != sessionID || !s.IsCompleted() {
				continue
			}
			out[s.PaymentMethod] = out[s.PaymentMethod].Add(s.Total)
		}
		return nil
	})
	return out, err
}
