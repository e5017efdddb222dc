package memory

import (
	"context"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

// StockTransferRepo auditoría de traslados en memoria.
type StockTransferRepo struct{ c conn }

func (r *StockTransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	return r.c.do(func(st *state) error {
		st.transfers = append(st.transfers, *t)
		return nil
	})
}

func (r *StockTransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	var out *entity.StockTransfer
	err := r.c.do(func(st *state) error {
		for _, t := range st.transfers {
			if t.ID == id {
				t := t
				out = &t
				return nil
			}
		}
		return nil
	})
	return out, err
}

// ListByProduct devuelve los traslados del producto, más recientes primero.
func (r *StockTransferRepo) ListByProduct(_ context.Context, productID string, limit, offset int) ([]*entity.StockTransfer, error) {
	var out []*entity.StockTransfer
	err := r.c.do(func(st *state) error {
		skipped := 0
		for i := len(st.transfers) - 1; i >= 0; i-- {
			t := st.transfers[i]
			if t.ProductID != productID {
				continue
			}
			if skipped < offset {
				skipped++
				continue
			}
			if limit > 0 && len(out) >= limit {
				break
			}
			out = append(out, &t)
		}
		return nil
	})
	return out, err
}
