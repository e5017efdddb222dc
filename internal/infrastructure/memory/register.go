package memory

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var (
	_ repository.CashRegisterRepository = (*CashRegisterRepo)(nil)
	_ repository.CashMovementRepository = (*CashMovementRepo)(nil)
)

// CashRegisterRepo sesiones de caja en memoria. Hace cumplir una sesión abierta por tienda.
type CashRegisterRepo struct{ c conn }

func (r *CashRegisterRepo) Create(_ context.Context, reg *entity.CashRegister) error {
	return r.c.do(func(st *state) error {
		for _, x := range st.registers {
			if x.StoreID == reg.StoreID && x.IsOpen() {
				return domain.ErrRegisterAlreadyOpen
			}
		}
		st.registers[reg.ID] = *reg
		return nil
	})
}

func (r *CashRegisterRepo) GetByID(_ context.Context, id string) (*entity.CashRegister, error) {
	var out *entity.CashRegister
	err := r.c.do(func(st *state) error {
		if x, ok := st.registers[id]; ok {
			out = &x
		}
		return nil
	})
	return out, err
}

func (r *CashRegisterRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashRegister, error) {
	return r.GetByID(ctx, id)
}

func (r *CashRegisterRepo) GetForShare(ctx context.Context, id string) (*entity.CashRegister, error) {
	return r.GetByID(ctx, id)
}

func (r *CashRegisterRepo) GetOpenByStore(_ context.Context, storeID string) (*entity.CashRegister, error) {
	var out *entity.CashRegister
	err := r.c.do(func(st *state) error {
		for _, x := range st.registers {
			if x.StoreID == storeID && x.IsOpen() {
				x := x
				out = &x
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CashRegisterRepo) Close(_ context.Context, reg *entity.CashRegister) error {
	return r.c.do(func(st *state) error {
		cur, ok := st.registers[reg.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if !cur.IsOpen() {
			return domain.ErrRegisterAlreadyClosed
		}
		st.registers[reg.ID] = *reg
		return nil
	})
}

// CashMovementRepo movimientos de caja en memoria (solo inserción).
type CashMovementRepo struct{ c conn }

func (r *CashMovementRepo) Create(_ context.Context, mov *entity.CashMovement) error {
	return r.c.do(func(st *state) error {
		st.movements = append(st.movements, *mov)
		return nil
	})
}

func (r *CashMovementRepo) ListBySession(_ context.Context, sessionID string) ([]*entity.CashMovement, error) {
	var out []*entity.CashMovement
	err := r.c.do(func(st *state) error {
		for _, m := range st.movements {
			if m.CashRegisterID == sessionID {
				m := m
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}

func (r *CashMovementRepo) SumBySession(_ context.Context, sessionID string) (decimal.Decimal, decimal.Decimal, error) {
	deposits, withdrawals := decimal.Zero, decimal.Zero
	err := r.c.do(func(st *state) error {
		for _, m := range st.movements {
			if m.CashRegisterID != sessionID {
				continue
			}
			if m.Type == entity.CashMovementWithdrawal {
				withdrawals = withdrawals.Add(m.Amount)
			} else {
				deposits = deposits.Add(m.Amount)
			}
		}
		return nil
	})
	return deposits, withdrawals, err
}
