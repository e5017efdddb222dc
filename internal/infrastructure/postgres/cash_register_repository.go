package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

var (
	_ repository.CashRegisterRepository = (*CashRegisterRepo)(nil)
	_ repository.CashMovementRepository = (*CashMovementRepo)(nil)
)

const openRegisterIndex = "cash_registers_one_open_per_store"

// CashRegisterRepo implementación de CashRegisterRepository sobre PostgreSQL.
type CashRegisterRepo struct {
	q Querier
}

// NewCashRegisterRepository construye el adaptador de sesiones de caja.
func NewCashRegisterRepository(q Querier) *CashRegisterRepo {
	return &CashRegisterRepo{q: q}
}

const registerColumns = `id, store_id, opened_by, opened_at, opening_balance, opening_notes, status,
	closed_by, closed_at, closing_balance, expected_balance, difference, closing_notes, created_at, updated_at`

func scanRegister(row pgx.Row) (*entity.CashRegister, error) {
	var c entity.CashRegister
	err := row.Scan(
		&c.ID, &c.StoreID, &c.OpenedBy, &c.OpenedAt, &c.OpeningBalance, &c.OpeningNotes, &c.Status,
		&c.ClosedBy, &c.ClosedAt, &c.ClosingBalance, &c.ExpectedBalance, &c.Difference, &c.ClosingNotes,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create abre la sesión. El índice parcial único garantiza una sola abierta por tienda.
func (r *CashRegisterRepo) Create(ctx context.Context, reg *entity.CashRegister) error {
	query := `
		INSERT INTO cash_registers (id, store_id, opened_by, opened_at, opening_balance, opening_notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		reg.ID, reg.StoreID, reg.OpenedBy, reg.OpenedAt, reg.OpeningBalance, reg.OpeningNotes, reg.Status,
		reg.CreatedAt, reg.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, openRegisterIndex) {
			return domain.ErrRegisterAlreadyOpen
		}
		return fmt.Errorf("insert cash register: %w", err)
	}
	return nil
}

// GetByID obtiene la sesión sin bloqueo.
func (r *CashRegisterRepo) GetByID(ctx context.Context, id string) (*entity.CashRegister, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE id = $1`, id)
}

// GetForUpdate bloqueo exclusivo: el cierre espera a ventas y movimientos en curso.
func (r *CashRegisterRepo) GetForUpdate(ctx context.Context, id string) (*entity.CashRegister, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE id = $1 FOR UPDATE`, id)
}

// GetForShare bloqueo compartido: varias ventas concurrentes, ninguna durante el cierre.
func (r *CashRegisterRepo) GetForShare(ctx context.Context, id string) (*entity.CashRegister, error) {
	if !isUUID(id) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE id = $1 FOR SHARE`, id)
}

// GetOpenByStore sesión abierta de la tienda o nil.
func (r *CashRegisterRepo) GetOpenByStore(ctx context.Context, storeID string) (*entity.CashRegister, error) {
	if !isUUID(storeID) {
		return nil, nil
	}
	return r.getOne(ctx, `SELECT `+registerColumns+` FROM cash_registers WHERE store_id = $1 AND status = 'open'`, storeID)
}

func (r *CashRegisterRepo) getOne(ctx context.Context, query, arg string) (*entity.CashRegister, error) {
	c, err := scanRegister(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cash register: %w", err)
	}
	return c, nil
}

// Close persiste los campos de cierre. Solo transiciona sesiones abiertas.
func (r *CashRegisterRepo) Close(ctx context.Context, reg *entity.CashRegister) error {
	query := `
		UPDATE cash_registers
		SET status = $2, closed_by = $3, closed_at = $4, closing_balance = $5, expected_balance = $6,
		    difference = $7, closing_notes = $8, updated_at = $9
		WHERE id = $1 AND status = 'open'`
	tag, err := r.q.Exec(ctx, query,
		reg.ID, reg.Status, reg.ClosedBy, reg.ClosedAt, reg.ClosingBalance, reg.ExpectedBalance,
		reg.Difference, reg.ClosingNotes, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("close cash register: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrRegisterAlreadyClosed
	}
	return nil
}

// CashMovementRepo implementación de CashMovementRepository sobre PostgreSQL.
type CashMovementRepo struct {
	q Querier
}

// NewCashMovementRepository construye el adaptador de movimientos de caja.
func NewCashMovementRepository(q Querier) *CashMovementRepo {
	return &CashMovementRepo{q: q}
}

// Create registra un movimiento (append-only).
func (r *CashMovementRepo) Create(ctx context.Context, m *entity.CashMovement) error {
	query := `
		INSERT INTO cash_movements (id, cash_register_id, user_id, type, amount, reason, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query, m.ID, m.CashRegisterID, m.UserID, m.Type, m.Amount, m.Reason, m.CreatedAt)
	if err != nil {
		if isCheckViolation(err) {
			return domain.Invalid("amount", "debe ser mayor que cero")
		}
		return fmt.Errorf("insert cash movement: %w", err)
	}
	return nil
}

// ListBySession movimientos de la sesión en orden de registro.
func (r *CashMovementRepo) ListBySession(ctx context.Context, sessionID string) ([]*entity.CashMovement, error) {
	query := `
		SELECT id, cash_register_id, user_id, type, amount, reason, created_at
		FROM cash_movements WHERE cash_register_id = $1
		ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list cash movements: %w", err)
	}
	defer rows.Close()

	var out []*entity.CashMovement
	for rows.Next() {
		var m entity.CashMovement
		if err := rows.Scan(&m.ID, &m.CashRegisterID, &m.UserID, &m.Type, &m.Amount, &m.Reason, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan cash movement: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// SumBySession totales de ingresos y retiros.
func (r *CashMovementRepo) SumBySession(ctx context.Context, sessionID string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE type = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE type = 'withdrawal'), 0)
		FROM cash_movements WHERE cash_register_id = $1`
	var deposits, withdrawals decimal.Decimal
	if err := r.q.QueryRow(ctx, query, sessionID).Scan(&deposits, &withdrawals); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("sum cash movements: %w", err)
	}
	return deposits, withdrawals, nil
}
