package register

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jhoicas/Multitienda-api/internal/application/access"
	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/cashier"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/domain/repository"
)

// RegisterUseCase apertura, cierre y arqueo de sesiones de caja.
type RegisterUseCase struct {
	txRunner  repository.TxRunner
	registers repository.CashRegisterRepository
	movements repository.CashMovementRepository
	sales     repository.SaleRepository
	stores    repository.StoreRepository
	users     repository.UserRepository
	policy    cashier.Policy
	renderer  ClosingReportRenderer

	closed metric.Int64Counter
}

// NewRegisterUseCase construye el caso de uso. renderer puede ser nil si no se exponen reportes.
func NewRegisterUseCase(
	txRunner repository.TxRunner,
	registers repository.CashRegisterRepository,
	movements repository.CashMovementRepository,
	sales repository.SaleRepository,
	stores repository.StoreRepository,
	users repository.UserRepository,
	policy cashier.Policy,
	renderer ClosingReportRenderer,
) *RegisterUseCase {
	closed, _ := otel.Meter("multitienda/register").Int64Counter("registers.closed",
		metric.WithDescription("Sesiones de caja cerradas"))
	return &RegisterUseCase{
		txRunner:  txRunner,
		registers: registers,
		movements: movements,
		sales:     sales,
		stores:    stores,
		users:     users,
		policy:    policy,
		renderer:  renderer,
		closed:    closed,
	}
}

// OpenCashRegister abre una sesión para la tienda. Falla con ErrRegisterAlreadyOpen si ya hay una abierta.
func (uc *RegisterUseCase) OpenCashRegister(ctx context.Context, userID string, in dto.OpenRegisterRequest) (_ *dto.CashRegisterResponse, err error) {
	ctx, span := tracer.Start(ctx, "register.Open")
	defer span.End()
	defer func() { spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.OpenRegister); err != nil {
		return nil, err
	}
	if in.StoreID == "" {
		return nil, domain.Invalid("store_id", "requerido")
	}
	if in.OpeningBalance.IsNegative() {
		return nil, domain.Invalid("opening_balance", "no puede ser negativo")
	}
	if !entity.HasMoneyScale(in.OpeningBalance) {
		return nil, domain.Invalid("opening_balance", "máximo 2 decimales")
	}
	store, err := uc.stores.GetByID(ctx, in.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, domain.Invalid("store_id", "la tienda no existe")
	}
	span.SetAttributes(attribute.String("store_id", in.StoreID))

	now := time.Now()
	reg := &entity.CashRegister{
		ID:             uuid.New().String(),
		StoreID:        in.StoreID,
		OpenedBy:       userID,
		OpenedAt:       now,
		OpeningBalance: in.OpeningBalance,
		OpeningNotes:   in.Notes,
		Status:         entity.CashRegisterStatusOpen,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		current, err := repos.CashRegisters.GetOpenByStore(ctx, in.StoreID)
		if err != nil {
			return fmt.Errorf("get open register: %w", err)
		}
		if current != nil {
			return domain.ErrRegisterAlreadyOpen
		}
		// El índice único parcial cubre la carrera entre la consulta y el insert.
		return repos.CashRegisters.Create(ctx, reg)
	})
	log := zerolog.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("store_id", in.StoreID).Msg("apertura de caja rechazada")
		return nil, err
	}
	log.Info().
		Str("register_id", reg.ID).
		Str("store_id", reg.StoreID).
		Str("opening_balance", reg.OpeningBalance.String()).
		Msg("caja abierta")
	return toRegisterResponse(reg), nil
}

// CloseCashRegister cierra la sesión: calcula el saldo esperado con la política configurada
// y persiste closing, expected y difference = closing - expected.
func (uc *RegisterUseCase) CloseCashRegister(ctx context.Context, userID, sessionID string, in dto.CloseRegisterRequest) (_ *dto.CashRegisterResponse, err error) {
	ctx, span := tracer.Start(ctx, "register.Close")
	defer span.End()
	defer func() { spanError(span, err) }()

	if _, err := access.Authorize(ctx, uc.users, userID, access.CloseRegister); err != nil {
		return nil, err
	}
	if sessionID == "" {
		return nil, domain.Invalid("session_id", "requerido")
	}
	if in.ClosingBalance.IsNegative() {
		return nil, domain.Invalid("closing_balance", "no puede ser negativo")
	}
	if !entity.HasMoneyScale(in.ClosingBalance) {
		return nil, domain.Invalid("closing_balance", "máximo 2 decimales")
	}
	span.SetAttributes(attribute.String("register_id", sessionID))

	var reg *entity.CashRegister
	err = uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		// FOR UPDATE espera a las ventas en curso (FOR SHARE) y bloquea las nuevas.
		r, err := repos.CashRegisters.GetForUpdate(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("get register: %w", err)
		}
		if r == nil {
			return domain.ErrNotFound
		}
		if !r.IsOpen() {
			return domain.ErrRegisterAlreadyClosed
		}
		totals, _, err := sessionTotals(ctx, repos.Sales, repos.CashMovements, r)
		if err != nil {
			return err
		}
		expected := cashier.ExpectedBalance(uc.policy, totals)
		if err := r.Close(userID, in.ClosingBalance, expected, in.Notes, time.Now()); err != nil {
			return err
		}
		if err := repos.CashRegisters.Close(ctx, r); err != nil {
			return fmt.Errorf("close register: %w", err)
		}
		reg = r
		return nil
	})
	log := zerolog.Ctx(ctx)
	if err != nil {
		log.Warn().Err(err).Str("register_id", sessionID).Msg("cierre de caja rechazado")
		return nil, err
	}
	uc.closed.Add(ctx, 1)
	log.Info().
		Str("register_id", reg.ID).
		Str("store_id", reg.StoreID).
		Str("expected", reg.ExpectedBalance.String()).
		Str("closing", reg.ClosingBalance.String()).
		Str("difference", reg.Difference.String()).
		Msg("caja cerrada")
	return toRegisterResponse(reg), nil
}

// GetSession devuelve una sesión por ID.
func (uc *RegisterUseCase) GetSession(ctx context.Context, sessionID string) (*dto.CashRegisterResponse, error) {
	reg, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toRegisterResponse(reg), nil
}

// GetOpenSession devuelve la sesión abierta de la tienda o ErrNotFound.
func (uc *RegisterUseCase) GetOpenSession(ctx context.Context, storeID string) (*dto.CashRegisterResponse, error) {
	if storeID == "" {
		return nil, domain.Invalid("store_id", "requerido")
	}
	reg, err := uc.registers.GetOpenByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	return toRegisterResponse(reg), nil
}

// SessionSummary totales de la sesión por medio de pago y movimientos. Para una sesión abierta el
// esperado se calcula con la misma fórmula del cierre; para una cerrada se devuelve el persistido.
func (uc *RegisterUseCase) SessionSummary(ctx context.Context, sessionID string) (*dto.SessionSummaryResponse, error) {
	reg, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.summary(ctx, reg)
}

func (uc *RegisterUseCase) summary(ctx context.Context, reg *entity.CashRegister) (*dto.SessionSummaryResponse, error) {
	totals, byMethod, err := sessionTotals(ctx, uc.sales, uc.movements, reg)
	if err != nil {
		return nil, err
	}
	expected := cashier.ExpectedBalance(uc.policy, totals)
	if !reg.IsOpen() && reg.ExpectedBalance != nil {
		expected = *reg.ExpectedBalance
	}
	return &dto.SessionSummaryResponse{
		Session:         *toRegisterResponse(reg),
		CashSales:       byMethod[entity.PaymentMethodCash],
		CardSales:       byMethod[entity.PaymentMethodCard],
		TransferSales:   byMethod[entity.PaymentMethodTransfer],
		MixedSales:      byMethod[entity.PaymentMethodMixed],
		Deposits:        totals.Deposits,
		Withdrawals:     totals.Withdrawals,
		ExpectedBalance: expected,
		IncludesMoves:   uc.policy.IncludeMovements,
	}, nil
}

// ClosingReportPDF genera el PDF de arqueo de una sesión cerrada.
func (uc *RegisterUseCase) ClosingReportPDF(ctx context.Context, sessionID string) (_ []byte, err error) {
	ctx, span := tracer.Start(ctx, "register.ClosingReportPDF")
	defer span.End()
	defer func() { spanError(span, err) }()

	if uc.renderer == nil {
		return nil, fmt.Errorf("closing report renderer not configured")
	}
	reg, err := uc.getSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if reg.IsOpen() {
		return nil, fmt.Errorf("%w: la sesión de caja sigue abierta", domain.ErrConflict)
	}
	summary, err := uc.summary(ctx, reg)
	if err != nil {
		return nil, err
	}
	store, err := uc.stores.GetByID(ctx, reg.StoreID)
	if err != nil {
		return nil, err
	}
	if store == nil {
		store = &entity.Store{ID: reg.StoreID}
	}
	movs, err := uc.movements.ListBySession(ctx, reg.ID)
	if err != nil {
		return nil, err
	}
	return uc.renderer.RenderClosingReport(ctx, ClosingReport{
		Store:       store,
		Session:     reg,
		Summary:     *summary,
		Movements:   movs,
		GeneratedAt: time.Now(),
	})
}

func (uc *RegisterUseCase) getSession(ctx context.Context, sessionID string) (*entity.CashRegister, error) {
	if sessionID == "" {
		return nil, domain.Invalid("session_id", "requerido")
	}
	reg, err := uc.registers.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, domain.ErrNotFound
	}
	return reg, nil
}

// sessionTotals agrega ventas completadas (cash + mixed cuentan como efectivo) y movimientos.
func sessionTotals(
	ctx context.Context,
	sales repository.SaleRepository,
	movements repository.CashMovementRepository,
	reg *entity.CashRegister,
) (cashier.Totals, map[string]decimal.Decimal, error) {
	byMethod, err := sales.SumBySessionAndMethod(ctx, reg.ID)
	if err != nil {
		return cashier.Totals{}, nil, fmt.Errorf("sum sales: %w", err)
	}
	deposits, withdrawals, err := movements.SumBySession(ctx, reg.ID)
	if err != nil {
		return cashier.Totals{}, nil, fmt.Errorf("sum movements: %w", err)
	}
	cash := decimal.Zero
	for method, total := range byMethod {
		if entity.CountsAsCash(method) {
			cash = cash.Add(total)
		}
	}
	return cashier.Totals{
		OpeningBalance: reg.OpeningBalance,
		CashSales:      cash,
		Deposits:       deposits,
		Withdrawals:    withdrawals,
	}, byMethod, nil
}

func toRegisterResponse(r *entity.CashRegister) *dto.CashRegisterResponse {
	return &dto.CashRegisterResponse{
		ID:              r.ID,
		StoreID:         r.StoreID,
		OpenedBy:        r.OpenedBy,
		OpenedAt:        r.OpenedAt,
		OpeningBalance:  r.OpeningBalance,
		OpeningNotes:    r.OpeningNotes,
		Status:          r.Status,
		ClosedBy:        r.ClosedBy,
		ClosedAt:        r.ClosedAt,
		ClosingBalance:  r.ClosingBalance,
		ExpectedBalance: r.ExpectedBalance,
		Difference:      r.Difference,
		ClosingNotes:    r.ClosingNotes,
	}
}
