package register

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/application/sales"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/cashier"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/memory"
)

type fakeRenderer struct {
	got *ClosingReport
}

func (r *fakeRenderer) RenderClosingReport(_ context.Context, report ClosingReport) ([]byte, error) {
	r.got = &report
	return []byte("%PDF-fake"), nil
}

type env struct {
	f        *memory.Fixture
	uc       *RegisterUseCase
	sales    *sales.SaleUseCase
	renderer *fakeRenderer
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T, policy cashier.Policy) *env {
	t.Helper()
	ctx := context.Background()
	f, err := memory.NewFixture(ctx, "")
	require.NoError(t, err)
	require.NoError(t, f.SetStock(ctx, "store-a", "p1", 100, 10))
	db := f.DB
	renderer := &fakeRenderer{}
	return &env{
		f:        f,
		uc:       NewRegisterUseCase(db.TxRunner(), db.CashRegisters(), db.CashMovements(), db.Sales(), db.Stores(), db.Users(), policy, renderer),
		sales:    sales.NewSaleUseCase(db.TxRunner(), db.Sales(), db.Stores(), db.Products(), db.Users(), inventory.NewLedger(nil)),
		renderer: renderer,
	}
}

func (e *env) open(t *testing.T, balance string) *dto.CashRegisterResponse {
	t.Helper()
	reg, err := e.uc.OpenCashRegister(context.Background(), e.f.Vendedor.ID, dto.OpenRegisterRequest{
		StoreID: "store-a", OpeningBalance: dec(balance), Notes: "turno mañana",
	})
	require.NoError(t, err)
	return reg
}

func (e *env) sell(t *testing.T, regID, method, price string) *dto.SaleResponse {
	t.Helper()
	sale, err := e.sales.CreateSale(context.Background(), e.f.Vendedor.ID, dto.CreateSaleRequest{
		StoreID:        "store-a",
		CashRegisterID: regID,
		PaymentMethod:  method,
		Items:          []dto.SaleItemRequest{{ProductID: "p1", Quantity: 1, UnitPrice: dec(price)}},
	})
	require.NoError(t, err)
	return sale
}

func TestOpenCashRegister_UnaAbiertaPorTienda(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	first := e.open(t, "500")
	assert.Equal(t, entity.CashRegisterStatusOpen, first.Status)

	_, err := e.uc.OpenCashRegister(ctx, e.f.Admin.ID, dto.OpenRegisterRequest{StoreID: "store-a", OpeningBalance: dec("100")})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrRegisterAlreadyOpen)

	current, err := e.uc.GetOpenSession(ctx, "store-a")
	require.NoError(t, err)
	assert.Equal(t, first.ID, current.ID)

	other, err := e.uc.OpenCashRegister(ctx, e.f.Admin.ID, dto.OpenRegisterRequest{StoreID: "store-b", OpeningBalance: dec("0")})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestOpenCashRegister_Validaciones(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})

	_, err := e.uc.OpenCashRegister(ctx, e.f.Vendedor.ID, dto.OpenRegisterRequest{StoreID: "store-a", OpeningBalance: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.OpenCashRegister(ctx, e.f.Vendedor.ID, dto.OpenRegisterRequest{StoreID: "store-a", OpeningBalance: dec("100.001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.OpenCashRegister(ctx, e.f.Vendedor.ID, dto.OpenRegisterRequest{StoreID: "store-x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.OpenCashRegister(ctx, e.f.Bodeguero.ID, dto.OpenRegisterRequest{StoreID: "store-a"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.uc.GetOpenSession(ctx, "store-a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCloseCashRegister_FormulaSinMovimientos(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	reg := e.open(t, "500")
	e.sell(t, reg.ID, entity.PaymentMethodCash, "200")
	_, err := e.uc.RecordCashMovement(ctx, e.f.Vendedor.ID, reg.ID, dto.CashMovementRequest{
		Type: entity.CashMovementWithdrawal, Amount: dec("50"), Reason: "pago proveedor",
	})
	require.NoError(t, err)

	closed, err := e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("650")})
	require.NoError(t, err)
	assert.Equal(t, entity.CashRegisterStatusClosed, closed.Status)
	require.NotNil(t, closed.ExpectedBalance)
	require.NotNil(t, closed.Difference)
	assert.True(t, closed.ExpectedBalance.Equal(dec("700")), closed.ExpectedBalance.String())
	assert.True(t, closed.Difference.Equal(dec("-50")), closed.Difference.String())
	assert.True(t, closed.ClosingBalance.Equal(dec("650")))
	assert.Equal(t, e.f.Admin.ID, *closed.ClosedBy)

	summary, err := e.uc.SessionSummary(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, summary.ExpectedBalance.Equal(*closed.ExpectedBalance))
	assert.True(t, summary.Withdrawals.Equal(dec("50")))
}

func TestCloseCashRegister_FormulaConMovimientos(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{IncludeMovements: true})
	reg := e.open(t, "500")
	e.sell(t, reg.ID, entity.PaymentMethodCash, "200")
	_, err := e.uc.RecordCashMovement(ctx, e.f.Vendedor.ID, reg.ID, dto.CashMovementRequest{
		Type: entity.CashMovementWithdrawal, Amount: dec("50"), Reason: "pago proveedor",
	})
	require.NoError(t, err)

	summary, err := e.uc.SessionSummary(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, summary.ExpectedBalance.Equal(dec("650")))
	assert.True(t, summary.IncludesMoves)

	closed, err := e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("650")})
	require.NoError(t, err)
	assert.True(t, closed.ExpectedBalance.Equal(dec("650")))
	assert.True(t, closed.Difference.IsZero())
}

func TestCloseCashRegister_SoloEfectivoYMixtoCompletadas(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	reg := e.open(t, "100")
	e.sell(t, reg.ID, entity.PaymentMethodCash, "10")
	e.sell(t, reg.ID, entity.PaymentMethodMixed, "20")
	e.sell(t, reg.ID, entity.PaymentMethodCard, "40")
	e.sell(t, reg.ID, entity.PaymentMethodTransfer, "80")
	voided := e.sell(t, reg.ID, entity.PaymentMethodCash, "160")
	_, err := e.sales.CancelSale(ctx, e.f.Admin.ID, voided.ID, "devolución")
	require.NoError(t, err)

	summary, err := e.uc.SessionSummary(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, summary.CashSales.Equal(dec("10")))
	assert.True(t, summary.CardSales.Equal(dec("40")))
	assert.True(t, summary.TransferSales.Equal(dec("80")))
	assert.True(t, summary.MixedSales.Equal(dec("20")))

	closed, err := e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("135.5")})
	require.NoError(t, err)
	assert.True(t, closed.ExpectedBalance.Equal(dec("130")))
	assert.True(t, closed.Difference.Equal(dec("5.5")))
}

func TestCloseCashRegister_Transiciones(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	reg := e.open(t, "500")

	_, err := e.uc.CloseCashRegister(ctx, e.f.Vendedor.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("500")})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("500")})
	require.NoError(t, err)

	_, err = e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("1")})
	assert.ErrorIs(t, err, domain.ErrRegisterAlreadyClosed)
	got, err := e.uc.GetSession(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, got.ClosingBalance.Equal(dec("500")))

	_, err = e.uc.CloseCashRegister(ctx, e.f.Admin.ID, "no-existe", dto.CloseRegisterRequest{})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Cerrada la anterior, la tienda puede abrir otra.
	next := e.open(t, "0")
	assert.NotEqual(t, reg.ID, next.ID)
}

func TestRecordCashMovement(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	reg := e.open(t, "500")

	cases := []struct {
		name string
		in   dto.CashMovementRequest
		want error
	}{
		{"monto cero", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: dec("0"), Reason: "x"}, domain.ErrInvalidInput},
		{"monto negativo", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: dec("-3"), Reason: "x"}, domain.ErrInvalidInput},
		{"tipo inválido", dto.CashMovementRequest{Type: "refund", Amount: dec("3"), Reason: "x"}, domain.ErrInvalidInput},
		{"sin motivo", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: dec("3")}, domain.ErrInvalidInput},
		{"fracción de centavo", dto.CashMovementRequest{Type: entity.CashMovementDeposit, Amount: dec("0.001"), Reason: "x"}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.uc.RecordCashMovement(ctx, e.f.Vendedor.ID, reg.ID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := e.uc.RecordCashMovement(ctx, e.f.Vendedor.ID, reg.ID, dto.CashMovementRequest{
		Type: entity.CashMovementDeposit, Amount: dec("20"), Reason: "sencillo",
	})
	require.NoError(t, err)
	list, err := e.uc.ListMovements(ctx, reg.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "sencillo", list[0].Reason)

	_, err = e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("519.995")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("520")})
	require.NoError(t, err)
	_, err = e.uc.RecordCashMovement(ctx, e.f.Vendedor.ID, reg.ID, dto.CashMovementRequest{
		Type: entity.CashMovementWithdrawal, Amount: dec("5"), Reason: "tarde",
	})
	assert.ErrorIs(t, err, domain.ErrRegisterClosed)
}

func TestCancelSale_DespuesDelCierreNoReescribeArqueo(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	reg := e.open(t, "500")
	sale := e.sell(t, reg.ID, entity.PaymentMethodCash, "200")
	_, err := e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("700")})
	require.NoError(t, err)

	_, err = e.sales.CancelSale(ctx, e.f.Admin.ID, sale.ID, "reclamo")
	require.NoError(t, err)

	got, err := e.uc.GetSession(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, got.ExpectedBalance.Equal(dec("700")))
	summary, err := e.uc.SessionSummary(ctx, reg.ID)
	require.NoError(t, err)
	assert.True(t, summary.ExpectedBalance.Equal(dec("700")))
}

func TestClosingReportPDF(t *testing.T) {
	ctx := context.Background()
	e := setup(t, cashier.Policy{})
	reg := e.open(t, "500")
	e.sell(t, reg.ID, entity.PaymentMethodCash, "200")

	_, err := e.uc.ClosingReportPDF(ctx, reg.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.uc.CloseCashRegister(ctx, e.f.Admin.ID, reg.ID, dto.CloseRegisterRequest{ClosingBalance: dec("690")})
	require.NoError(t, err)

	pdf, err := e.uc.ClosingReportPDF(ctx, reg.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
	require.NotNil(t, e.renderer.got)
	assert.Equal(t, "Tienda Centro", e.renderer.got.Store.Name)
	assert.True(t, e.renderer.got.Summary.ExpectedBalance.Equal(dec("700")))
	assert.True(t, e.renderer.got.Session.Difference.Equal(dec("-10")))
}
