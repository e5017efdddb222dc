package sales

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Multitienda-api/internal/application/dto"
	"github.com/jhoicas/Multitienda-api/internal/application/inventory"
	"github.com/jhoicas/Multitienda-api/internal/domain"
	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
	"github.com/jhoicas/Multitienda-api/internal/infrastructure/memory"
)

type env struct {
	f        *memory.Fixture
	uc       *SaleUseCase
	transfer *inventory.TransferUseCase
	regID    string
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	f, err := memory.NewFixture(ctx, "")
	require.NoError(t, err)
	require.NoError(t, f.SetStock(ctx, "store-a", "p1", 10, 2))
	require.NoError(t, f.SetStock(ctx, "store-a", "p2", 10, 2))

	reg := &entity.CashRegister{
		ID: "reg-a", StoreID: "store-a", OpenedBy: f.Vendedor.ID, OpenedAt: time.Now(),
		OpeningBalance: dec("500"), Status: entity.CashRegisterStatusOpen,
	}
	require.NoError(t, f.DB.CashRegisters().Create(ctx, reg))

	db := f.DB
	ledger := inventory.NewLedger(nil)
	return &env{
		f:        f,
		uc:       NewSaleUseCase(db.TxRunner(), db.Sales(), db.Stores(), db.Products(), db.Users(), ledger),
		transfer: inventory.NewTransferUseCase(db.TxRunner(), db.Stores(), db.Products(), db.Users(), db.Transfers(), ledger),
		regID:    reg.ID,
	}
}

func (e *env) stock(t *testing.T, storeID, productID string) int {
	t.Helper()
	level, err := e.f.DB.Stock().Get(context.Background(), storeID, productID)
	require.NoError(t, err)
	if level == nil {
		return 0
	}
	return level.Quantity
}

func (e *env) saleReq(items ...dto.SaleItemRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		StoreID:        "store-a",
		CashRegisterID: e.regID,
		PaymentMethod:  entity.PaymentMethodCash,
		Items:          items,
	}
}

func item(productID string, qty int, price string) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: productID, Quantity: qty, UnitPrice: dec(price)}
}

func TestCreateThenCancel_RestauraStock(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	in := e.saleReq(item("p1", 2, "4200"), item("p2", 3, "12500"))
	tax, discount := dec("1000"), dec("500")
	in.Tax, in.Discount = &tax, &discount

	sale, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, sale.Status)
	assert.True(t, sale.Subtotal.Equal(dec("45900")), sale.Subtotal.String())
	assert.True(t, sale.Total.Equal(sale.Subtotal.Add(sale.Tax).Sub(sale.Discount)))
	assert.True(t, sale.Total.Equal(dec("46400")))
	sum := decimal.Zero
	for _, it := range sale.Items {
		assert.True(t, it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sum.Equal(sale.Subtotal))
	assert.Equal(t, 8, e.stock(t, "store-a", "p1"))
	assert.Equal(t, 7, e.stock(t, "store-a", "p2"))

	cancelled, err := e.uc.CancelSale(ctx, e.f.Admin.ID, sale.ID, "error de digitación")
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, e.f.Admin.ID, *cancelled.CancelledBy)
	assert.Equal(t, 10, e.stock(t, "store-a", "p1"))
	assert.Equal(t, 10, e.stock(t, "store-a", "p2"))

	_, err = e.uc.CancelSale(ctx, e.f.Admin.ID, sale.ID, "otra vez")
	assert.ErrorIs(t, err, domain.ErrSaleAlreadyCancelled)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 10, e.stock(t, "store-a", "p1"))
}

func TestCreateSale_StockInsuficienteRevierteTodo(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	_, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", 2, "4200"), item("p2", 11, "12500")))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, e.stock(t, "store-a", "p1"))
	assert.Equal(t, 10, e.stock(t, "store-a", "p2"))
	totals, err := e.f.DB.Sales().SumBySessionAndMethod(ctx, e.regID)
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestCreateSale_ProductoNoAsignado(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	require.NoError(t, e.f.DB.CashRegisters().Create(ctx, &entity.CashRegister{
		ID: "reg-b", StoreID: "store-b", Status: entity.CashRegisterStatusOpen,
	}))
	in := e.saleReq(item("p1", 1, "4200"))
	in.StoreID, in.CashRegisterID = "store-b", "reg-b"

	_, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
	assert.ErrorIs(t, err, domain.ErrNotAssigned)
}

func TestCreateSale_Sesion(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	t.Run("de otra tienda", func(t *testing.T) {
		in := e.saleReq(item("p1", 1, "4200"))
		in.StoreID = "store-b"
		_, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("inexistente", func(t *testing.T) {
		in := e.saleReq(item("p1", 1, "4200"))
		in.CashRegisterID = "nope"
		_, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("cerrada", func(t *testing.T) {
		reg, err := e.f.DB.CashRegisters().GetByID(ctx, e.regID)
		require.NoError(t, err)
		require.NoError(t, reg.Close(e.f.Admin.ID, dec("500"), dec("500"), "", time.Now()))
		require.NoError(t, e.f.DB.CashRegisters().Close(ctx, reg))

		_, err = e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", 1, "4200")))
		assert.ErrorIs(t, err, domain.ErrRegisterClosed)
		assert.Equal(t, 10, e.stock(t, "store-a", "p1"))
	})
}

func TestCreateSale_Validaciones(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	negative := dec("-1")
	bigDiscount := dec("999999")

	cases := []struct {
		name   string
		userID string
		mutate func(in *dto.CreateSaleRequest)
		want   error
	}{
		{"sin items", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.Items = nil }, domain.ErrInvalidInput},
		{"medio de pago", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.PaymentMethod = "cheque" }, domain.ErrInvalidInput},
		{"cantidad cero", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.Items[0].Quantity = 0 }, domain.ErrInvalidInput},
		{"producto inexistente", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.Items[0].ProductID = "p9" }, domain.ErrInvalidInput},
		{"impuesto negativo", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.Tax = &negative }, domain.ErrInvalidInput},
		{"descuento mayor al total", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.Discount = &bigDiscount }, domain.ErrInvalidInput},
		{"tienda inexistente", e.f.Vendedor.ID, func(in *dto.CreateSaleRequest) { in.StoreID = "store-x" }, domain.ErrInvalidInput},
		{"bodeguero no vende", e.f.Bodeguero.ID, func(in *dto.CreateSaleRequest) {}, domain.ErrForbidden},
		{"usuario inactivo", e.f.Inactivo.ID, func(in *dto.CreateSaleRequest) {}, domain.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := e.saleReq(item("p1", 1, "4200"))
			tc.mutate(&in)
			_, err := e.uc.CreateSale(ctx, tc.userID, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Equal(t, 10, e.stock(t, "store-a", "p1"))
}

func TestCreateSale_MontosConMasDeDosDecimales(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	subCent := dec("0.005")

	cases := []struct {
		name   string
		mutate func(in *dto.CreateSaleRequest)
		field  string
	}{
		{"precio", func(in *dto.CreateSaleRequest) { in.Items[1].UnitPrice = subCent }, "items[1].unit_price"},
		{"impuesto", func(in *dto.CreateSaleRequest) { in.Tax = &subCent }, "tax"},
		{"descuento", func(in *dto.CreateSaleRequest) { in.Discount = &subCent }, "discount"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := e.saleReq(item("p1", 1, "0.01"), item("p2", 1, "0.01"))
			tc.mutate(&in)
			_, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
			var fe *domain.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tc.field, fe.Field)
		})
	}
	assert.Equal(t, 10, e.stock(t, "store-a", "p1"))
	assert.Equal(t, 10, e.stock(t, "store-a", "p2"))

	// Ceros a la derecha no cambian el valor.
	sale, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", 1, "0.010"), item("p2", 3, "1.500")))
	require.NoError(t, err)
	sum := decimal.Zero
	for _, it := range sale.Items {
		assert.True(t, entity.HasMoneyScale(it.Subtotal))
		sum = sum.Add(it.Subtotal)
	}
	assert.True(t, sale.Subtotal.Equal(sum))
	assert.True(t, sale.Subtotal.Equal(dec("4.51")))
}

func TestCreateSale_NumeroConsecutivo(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	s1, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", 1, "4200")))
	require.NoError(t, err)
	s2, err := e.uc.CreateSale(ctx, e.f.Admin.ID, e.saleReq(item("p1", 1, "4200")))
	require.NoError(t, err)
	assert.Equal(t, "V-00000001", s1.Number)
	assert.Equal(t, "V-00000002", s2.Number)
}

func TestCreateSale_Idempotencia(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	in := e.saleReq(item("p1", 3, "4200"))
	in.IdempotencyKey = "caja1-0001"

	first, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
	require.NoError(t, err)
	again, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, in)
	require.NoError(t, err)

	assert.Equal(t, first.ID, again.ID)
	assert.Len(t, again.Items, 1)
	assert.Equal(t, 7, e.stock(t, "store-a", "p1"))
}

func TestCancelSale_Permisos(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	sale, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", 1, "4200")))
	require.NoError(t, err)

	_, err = e.uc.CancelSale(ctx, e.f.Vendedor.ID, sale.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	_, err = e.uc.CancelSale(ctx, e.f.Admin.ID, "no-existe", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 9, e.stock(t, "store-a", "p1"))

	got, err := e.uc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.SaleStatusCompleted, got.Status)
}

func TestCreateSale_ConcurrenciaNuncaNegativo(t *testing.T) {
	ctx := context.Background()
	e := setup(t)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", 1, "4200")))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
	assert.Equal(t, 15, rejected)
	assert.Equal(t, 0, e.stock(t, "store-a", "p1"))

	p1, _ := e.f.DB.Products().GetByID(ctx, "p1")
	assert.False(t, p1.IsActive)
}

// Reproduce el stock a partir de la secuencia de ventas, anulaciones y traslados aplicados.
func TestStock_ReplayDeEventosSinDeriva(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	rnd := rand.New(rand.NewSource(7))

	model := map[string]int{"store-a/p1": 10, "store-a/p2": 10, "store-b/p1": 0, "store-b/p2": 0}
	type sold struct {
		id    string
		lines map[string]int
	}
	var open []sold

	for step := 0; step < 60; step++ {
		switch rnd.Intn(3) {
		case 0:
			q1, q2 := rnd.Intn(3)+1, rnd.Intn(3)+1
			s, err := e.uc.CreateSale(ctx, e.f.Vendedor.ID, e.saleReq(item("p1", q1, "10"), item("p2", q2, "20")))
			if model["store-a/p1"] >= q1 && model["store-a/p2"] >= q2 {
				require.NoError(t, err)
				model["store-a/p1"] -= q1
				model["store-a/p2"] -= q2
				open = append(open, sold{id: s.ID, lines: map[string]int{"p1": q1, "p2": q2}})
			} else {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		case 1:
			if len(open) == 0 {
				continue
			}
			i := rnd.Intn(len(open))
			_, err := e.uc.CancelSale(ctx, e.f.Admin.ID, open[i].id, "replay")
			require.NoError(t, err)
			for p, q := range open[i].lines {
				model["store-a/"+p] += q
			}
			open = append(open[:i], open[i+1:]...)
		case 2:
			q := rnd.Intn(4) + 1
			_, err := e.transfer.TransferStock(ctx, e.f.Bodeguero.ID, dto.TransferStockRequest{
				FromStoreID: "store-a", ToStoreID: "store-b", ProductID: "p1", Quantity: q,
			})
			if model["store-a/p1"] >= q {
				require.NoError(t, err)
				model["store-a/p1"] -= q
				model["store-b/p1"] += q
			} else {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}
		assert.Equal(t, model["store-a/p1"], e.stock(t, "store-a", "p1"), "step %d", step)
		assert.Equal(t, model["store-a/p2"], e.stock(t, "store-a", "p2"), "step %d", step)
		assert.Equal(t, model["store-b/p1"], e.stock(t, "store-b", "p1"), "step %d", step)
	}
}
